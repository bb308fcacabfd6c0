package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const rateKeyPrefix = "gl:rate:"

// RateCache caches resolved (currency, date) rates in process memory and,
// when a client is configured, in Redis so that every API replica shares
// lookups. Only successful resolutions are cached.
type RateCache struct {
	redis   *redis.Client
	ttl     time.Duration
	metrics metrics.Recorder

	mu   sync.RWMutex
	data map[string]rateEntry
}

type rateEntry struct {
	rate     decimal.Decimal
	cachedAt time.Time
}

// NewRateCache creates a cache. redisClient may be nil.
func NewRateCache(redisClient *redis.Client, ttl time.Duration, recorder metrics.Recorder) *RateCache {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &RateCache{
		redis:   redisClient,
		ttl:     ttl,
		metrics: recorder,
		data:    make(map[string]rateEntry),
	}
}

func rateCacheKey(currency string, asOf time.Time) string {
	return fmt.Sprintf("%s%s:%s", rateKeyPrefix, currency, asOf.UTC().Format(time.DateOnly))
}

// Get returns the cached rate, checking memory first and Redis second.
func (rc *RateCache) Get(ctx context.Context, currency string, asOf time.Time) (decimal.Decimal, bool) {
	if rc == nil {
		return decimal.Decimal{}, false
	}
	key := rateCacheKey(currency, asOf)

	rc.mu.RLock()
	entry, ok := rc.data[key]
	rc.mu.RUnlock()
	if ok && time.Since(entry.cachedAt) <= rc.ttl {
		rc.metrics.RateLookup(metrics.LayerMemory)
		return entry.rate, true
	}

	if rc.redis == nil {
		return decimal.Decimal{}, false
	}
	raw, err := rc.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Rate cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return decimal.Decimal{}, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	rc.setMemory(key, rate)
	rc.metrics.RateLookup(metrics.LayerRedis)
	return rate, true
}

// Set stores a rate in both layers. Redis failures are logged and ignored.
func (rc *RateCache) Set(ctx context.Context, currency string, asOf time.Time, rate decimal.Decimal) {
	if rc == nil {
		return
	}
	key := rateCacheKey(currency, asOf)
	rc.setMemory(key, rate)

	if rc.redis == nil {
		return
	}
	if err := rc.redis.Set(ctx, key, rate.String(), rc.ttl).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Rate cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Invalidate drops every cached date for a currency. It runs after a new
// rate is recorded because that rate may now be the latest for later dates.
func (rc *RateCache) Invalidate(ctx context.Context, currency string) {
	if rc == nil {
		return
	}
	prefix := rateKeyPrefix + currency + ":"

	rc.mu.Lock()
	for key := range rc.data {
		if strings.HasPrefix(key, prefix) {
			delete(rc.data, key)
		}
	}
	rc.mu.Unlock()

	if rc.redis == nil {
		return
	}
	iter := rc.redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Rate cache scan failed", slog.String("currency", currency), slog.String("error", err.Error()))
		return
	}
	if len(keys) > 0 {
		if err := rc.redis.Del(ctx, keys...).Err(); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Rate cache invalidation failed", slog.String("currency", currency), slog.String("error", err.Error()))
		}
	}
}

// Len reports the number of in-memory entries.
func (rc *RateCache) Len() int {
	if rc == nil {
		return 0
	}
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.data)
}

func (rc *RateCache) setMemory(key string, rate decimal.Decimal) {
	rc.mu.Lock()
	rc.data[key] = rateEntry{rate: rate, cachedAt: time.Now()}
	rc.mu.Unlock()
}
