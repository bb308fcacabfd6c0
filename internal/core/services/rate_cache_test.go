package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRecorder tallies rate lookups per layer.
type countingRecorder struct {
	metrics.Noop
	mu      sync.Mutex
	lookups map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{lookups: map[string]int{}}
}

func (r *countingRecorder) RateLookup(layer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[layer]++
}

func (r *countingRecorder) count(layer string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups[layer]
}

func TestRateCache_MemoryLayer(t *testing.T) {
	ctx := context.Background()
	rec := newCountingRecorder()
	cache := services.NewRateCache(nil, time.Hour, rec)
	day := date(2024, 3, 1)

	_, ok := cache.Get(ctx, "USD", day)
	assert.False(t, ok)

	cache.Set(ctx, "USD", day, d("3.6725"))
	cache.Set(ctx, "USD", day.AddDate(0, 0, 1), d("3.6730"))
	cache.Set(ctx, "EUR", day, d("4.01"))
	assert.Equal(t, 3, cache.Len())

	rate, ok := cache.Get(ctx, "USD", day)
	require.True(t, ok)
	assert.True(t, rate.Equal(d("3.6725")))
	assert.Equal(t, 1, rec.count(metrics.LayerMemory))

	cache.Invalidate(ctx, "USD")
	assert.Equal(t, 1, cache.Len())
	_, ok = cache.Get(ctx, "USD", day)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "EUR", day)
	assert.True(t, ok)
}

func TestRateCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := services.NewRateCache(nil, time.Millisecond, nil)
	cache.Set(ctx, "USD", date(2024, 3, 1), d("3.67"))

	time.Sleep(5 * time.Millisecond)
	_, ok := cache.Get(ctx, "USD", date(2024, 3, 1))
	assert.False(t, ok)
}

func TestRateCache_NilIsDisabled(t *testing.T) {
	ctx := context.Background()
	var cache *services.RateCache

	cache.Set(ctx, "USD", date(2024, 3, 1), decimal.NewFromInt(1))
	_, ok := cache.Get(ctx, "USD", date(2024, 3, 1))
	assert.False(t, ok)
	cache.Invalidate(ctx, "USD")
	assert.Equal(t, 0, cache.Len())
}

func TestRateCache_UnreachableRedisFallsBack(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := services.NewRateCache(client, time.Hour, nil)

	_, ok := cache.Get(ctx, "USD", date(2024, 3, 1))
	assert.False(t, ok)

	cache.Set(ctx, "USD", date(2024, 3, 1), d("3.67"))
	rate, ok := cache.Get(ctx, "USD", date(2024, 3, 1))
	require.True(t, ok)
	assert.True(t, rate.Equal(d("3.67")))

	cache.Invalidate(ctx, "USD")
	assert.Equal(t, 0, cache.Len())
}

func TestRateCache_ServesResolverLookups(t *testing.T) {
	rec := newCountingRecorder()
	store := newEngine(t).store
	cache := services.NewRateCache(nil, time.Hour, rec)
	svc := services.NewServiceContainer(store, rec, cache)

	_, err := svc.ExchangeRate.CreateExchangeRate(context.Background(), dtoRate("USD", "3.67", date(2024, 1, 1)), testUser)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.ExchangeRate.Convert(context.Background(), d("10"), "USD", baseCurrency, date(2024, 2, 1))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, rec.count(metrics.LayerStore))
	assert.Equal(t, 2, rec.count(metrics.LayerMemory))

	// a newer rate invalidates the cached resolution
	_, err = svc.ExchangeRate.CreateExchangeRate(context.Background(), dtoRate("USD", "3.70", date(2024, 1, 15)), testUser)
	require.NoError(t, err)
	converted, err := svc.ExchangeRate.Convert(context.Background(), d("10"), "USD", baseCurrency, date(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, "37.00", converted.StringFixed(2))
	assert.Equal(t, 2, rec.count(metrics.LayerStore))
}
