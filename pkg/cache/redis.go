package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient builds a client for addr, which may be a redis:// URL or a
// bare host:port. An empty addr returns nil so callers fall back to the
// in-process cache only.
func NewRedisClient(ctx context.Context, addr string, ping bool) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10

	client := redis.NewClient(opts)
	if ping {
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	slog.InfoContext(ctx, "Redis client configured", slog.String("addr", opts.Addr), slog.Bool("verified", ping))
	return client, nil
}

// CloseRedisClient closes client if it is set.
func CloseRedisClient(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		slog.Error("Error closing redis client", slog.String("error", err.Error()))
		return
	}
	slog.Info("Redis client closed")
}
