// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter reports whether one more request under key fits its window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows every request. It is used when Redis is not configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// counter is the part of redis.Cmdable the limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter allows limit requests per key in each window. The window
// starts with the first request. Every hit sends EXPIRE NX, which only
// arms a key that has no TTL yet, so later hits do not extend the window
// and a key left without one after a failed EXPIRE is re-armed.
// EXPIRE NX needs Redis 7 or newer.
type RedisLimiter struct {
	rdb    counter
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}

	if err := l.rdb.ExpireNX(ctx, k, l.window).Err(); err != nil {
		return false, fmt.Errorf("expire %s: %w", k, err)
	}

	return n <= l.limit, nil
}

// NewRedisClient returns a client for addr. It connects lazily; callers
// that want to fail fast should Ping it.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}
