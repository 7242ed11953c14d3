// Package ratelimit implements the shared-resource token bucket from
// spec.md §5: a Redis-backed limiter keyed by (ip|flow_id), falling back
// to an in-process limiter when Redis is unavailable so the service stays
// available rather than fail closed.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter enforces limit requests per window, per key.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration

	fallbackMu sync.Mutex
	fallback   map[string]*rate.Limiter
}

func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		fallback: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether key may proceed, and if not, how long the caller
// should wait before retrying. It fails open (allows the request) if
// Redis is unreachable, consulting the in-process fallback limiter for
// that key so a down Redis does not remove rate limiting entirely.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	allowed, retryAfter, redisErr := l.allowRedis(ctx, key)
	if redisErr == nil {
		return allowed, retryAfter, nil
	}
	return l.allowFallback(key), l.window, nil
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count > int64(l.limit) {
		ttl, err := l.rdb.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

func (l *Limiter) allowFallback(key string) bool {
	l.fallbackMu.Lock()
	lim, ok := l.fallback[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(l.limit)/l.window.Seconds()), l.limit)
		l.fallback[key] = lim
	}
	l.fallbackMu.Unlock()
	return lim.Allow()
}
