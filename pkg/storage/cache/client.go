// Package cache wraps the Redis client used for short-TTL batch contexts,
// the search results cache, at-least-once event dedup (SETNX), and the
// recommendation event queue (RPUSH/LPOP).
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Client lazily connects to Redis on first use, mirroring the
// double-checked-locking EnsureConnection pattern: the fast path after the
// first successful connect is a single atomic load.
type Client struct {
	opts   *redis.Options
	log    *logrus.Logger
	rdb    *redis.Client
	mu     sync.Mutex
	ready  atomic.Bool
}

func NewClient(opts *redis.Options, log *logrus.Logger) *Client {
	return &Client{opts: opts, log: log, rdb: redis.NewClient(opts)}
}

// GetClient returns the underlying go-redis client for callers that need
// direct command access (e.g. the rate limiter's INCR/EXPIRE/TTL calls).
func (c *Client) GetClient() *redis.Client { return c.rdb }

// EnsureConnection pings Redis on the slow path and marks the client ready
// so subsequent calls take the fast, lock-free path.
func (c *Client) EnsureConnection(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready.Load() {
		return nil
	}

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unavailable: %w", err)
	}
	c.ready.Store(true)
	return nil
}

func (c *Client) Close() error {
	c.ready.Store(false)
	return c.rdb.Close()
}

// Set stores value (already serialized by the caller) with ttl.
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetNX implements the at-least-once dedup primitive from spec.md §4.6: it
// reports accepted=true iff key has not been seen within ttl. The caller
// chooses the key; pkg/recoevents uses reco:event:{event_id}.
func (c *Client) SetNX(ctx context.Context, key string, ttl time.Duration) (accepted bool, err error) {
	return c.rdb.SetNX(ctx, key, "1", ttl).Result()
}

// RPush appends value onto the named list (the recommendation event queue).
func (c *Client) RPush(ctx context.Context, key string, value string) error {
	return c.rdb.RPush(ctx, key, value).Err()
}

// LPopBatch pops up to n items from the head of the list, returning fewer
// than n (possibly zero) when the list is shorter, used by the flush job's
// bounded drain loop.
func (c *Client) LPopBatch(ctx context.Context, key string, n int64) ([]string, error) {
	items, err := c.rdb.LPopCount(ctx, key, int(n)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return items, err
}

// Len reports the list length, used for health reporting and tests.
func (c *Client) Len(ctx context.Context, key string) (int64, error) {
	return c.rdb.LLen(ctx, key).Result()
}
