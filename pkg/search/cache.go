package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/issuefeed/backend/pkg/metrics"
)

// StageCache is the narrow surface Cache needs from
// pkg/storage/cache.Client.
type StageCache interface {
	EnsureConnection(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// stage1TTL is the "short TTL (minutes)" spec.md §4.4 names for cached
// Stage 1 results.
const stage1TTL = 5 * time.Minute

// Cache wraps a StageCache with the Stage-1 cache-key scheme and
// hit/miss metrics.
type Cache struct {
	client StageCache
}

func NewCache(client StageCache) *Cache {
	return &Cache{client: client}
}

// get returns a cached Stage-1 result for req, or ok=false on a miss or
// any cache error (a cache failure degrades to a live Stage 1, not an
// error).
func (c *Cache) get(ctx context.Context, req Request) (stage1Result, bool) {
	if err := c.client.EnsureConnection(ctx); err != nil {
		return stage1Result{}, false
	}
	raw, err := c.client.Get(ctx, req.cacheKey())
	if err != nil || raw == "" {
		metrics.SearchCacheMissesTotal.Inc()
		return stage1Result{}, false
	}
	var result stage1Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		metrics.SearchCacheMissesTotal.Inc()
		return stage1Result{}, false
	}
	metrics.SearchCacheHitsTotal.Inc()
	return result, true
}

// put populates the cache after a live Stage 1 completes. Failures are
// swallowed: caching is an optimization, never load-bearing.
func (c *Cache) put(ctx context.Context, req Request, result stage1Result) {
	if err := c.client.EnsureConnection(ctx); err != nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, req.cacheKey(), string(raw), stage1TTL)
}
