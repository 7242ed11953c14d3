package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStageCache struct {
	store        map[string]string
	ensureErr    error
	getErr       error
	setCallCount int
}

func newFakeStageCache() *fakeStageCache {
	return &fakeStageCache{store: make(map[string]string)}
}

func (f *fakeStageCache) EnsureConnection(ctx context.Context) error { return f.ensureErr }

func (f *fakeStageCache) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.store[key], nil
}

func (f *fakeStageCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.setCallCount++
	f.store[key] = value
	return nil
}

func TestCacheGetMissesWhenEmpty(t *testing.T) {
	c := NewCache(newFakeStageCache())
	_, ok := c.get(context.Background(), Request{Query: "crash"})
	require.False(t, ok)
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	client := newFakeStageCache()
	c := NewCache(client)
	req := Request{Query: "crash on startup"}.normalize()
	result := stage1Result{NodeIDs: []string{"a", "b"}, Scores: map[string]float64{"a": 1, "b": 0.5}, Total: 2}

	c.put(context.Background(), req, result)
	got, ok := c.get(context.Background(), req)
	require.True(t, ok)
	require.Equal(t, result.NodeIDs, got.NodeIDs)
	require.Equal(t, result.Total, got.Total)
}

func TestCacheGetMissesOnConnectionFailure(t *testing.T) {
	client := newFakeStageCache()
	client.ensureErr = errors.New("redis down")
	c := NewCache(client)
	req := Request{Query: "crash"}.normalize()

	raw, _ := json.Marshal(stage1Result{NodeIDs: []string{"a"}})
	client.store[req.cacheKey()] = string(raw)

	_, ok := c.get(context.Background(), req)
	require.False(t, ok)
}

func TestCachePutSwallowsConnectionFailure(t *testing.T) {
	client := newFakeStageCache()
	client.ensureErr = errors.New("redis down")
	c := NewCache(client)

	require.NotPanics(t, func() {
		c.put(context.Background(), Request{Query: "crash"}.normalize(), stage1Result{})
	})
	require.Equal(t, 0, client.setCallCount)
}
