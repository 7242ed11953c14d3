package recoevents

import (
	"context"
	"time"
)

// Store is the narrow surface the submission and flush paths need from
// pkg/storage/cache.Client.
type Store interface {
	EnsureConnection(ctx context.Context) error
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	RPush(ctx context.Context, key, value string) error
	LPopBatch(ctx context.Context, key string, n int64) ([]string, error)
}
