package recoevents

import (
	"context"
	"encoding/json"

	"github.com/issuefeed/backend/pkg/apperr"
)

// StoreBatchContext persists the batch context served alongside a feed
// response, per spec.md §4.6.
func StoreBatchContext(ctx context.Context, store Store, bc BatchContext) error {
	if err := store.EnsureConnection(ctx); err != nil {
		return apperr.DependencyUnavailable("recommendation batch context store unavailable")
	}
	raw, err := json.Marshal(bc)
	if err != nil {
		return err
	}
	return store.Set(ctx, batchContextKey(bc.RecommendationBatchID), string(raw), batchContextTTL)
}

// loadBatchContext returns apperr.NotFound when the batch context is
// missing or expired, per spec.md §4.6 step 1.
func loadBatchContext(ctx context.Context, store Store, batchID string) (BatchContext, error) {
	if err := store.EnsureConnection(ctx); err != nil {
		return BatchContext{}, apperr.DependencyUnavailable("recommendation batch context store unavailable")
	}
	raw, err := store.Get(ctx, batchContextKey(batchID))
	if err != nil || raw == "" {
		return BatchContext{}, apperr.NotFound("recommendation batch " + batchID + " not found or expired")
	}
	var bc BatchContext
	if err := json.Unmarshal([]byte(raw), &bc); err != nil {
		return BatchContext{}, apperr.NotFound("recommendation batch " + batchID + " not found or expired")
	}
	return bc, nil
}
