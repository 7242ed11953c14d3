package recoevents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/apperr"
)

func TestStoreAndLoadBatchContextRoundTrips(t *testing.T) {
	store := newFakeStore()
	bc := BatchContext{
		RecommendationBatchID: "batch-1",
		IssueNodeIDs:          []string{"a", "b", "c"},
		Page:                  1,
		PageSize:              20,
		IsPersonalized:        true,
		ServedAt:              time.Now(),
	}

	require.NoError(t, StoreBatchContext(context.Background(), store, bc))

	loaded, err := loadBatchContext(context.Background(), store, "batch-1")
	require.NoError(t, err)
	require.Equal(t, bc.IssueNodeIDs, loaded.IssueNodeIDs)
	require.True(t, loaded.IsPersonalized)
}

func TestLoadBatchContextMissingReturnsNotFound(t *testing.T) {
	store := newFakeStore()
	_, err := loadBatchContext(context.Background(), store, "does-not-exist")
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStoreBatchContextSurfacesConnectionFailure(t *testing.T) {
	store := newFakeStore()
	store.ensureErr = errDBDown
	err := StoreBatchContext(context.Background(), store, BatchContext{RecommendationBatchID: "b"})
	require.Error(t, err)
	require.Equal(t, apperr.KindDependencyUnavailable, apperr.KindOf(err))
}
