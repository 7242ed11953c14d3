package recoevents

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeInsertStore struct {
	inserted []domain.RecommendationEvent
	err      error
}

func (f *fakeInsertStore) InsertRecommendationEvents(ctx context.Context, events []domain.RecommendationEvent) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, events...)
	return len(events), nil
}

func enqueueRaw(t *testing.T, store *fakeStore, n int) {
	t.Helper()
	sub := NewSubmitter(store)
	seedBatch(t, store, "batch-1", []string{"x"})
	for i := 0; i < n; i++ {
		_, err := sub.Submit(context.Background(), "batch-1", []EventSubmission{
			{EventID: string(rune('a' + i)), IssueNodeID: "x", Position: 1, EventType: domain.EventImpression, Surface: domain.SurfaceFeed},
		})
		require.NoError(t, err)
	}
}

func TestFlushJobDrainsQueueInBatches(t *testing.T) {
	store := newFakeStore()
	enqueueRaw(t, store, 5)
	analytics := &fakeInsertStore{}

	job := NewFlushJob(store, analytics, DefaultFlushMaxSeconds, 2, testLogger())
	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, result.Popped)
	require.Equal(t, 5, result.Inserted)
	require.Len(t, analytics.inserted, 5)
}

func TestFlushJobStopsWhenQueueEmpty(t *testing.T) {
	store := newFakeStore()
	analytics := &fakeInsertStore{}

	job := NewFlushJob(store, analytics, DefaultFlushMaxSeconds, DefaultFlushBatchSize, testLogger())
	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.Popped)
	require.Equal(t, 1, result.Loops)
}

func TestFlushJobPropagatesInsertError(t *testing.T) {
	store := newFakeStore()
	enqueueRaw(t, store, 1)
	analytics := &fakeInsertStore{err: errDBDown}

	job := NewFlushJob(store, analytics, DefaultFlushMaxSeconds, DefaultFlushBatchSize, testLogger())
	_, err := job.Run(context.Background())
	require.Error(t, err)
}
