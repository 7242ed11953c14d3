package recoevents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/metrics"
)

// InsertStore is the narrow surface the flush job needs from
// pkg/storage/postgres.AnalyticsRepository.
type InsertStore interface {
	InsertRecommendationEvents(ctx context.Context, events []domain.RecommendationEvent) (int, error)
}

// DefaultFlushMaxSeconds and DefaultFlushBatchSize mirror
// RECO_FLUSH_MAX_SECONDS/RECO_EVENTS_FLUSH_BATCH_SIZE's env defaults.
const (
	DefaultFlushMaxSeconds = 60
	DefaultFlushBatchSize  = 1000
)

// FlushJob periodically drains the event queue into the analytics table.
type FlushJob struct {
	store      Store
	analytics  InsertStore
	maxSeconds int
	batchSize  int
	log        *logrus.Logger
}

func NewFlushJob(store Store, analytics InsertStore, maxSeconds, batchSize int, log *logrus.Logger) *FlushJob {
	return &FlushJob{store: store, analytics: analytics, maxSeconds: maxSeconds, batchSize: batchSize, log: log}
}

// Run drains the queue in batches, bounded by maxSeconds, exiting when
// the queue is empty or the time budget elapses, per spec.md §4.6.
func (f *FlushJob) Run(ctx context.Context) (FlushResult, error) {
	if err := f.store.EnsureConnection(ctx); err != nil {
		return FlushResult{}, err
	}

	start := time.Now()
	var result FlushResult

	for {
		result.Loops++

		raw, err := f.store.LPopBatch(ctx, queueKey, int64(f.batchSize))
		if err != nil {
			return result, err
		}
		result.Popped += len(raw)

		if len(raw) > 0 {
			events := decodeQueuedEvents(raw, f.log)
			n, err := f.analytics.InsertRecommendationEvents(ctx, events)
			if err != nil {
				f.log.WithFields(logging.NewFields().Component("recoevents").Operation("flush").Error(err).Logrus()).
					Error("recommendation event batch insert failed")
				return result, err
			}
			result.Inserted += n
			metrics.RecoFlushInsertedTotal.Add(float64(n))
		}

		if len(raw) == 0 {
			break
		}
		if time.Since(start) >= time.Duration(f.maxSeconds)*time.Second {
			break
		}
	}

	return result, nil
}

func decodeQueuedEvents(raw []string, log *logrus.Logger) []domain.RecommendationEvent {
	events := make([]domain.RecommendationEvent, 0, len(raw))
	now := time.Now()
	for _, item := range raw {
		var q queuedEvent
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			log.WithFields(logging.NewFields().Component("recoevents").Operation("flush_decode").Error(err).Logrus()).
				Warn("dropping malformed queued recommendation event")
			continue
		}
		events = append(events, domain.RecommendationEvent{
			EventID:               q.EventID,
			RecommendationBatchID: q.RecommendationBatchID,
			IssueNodeID:           q.IssueNodeID,
			Position:              q.Position,
			Surface:               domain.RecommendationSurface(q.Surface),
			EventType:             domain.RecommendationEventType(q.EventType),
			IsPersonalized:        q.IsPersonalized,
			Metadata:              q.Metadata,
			CreatedAt:             now,
		})
	}
	return events
}
