package ingestion

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/ingestion/broker"
	"github.com/issuefeed/backend/pkg/metrics"
	"github.com/issuefeed/backend/pkg/scoring"
)

// Embedder is the narrow surface EmbedderWorker needs from
// pkg/embedding.Service.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.Vector
}

// IssueStore is the narrow surface EmbedderWorker needs from
// pkg/storage/postgres.IssueRepository.
type IssueStore interface {
	ContentHashOf(ctx context.Context, nodeID string) (hash string, hasEmbedding bool, err error)
	Upsert(ctx context.Context, issue domain.Issue) error
}

// EmbedderWorker pulls message batches from the issue topic and embeds,
// upserts, or short-circuits each one, per spec.md §4.3's "Embedder
// worker" algorithm.
type EmbedderWorker struct {
	topic    broker.Topic
	store    IssueStore
	embedder Embedder
	log      *logrus.Logger
}

func NewEmbedderWorker(topic broker.Topic, store IssueStore, embedder Embedder, log *logrus.Logger) *EmbedderWorker {
	return &EmbedderWorker{topic: topic, store: store, embedder: embedder, log: log}
}

// Run consumes the issue topic until it closes or ctx is done. Before
// processing each message it checks shutdown; once set, it nacks that
// message and every message still pending delivery, then returns without
// processing further, per spec.md §4.3.
func (w *EmbedderWorker) Run(ctx context.Context, shutdown *atomic.Bool) error {
	deliveries := w.topic.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-deliveries:
			if !ok {
				return nil
			}
			if shutdown.Load() {
				w.drainAndNack(env, deliveries)
				return nil
			}
			w.process(ctx, env)
		}
	}
}

// drainAndNack nacks env and every message already buffered in the topic,
// without blocking for further deliveries.
func (w *EmbedderWorker) drainAndNack(env broker.Envelope, deliveries <-chan broker.Envelope) {
	env.Nack()
	metrics.EmbedderNackTotal.Inc()
	for {
		select {
		case pending, ok := <-deliveries:
			if !ok {
				return
			}
			pending.Nack()
			metrics.EmbedderNackTotal.Inc()
		default:
			return
		}
	}
}

func (w *EmbedderWorker) process(ctx context.Context, env broker.Envelope) {
	fields := logging.NewFields().Component("ingestion").Operation("embedder_worker")

	draft, err := DecodeDraft(env.Payload)
	if err != nil {
		w.log.WithFields(fields.Error(err).Logrus()).Error("malformed issue message")
		env.Nack()
		return
	}
	fields = fields.NodeID(draft.NodeID)

	prevHash, hasEmbedding, err := w.store.ContentHashOf(ctx, draft.NodeID)
	if err == nil && hasEmbedding && prevHash == draft.ContentHash {
		env.Ack()
		return
	}

	embedding := w.embedder.Embed(ctx, strings.TrimSpace(draft.Title+"\n\n"+draft.BodyText))
	now := time.Now().UTC()
	issue := domain.Issue{
		NodeID:          draft.NodeID,
		RepoID:          draft.RepoID,
		Title:           draft.Title,
		BodyText:        draft.BodyText,
		Labels:          draft.Labels,
		State:           domain.StateOpen,
		GithubURL:       draft.GithubURL,
		GithubCreatedAt: draft.GithubCreatedAt,
		IngestedAt:      now,
		QComponents:     draft.QComponents,
		QScore:          draft.QScore,
		SurvivalScore:   scoring.SurvivalScore(draft.QScore, now, now),
		ContentHash:     draft.ContentHash,
		Embedding:       embedding,
	}

	if err := w.store.Upsert(ctx, issue); err != nil {
		w.log.WithFields(fields.Error(err).Logrus()).Warn("issue upsert failed, nacking for redelivery")
		env.Nack()
		return
	}

	metrics.IssuesIngestedTotal.Inc()
	env.Ack()
}
