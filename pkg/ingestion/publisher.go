package ingestion

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/ingestion/broker"
	"github.com/issuefeed/backend/pkg/metrics"
)

// DefaultMaxInflight is spec.md §4.3's "order 1 000" bound on concurrently
// outstanding publish futures.
const DefaultMaxInflight = 1000

// DefaultPublishTimeout bounds a single publish future; a hung publish is
// counted as a failure and unblocks the producer rather than stalling it.
const DefaultPublishTimeout = 5 * time.Second

// Publisher fans IssueDrafts out onto a broker.Topic, bounded by a
// counting semaphore (MAX_INFLIGHT) and a per-publish timeout
// (PUBLISH_TIMEOUT), per spec.md §4.3's issue fan-out bounds.
type Publisher struct {
	topic          broker.Topic
	topicName      string
	inflight       *semaphore.Weighted
	publishTimeout time.Duration
	log            *logrus.Logger
}

func NewPublisher(topic broker.Topic, topicName string, maxInflight int64, publishTimeout time.Duration, log *logrus.Logger) *Publisher {
	return &Publisher{
		topic:          topic,
		topicName:      topicName,
		inflight:       semaphore.NewWeighted(maxInflight),
		publishTimeout: publishTimeout,
		log:            log,
	}
}

// Publish publishes payload keyed by nodeID/contentHash, blocking until a
// semaphore slot is free or ctx is cancelled (an acquire failure is
// surfaced since the caller's context is gone). A publish that times out or
// the broker rejects is the TransientPublish case from spec.md §7: it is
// counted and logged, never surfaced, since the producer must keep moving.
func (p *Publisher) Publish(ctx context.Context, payload []byte, nodeID, contentHash string) error {
	if err := p.inflight.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.inflight.Release(1)

	publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	err := p.topic.Publish(publishCtx, broker.Message{
		NodeID:      nodeID,
		ContentHash: contentHash,
		Payload:     payload,
	})
	if err != nil {
		metrics.PublishFailuresTotal.WithLabelValues(p.topicName).Inc()
		p.log.WithFields(logging.NewFields().Component("ingestion").Operation("publish").
			NodeID(nodeID).Error(err).Logrus()).Warn("transient publish failure")
	}
	return nil
}
