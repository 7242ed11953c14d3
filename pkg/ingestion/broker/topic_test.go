package broker

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func newTestTopic(capacity, maxRedeliveries int) *MemoryTopic {
	return NewMemoryTopic(capacity, maxRedeliveries, gobreaker.Settings{
		Name: "test-topic",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func TestMemoryTopicPublishAndSubscribe(t *testing.T) {
	topic := newTestTopic(4, 2)
	ctx := context.Background()

	require.NoError(t, topic.Publish(ctx, Message{NodeID: "I_1", ContentHash: "abc"}))

	env := <-topic.Subscribe()
	require.Equal(t, "I_1", env.NodeID)
	require.Equal(t, "abc", env.ContentHash)
	env.Ack()
}

func TestMemoryTopicPublishBlocksUntilContextDeadline(t *testing.T) {
	topic := newTestTopic(1, 2)
	ctx := context.Background()
	require.NoError(t, topic.Publish(ctx, Message{NodeID: "I_1"}))

	deadlineCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := topic.Publish(deadlineCtx, Message{NodeID: "I_2"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryTopicNackRedeliversUpToLimit(t *testing.T) {
	topic := newTestTopic(4, 1)
	ctx := context.Background()
	require.NoError(t, topic.Publish(ctx, Message{NodeID: "I_1"}))

	first := <-topic.Subscribe()
	require.Equal(t, 0, first.Attempt)
	first.Nack()

	second := <-topic.Subscribe()
	require.Equal(t, 1, second.Attempt)
	second.Nack()

	require.Equal(t, int64(1), topic.DeadLettered())
	select {
	case <-topic.Subscribe():
		t.Fatal("expected no further redelivery once maxRedeliveries is exhausted")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMemoryTopicBreakerTripsAfterRepeatedTimeouts(t *testing.T) {
	topic := newTestTopic(1, 2)
	ctx := context.Background()
	require.NoError(t, topic.Publish(ctx, Message{NodeID: "fill"}))

	for i := 0; i < 5; i++ {
		deadlineCtx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
		_ = topic.Publish(deadlineCtx, Message{NodeID: "overflow"})
		cancel()
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	err := topic.Publish(deadlineCtx, Message{NodeID: "tripped"})
	require.Error(t, err)
}
