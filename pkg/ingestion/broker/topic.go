// Package broker models the persistent broker topic spec.md §4.3 assumes
// as a transport for repository and issue fan-out: a durable queue with
// per-message ack/nack and dead-lettering after repeated nacks. MemoryTopic
// is the in-process, bounded-queue implementation used until a real broker
// is wired in; it satisfies the "lazy, non-restartable sequence" design
// note from spec.md §9: once drained, a topic has no replay.
package broker

import (
	"context"
	"sync/atomic"

	"github.com/sony/gobreaker"
)

// Message is a unit of work on a topic. ContentHash doubles as the
// at-broker dedup attribute and the at-consumer idempotency payload field
// spec.md §4.3 describes for the issue topic.
type Message struct {
	NodeID      string
	ContentHash string
	Payload     []byte
	Attempt     int
}

// Envelope wraps a delivered Message with its ack/nack callbacks. Callers
// must call exactly one of Ack/Nack per delivery.
type Envelope struct {
	Message
	ack  func()
	nack func()
}

func (e Envelope) Ack()  { e.ack() }
func (e Envelope) Nack() { e.nack() }

// Topic is a persistent publish/subscribe channel. Publish may block or
// fail under the caller's context deadline; Subscribe returns the single
// delivery channel shared by all consumers of this topic (competing
// consumers, not fan-out).
type Topic interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe() <-chan Envelope
	Close()
}

// MemoryTopic is an in-process, channel-backed Topic with a bounded queue
// and gobreaker-wrapped publish path: a run of publish failures (a full
// queue under a context deadline counts as one) trips the breaker and
// Publish fails fast instead of piling up goroutines behind a closed door.
type MemoryTopic struct {
	ch              chan Envelope
	breaker         *gobreaker.CircuitBreaker
	maxRedeliveries int
	deadLettered    atomic.Int64
}

// NewMemoryTopic returns a MemoryTopic with the given queue capacity. A
// message is redelivered up to maxRedeliveries times after a Nack before
// being dropped and counted in DeadLettered.
func NewMemoryTopic(capacity, maxRedeliveries int, settings gobreaker.Settings) *MemoryTopic {
	return &MemoryTopic{
		ch:              make(chan Envelope, capacity),
		breaker:         gobreaker.NewCircuitBreaker(settings),
		maxRedeliveries: maxRedeliveries,
	}
}

func (t *MemoryTopic) Publish(ctx context.Context, msg Message) error {
	_, err := t.breaker.Execute(func() (any, error) {
		env := t.envelope(msg)
		select {
		case t.ch <- env:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return err
}

func (t *MemoryTopic) envelope(msg Message) Envelope {
	var env Envelope
	env.Message = msg
	env.ack = func() {}
	env.nack = func() {
		if msg.Attempt >= t.maxRedeliveries {
			t.deadLettered.Add(1)
			return
		}
		redelivered := msg
		redelivered.Attempt++
		select {
		case t.ch <- t.envelope(redelivered):
		default:
			t.deadLettered.Add(1)
		}
	}
	return env
}

func (t *MemoryTopic) Subscribe() <-chan Envelope { return t.ch }

// DeadLettered returns the count of messages dropped after exhausting
// maxRedeliveries.
func (t *MemoryTopic) DeadLettered() int64 { return t.deadLettered.Load() }

func (t *MemoryTopic) Close() { close(t.ch) }
