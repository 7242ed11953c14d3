// Package embedding provides the process-wide embedding singleton from
// spec.md §4.1: lazy double-checked initialization, single-shot and batch
// entrypoints that return nil (never an error) on underlying failure, and
// a shutdown hook.
package embedding

import (
	"context"
	"sync"

	"github.com/issuefeed/backend/pkg/domain"
)

// Encoder produces embeddings for text. Implementations never return an
// error for a failed embed; they return a nil vector and log internally,
// matching spec.md §4.1 "Failures return null (never throw to caller)".
type Encoder interface {
	Embed(ctx context.Context, text string) domain.Vector
	EmbedBatch(ctx context.Context, texts []string) []domain.Vector
	Dimension() int
	Close() error
}

// Service is the process-wide singleton wrapper around an Encoder. It is
// safe for concurrent use; the underlying Encoder is constructed lazily on
// first use via a double-checked mutex, exactly once.
type Service struct {
	mu      sync.Mutex
	encoder Encoder
	factory func() Encoder
}

// NewService returns a Service that will lazily build its Encoder with
// factory on first call to Encoder()/Embed()/EmbedBatch().
func NewService(factory func() Encoder) *Service {
	return &Service{factory: factory}
}

func (s *Service) get() Encoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoder == nil {
		s.encoder = s.factory()
	}
	return s.encoder
}

// Embed embeds a single text, returning nil on failure.
func (s *Service) Embed(ctx context.Context, text string) domain.Vector {
	return s.get().Embed(ctx, text)
}

// EmbedBatch embeds multiple texts in one call.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) []domain.Vector {
	return s.get().EmbedBatch(ctx, texts)
}

// Dimension returns D, the fixed embedding dimension.
func (s *Service) Dimension() int {
	return s.get().Dimension()
}

// Shutdown releases the encoder's resources. Safe to call even if the
// encoder was never lazily constructed.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoder == nil {
		return nil
	}
	err := s.encoder.Close()
	s.encoder = nil
	return err
}
