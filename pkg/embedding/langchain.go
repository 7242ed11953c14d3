package embedding

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/issuefeed/backend/pkg/domain"
)

// LangchainEncoder adapts a langchaingo embeddings.Embedder to the Encoder
// interface, giving operators a pluggable path to a real embedding
// provider (OpenAI, Vertex, ...) without binding this package to any one
// vendor SDK. internal/app's encoder factory does not build it (it builds a
// LocalEncoder for EMBEDDING_PROVIDER=langchain too); it is constructed
// with NewLangchainEncoder around a configured embedder. Each call is
// wrapped in WithRetry's exponential backoff, since a remote provider call
// is the transient-failure case spec.md §4.1's retry wrapper targets.
type LangchainEncoder struct {
	embedder  embeddings.Embedder
	dimension int
	log       *logrus.Logger
	retry     RetryConfig
}

// NewLangchainEncoder wraps an already-configured langchaingo embedder.
// dimension must match the provider's output size (spec.md §3 invariant:
// "Embedding is either null or has exactly D components").
func NewLangchainEncoder(embedder embeddings.Embedder, dimension int, log *logrus.Logger) *LangchainEncoder {
	return &LangchainEncoder{embedder: embedder, dimension: dimension, log: log, retry: DefaultRetryConfig()}
}

func (e *LangchainEncoder) Dimension() int { return e.dimension }

func (e *LangchainEncoder) Close() error { return nil }

func (e *LangchainEncoder) Embed(ctx context.Context, text string) domain.Vector {
	return WithRetry(ctx, e.log, "langchain_embed", e.retry, func(ctx context.Context) domain.Vector {
		out := e.embedOnce(ctx, []string{text})
		if len(out) == 0 {
			return nil
		}
		return out[0]
	})
}

func (e *LangchainEncoder) EmbedBatch(ctx context.Context, texts []string) []domain.Vector {
	out := make([]domain.Vector, len(texts))
	for i, text := range texts {
		out[i] = e.Embed(ctx, text)
	}
	return out
}

// embedOnce makes a single underlying provider call, returning a nil slice
// on failure so WithRetry can distinguish "try again" from "done".
func (e *LangchainEncoder) embedOnce(ctx context.Context, texts []string) []domain.Vector {
	raw, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil
	}

	out := make([]domain.Vector, len(texts))
	for i, vec := range raw {
		if len(vec) != e.dimension {
			continue
		}
		v := make(domain.Vector, len(vec))
		for j, c := range vec {
			v[j] = c
		}
		out[i] = v.L2Normalize()
	}
	return out
}
