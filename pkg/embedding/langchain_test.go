package embedding

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

// fastRetry disables backoff delay so failure-path tests don't sleep.
func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 1, BaseDelay: 0, Factor: 1}
}

// fakeLangchainEmbedder implements embeddings.Embedder with fixed vectors,
// standing in for a real provider (OpenAI, Vertex, ...) in tests.
type fakeLangchainEmbedder struct {
	vectors [][]float32
	err     error
}

func (f *fakeLangchainEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *fakeLangchainEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.vectors) == 0 {
		return nil, nil
	}
	return f.vectors[0], nil
}

func TestLangchainEncoderEmbedNormalizesAndDimensionChecks(t *testing.T) {
	fake := &fakeLangchainEmbedder{vectors: [][]float32{{3, 4}}}
	enc := NewLangchainEncoder(fake, 2, logrus.New())

	vec := enc.Embed(context.Background(), "memory leak in http client")
	if len(vec) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(vec))
	}
	if norm := vec.L2Norm(); norm < 0.98 || norm > 1.02 {
		t.Errorf("expected unit norm, got %v", norm)
	}
}

func TestLangchainEncoderDropsWrongDimensionVector(t *testing.T) {
	fake := &fakeLangchainEmbedder{vectors: [][]float32{{1, 2, 3}}}
	enc := NewLangchainEncoder(fake, 2, logrus.New())
	enc.retry = fastRetry()

	out := enc.EmbedBatch(context.Background(), []string{"x"})
	if len(out) != 1 || out[0] != nil {
		t.Fatalf("expected nil vector for dimension mismatch, got %v", out)
	}
}

func TestLangchainEncoderEmbedFailsClosed(t *testing.T) {
	fake := &fakeLangchainEmbedder{err: context.DeadlineExceeded}
	enc := NewLangchainEncoder(fake, 2, logrus.New())
	enc.retry = fastRetry()

	vec := enc.Embed(context.Background(), "timeout case")
	if vec != nil {
		t.Fatalf("expected nil vector on provider error, got %v", vec)
	}
}
