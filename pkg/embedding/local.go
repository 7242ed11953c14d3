package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/issuefeed/backend/pkg/domain"
)

// DefaultDimension is D from spec.md §3: "fixed-dimension (D=768 for the
// issue corpus; the profile vectors share the same D) unit-norm dense
// vector".
const DefaultDimension = 768

var tokenRE = regexp.MustCompile(`[a-z0-9+#.]+`)

// LocalEncoder produces deterministic, unit-L2-norm vectors via a
// token-hash projection: every token is hashed into a small set of
// dimensions it contributes a signed weight to, so semantically similar
// texts (sharing tokens) land closer together than unrelated texts.
// Hash-projected, L2-normalized, deterministic, and zero-vector for
// empty input.
type LocalEncoder struct {
	dim int
}

// NewLocalEncoder builds a LocalEncoder of the given dimension, defaulting
// to DefaultDimension for dim <= 0.
func NewLocalEncoder(dim int) *LocalEncoder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &LocalEncoder{dim: dim}
}

func (e *LocalEncoder) Dimension() int { return e.dim }

func (e *LocalEncoder) Close() error { return nil }

func (e *LocalEncoder) Embed(_ context.Context, text string) domain.Vector {
	return e.embedOne(text)
}

func (e *LocalEncoder) EmbedBatch(_ context.Context, texts []string) []domain.Vector {
	out := make([]domain.Vector, len(texts))
	for i, t := range texts {
		out[i] = e.embedOne(t)
	}
	return out
}

func (e *LocalEncoder) embedOne(text string) domain.Vector {
	vec := make(domain.Vector, e.dim)

	tokens := tokenRE.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec
	}

	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		// Each token contributes to three dimensions with alternating
		// sign, spreading its influence while staying deterministic.
		for k := 0; k < 3; k++ {
			mix := sum ^ (uint64(k) * 0x9E3779B97F4A7C15)
			idx := int(mix % uint64(e.dim))
			sign := float32(1)
			if (mix>>63)&1 == 1 {
				sign = -1
			}
			vec[idx] += sign * (1.0 / float32(len(tokens)))
		}
	}

	return vec.L2Normalize()
}
