package embedding

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/domain"
)

// RetryConfig configures the exponential-backoff retry loop from spec.md
// §4.1: "base 1s, factor 2, max 3 attempts".
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultRetryConfig matches the retry wrapper described in spec.md §4.1.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 1 * time.Second, Factor: 2}
}

// WithRetry generates a source embedding (intent/resume/github) under the
// configured backoff loop, generalizing the three near-identical
// *_with_retry functions from original_source/apps/backend/src/services/
// vector_generation.py into one reusable helper with a per-call label for
// logs. Final failure logs and returns nil without raising, per spec.md
// §4.1.
func WithRetry(ctx context.Context, log *logrus.Logger, label string, cfg RetryConfig, fn func(ctx context.Context) domain.Vector) domain.Vector {
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		vec := fn(ctx)
		if vec != nil {
			return vec
		}

		fields := logging.NewFields().Component("embedding").Operation(label).Logrus()
		fields["attempt"] = attempt
		fields["max_attempts"] = cfg.MaxAttempts

		if attempt == cfg.MaxAttempts {
			log.WithFields(fields).Error("embedding generation permanently failed")
			return nil
		}

		log.WithFields(fields).Warn("embedding generation failed, retrying")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * cfg.Factor)
	}

	return nil
}
