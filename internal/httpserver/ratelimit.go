package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/issuefeed/backend/pkg/apperr"
)

// RateLimiter is the narrow surface httpserver needs from
// pkg/ratelimit.Limiter: spec.md §5's shared token bucket keyed by
// compound (ip|flow_id).
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// rateLimit keys the bucket on (remote IP | flow), where flow identifies
// the route group being limited (e.g. "search", "recommendations-events").
// A limiter error fails open: the request proceeds and the failure is the
// limiter's own concern (pkg/ratelimit.Limiter already falls back to an
// in-process bucket when its backing cache is unavailable).
func rateLimit(limiter RateLimiter, flow string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := fmt.Sprintf("%s|%s", clientIP(r), flow)
			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				writeError(w, apperr.RateLimited("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}
