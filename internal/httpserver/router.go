// Package httpserver wires spec.md §6's HTTP API onto a go-chi router:
// the security-headers and CORS middleware, narrow Authenticator/
// RateLimiter collaborators for the identity/session and rate-limiting
// concerns spec.md §1 places out of scope, and one handler per endpoint
// delegating to the search, feed, and recommendation-event engines.
package httpserver

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/issuefeed/backend/internal/config"
)

// NewRouter builds the full route table. authn and limiter may be nil in
// tests that don't exercise auth or rate limiting; rateLimit already
// treats a nil limiter as a no-op, and every route group either requires
// auth (panicking is the wrong failure mode, so callers must supply a
// non-nil Authenticator whenever an auth-required route is mounted) or
// doesn't.
func NewRouter(h *Handler, authn Authenticator, limiter RateLimiter, corsCfg config.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(httpMetrics)
	if len(corsCfg.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(corsCfg))
	}

	r.Group(func(public chi.Router) {
		public.Get("/feed/trending", h.HandleTrendingFeed)
		public.Get("/repositories", h.HandleRepositories)
		public.Get("/stats", h.HandleStats)
		public.Get("/taxonomy/languages", h.HandleTaxonomyLanguages)
		public.Get("/taxonomy/stack-areas", h.HandleTaxonomyStackAreas)
	})

	r.Group(func(mixed chi.Router) {
		mixed.Use(rateLimit(limiter, "search"))
		mixed.Use(optionalAuth(authn))
		mixed.Post("/search", h.HandleSearch)
		mixed.Post("/search/interact", h.HandleSearchInteract)
	})

	r.Group(func(private chi.Router) {
		private.Use(rateLimit(limiter, "authenticated"))
		private.Use(requireAuth(authn))
		private.Get("/feed", h.HandleFeed)
		private.Post("/recommendations/events", h.HandleRecommendationEvents)
		private.Get("/issues/{node_id}", h.HandleGetIssue)
		private.Get("/issues/{node_id}/similar", h.HandleSimilarIssues)
	})

	return r
}
