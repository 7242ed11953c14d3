package httpserver

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/issuefeed/backend/internal/config"
)

// corsMiddleware builds go-chi/cors from the configured origin whitelist.
// config.validate already rejects a literal "*" entry at load time (spec.md
// §6 "wildcard origins are rejected at startup"); an empty list means CORS
// is not enabled and cross-origin requests are simply not annotated.
func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
