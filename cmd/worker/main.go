// Command worker runs the batch jobs behind the HTTP API: JOB_TYPE selects
// one of collector, embedder, janitor, or reco_flush, per spec.md §4.3/§4.6.
// It also serves a health endpoint on PORT, grounded on
// original_source/apps/workers/src/health.py's embedder-liveness check.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/issuefeed/backend/internal/app"
	"github.com/issuefeed/backend/internal/config"
	"github.com/issuefeed/backend/internal/logging"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic(err)
	}

	log := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			log.WithError(err).Error("error during shutdown")
		}
	}()

	jobType := os.Getenv("JOB_TYPE")
	if jobType == "" {
		jobType = "collector"
	}

	health := startHealthServer(cfg.Server.Port, a)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = health.Shutdown(ctx)
	}()

	ctx := context.Background()
	log.WithField("job_type", jobType).Info("starting job")

	result, err := runJob(ctx, jobType, a, cfg)
	if err != nil {
		log.WithError(err).WithField("job_type", jobType).Fatal("job failed")
	}

	log.WithField("job_type", jobType).WithField("result", fmt.Sprintf("%+v", result)).Info("job completed successfully")
}

func runJob(ctx context.Context, jobType string, a *app.App, cfg *config.Config) (any, error) {
	switch jobType {
	case "collector":
		return runCollector(ctx, a, cfg)
	case "embedder":
		// Standalone embedder runs are a no-op in this binary: without a
		// persistent broker, nothing could have published onto a topic
		// this process did not itself create. The collector job drains
		// its own topic in the same run (see runCollector).
		return map[string]int{"drained": 0}, nil
	case "janitor":
		return runJanitor(ctx, a, cfg)
	case "reco_flush":
		return runRecoFlush(ctx, a, cfg)
	default:
		return nil, fmt.Errorf("unknown job type: %s", jobType)
	}
}

// startHealthServer serves GET /health, returning 200 iff the embedder
// produces a vector of the expected dimension and 503 otherwise, per
// original_source/apps/workers/src/health.py's health_check.
func startHealthServer(port string, a *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		vec := a.Embedder.Embed(r.Context(), "health check")
		dim := a.Embedder.Dimension()

		if len(vec) != dim {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf(`{"status":"error","detail":"expected %d-dim, got %d-dim"}`, dim, len(vec))))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf(`{"status":"ok","embedding_dim":%s}`, strconv.Itoa(dim))))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.WithError(err).Error("health server exited unexpectedly")
		}
	}()
	return srv
}
