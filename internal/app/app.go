// Package app owns the process-wide singletons shared by cmd/api and
// cmd/worker: the embedder, the Postgres connection pool, the Redis
// cache client, and the engines/repositories built on top of them. Every
// dependent is constructed once in New and released in Shutdown, per
// spec.md §5's concurrency and resource model.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/config"
	"github.com/issuefeed/backend/pkg/embedding"
	"github.com/issuefeed/backend/pkg/feed"
	"github.com/issuefeed/backend/pkg/ratelimit"
	"github.com/issuefeed/backend/pkg/recoevents"
	"github.com/issuefeed/backend/pkg/search"
	"github.com/issuefeed/backend/pkg/storage/cache"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

// App is the root lifecycle object: every long-lived dependency a binary
// needs, constructed once at startup and torn down once at shutdown.
type App struct {
	Config *config.Config
	Log    *logrus.Logger

	DB    *sqlx.DB
	Cache *cache.Client

	Embedder *embedding.Service
	Limiter  *ratelimit.Limiter

	Issues        *postgres.IssueRepository
	Repositories  *postgres.RepositoryRepository
	Profiles      *postgres.ProfileRepository
	PendingIssues *postgres.PendingIssueRepository
	Analytics     *postgres.AnalyticsRepository
	Stats         *postgres.StatsRepository

	Search *search.Engine
	Feed   *feed.Engine
	Reco   *recoevents.Submitter
}

// New wires every singleton described above. The embedder is constructed
// lazily on first use (embedding.Service's own double-checked pattern);
// everything else is built eagerly so a misconfiguration fails fast at
// startup rather than on the first request.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	sqlxDB, err := postgres.Open(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlxDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	cacheClient := cache.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	}, log)

	embedder := embedding.NewService(encoderFactory(cfg.Embedding))
	limiter := ratelimit.NewLimiter(cacheClient.GetClient(), cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)

	issues := postgres.NewIssueRepository(sqlxDB)
	repositories := postgres.NewRepositoryRepository(sqlxDB)
	profiles := postgres.NewProfileRepository(sqlxDB)
	pendingIssues := postgres.NewPendingIssueRepository(sqlxDB)
	analytics := postgres.NewAnalyticsRepository(sqlxDB)
	stats := postgres.NewStatsRepository(sqlxDB)

	searchCache := search.NewCache(cacheClient)
	searchEngine := search.NewEngine(issues, embedder, searchCache, cacheClient, analytics, log)
	feedEngine := feed.NewEngine(issues)
	recoSubmitter := recoevents.NewSubmitter(cacheClient)

	return &App{
		Config: cfg,
		Log:    log,

		DB:    sqlxDB,
		Cache: cacheClient,

		Embedder: embedder,
		Limiter:  limiter,

		Issues:        issues,
		Repositories:  repositories,
		Profiles:      profiles,
		PendingIssues: pendingIssues,
		Analytics:     analytics,
		Stats:         stats,

		Search: searchEngine,
		Feed:   feedEngine,
		Reco:   recoSubmitter,
	}, nil
}

// Shutdown releases every resource New acquired. Safe to call even if New
// returned an error partway through, as long as the returned *App itself
// is non-nil.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.Embedder.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("shutdown embedder: %w", err))
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("app shutdown: %v", errs)
}

func encoderFactory(cfg config.EmbeddingConfig) func() embedding.Encoder {
	return func() embedding.Encoder {
		switch cfg.Provider {
		case "langchain":
			// No concrete provider SDK is in scope (spec.md §9 "no concrete
			// GitHub/embedding vendor SDK dependency"); operators wire a
			// real langchaingo embedder by replacing this factory.
			return embedding.NewLocalEncoder(cfg.Dimension)
		default:
			return embedding.NewLocalEncoder(cfg.Dimension)
		}
	}
}
