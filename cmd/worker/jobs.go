package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/issuefeed/backend/internal/app"
	"github.com/issuefeed/backend/internal/config"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/ingestion"
	"github.com/issuefeed/backend/pkg/ingestion/broker"
	"github.com/issuefeed/backend/pkg/recoevents"
)

// runCollector runs Scout -> persist repositories -> Gather -> Publish for
// every repository whose shard hour matches this run's UTC hour, per
// spec.md §4.3. Since this binary wires broker.MemoryTopic (an in-process
// placeholder until a real broker is deployed, per pkg/ingestion/broker's
// doc comment) rather than a persistent broker, nothing outside this
// process could ever subscribe to the topic it publishes onto, so this
// job drains it with an embedder worker in the same run instead of leaving
// that half of the pipeline to a separate "embedder" invocation.
func runCollector(ctx context.Context, a *app.App, cfg *config.Config) (map[string]int, error) {
	client := newFakeGitHubClient()
	scout := ingestion.NewScout(client)
	gatherer := ingestion.NewGatherer(client, cfg.Ingestion.MaxIssuesPerRepo)

	topic := broker.NewMemoryTopic(cfg.Ingestion.MaxInflightPublishes, 3, gobreaker.Settings{Name: "issues"})
	publisher := ingestion.NewPublisher(topic, "issues", int64(cfg.Ingestion.MaxInflightPublishes), cfg.Ingestion.PublishTimeout, a.Log)

	repos, err := scout.Discover(ctx, cfg.Ingestion.PopularityFloor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	shard := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if err := a.Repositories.Upsert(ctx, repo); err != nil {
			a.Log.WithError(err).WithField("repo", repo.FullName).Warn("repository upsert failed")
			continue
		}
		if ingestion.ShouldCollect(repo.NodeID, now) {
			shard = append(shard, repo)
		}
	}

	var published int64
	err = ingestion.RunGatherers(ctx, gatherer, shard, cfg.Ingestion.GathererConcurrency, func(draft domain.IssueDraft) {
		payload, encodeErr := ingestion.EncodeDraft(draft)
		if encodeErr != nil {
			a.Log.WithError(encodeErr).Warn("issue draft encode failed")
			return
		}
		if pubErr := publisher.Publish(ctx, payload, draft.NodeID, draft.ContentHash); pubErr == nil {
			atomic.AddInt64(&published, 1)
		}
	})
	if err != nil {
		return nil, err
	}

	topic.Close()

	worker := ingestion.NewEmbedderWorker(topic, a.Issues, a.Embedder, a.Log)
	var shutdown atomic.Bool
	if runErr := worker.Run(ctx, &shutdown); runErr != nil && !errors.Is(runErr, context.Canceled) {
		return nil, runErr
	}

	return map[string]int{
		"repos_discovered": len(repos),
		"repos_sharded":    len(shard),
		"issues_published": int(published),
	}, nil
}

// runJanitor deletes the bottom survival-score percentile, per spec.md §4.3.
func runJanitor(ctx context.Context, a *app.App, cfg *config.Config) (map[string]int, error) {
	janitor := ingestion.NewJanitor(a.Issues, cfg.Ingestion.JanitorMinIssues, a.Log)
	deleted, remaining, err := janitor.Prune(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{"deleted": deleted, "remaining": remaining}, nil
}

// runRecoFlush drains the queued recommendation events into the analytics
// table, bounded by RECO_FLUSH_MAX_SECONDS, per spec.md §4.6.
func runRecoFlush(ctx context.Context, a *app.App, cfg *config.Config) (recoevents.FlushResult, error) {
	job := recoevents.NewFlushJob(a.Cache, a.Analytics, cfg.Reco.FlushMaxSeconds, cfg.Reco.FlushBatchSize, a.Log)
	return job.Run(ctx)
}
