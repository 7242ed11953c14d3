package ingestion

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/metrics"
	"github.com/issuefeed/backend/pkg/scoring"
)

// Gatherer harvests issues for one repository at a time, scoring and
// Q-gating each one on the fly, per spec.md §4.3.
type Gatherer struct {
	client           GitHubClient
	maxIssuesPerRepo int
}

func NewGatherer(client GitHubClient, maxIssuesPerRepo int) *Gatherer {
	return &Gatherer{client: client, maxIssuesPerRepo: maxIssuesPerRepo}
}

// Harvest pulls issues for repo, drops junk, and returns a lazy, finite,
// non-restartable sequence of IssueDrafts over the returned channel. The
// channel is closed when the repo's issues are exhausted or ctx is done.
func (g *Gatherer) Harvest(ctx context.Context, repo domain.Repository) <-chan domain.IssueDraft {
	out := make(chan domain.IssueDraft)

	go func() {
		defer close(out)

		issues, err := g.client.ListIssues(ctx, repo, g.maxIssuesPerRepo)
		if err != nil {
			return
		}

		for _, iss := range issues {
			if scoring.IsJunk(iss.BodyText) {
				metrics.IssuesDroppedJunkTotal.Inc()
				continue
			}

			components := domain.QComponents{
				HasCode:            scoring.HasCode(iss.BodyText),
				HasTemplateHeaders: scoring.HasTemplateHeaders(iss.BodyText),
				TechStackWeight:    scoring.TechStackWeight(iss.Title, iss.BodyText, repo.PrimaryLanguage),
			}
			draft := domain.IssueDraft{
				NodeID:          iss.NodeID,
				RepoID:          repo.NodeID,
				Title:           iss.Title,
				BodyText:        iss.BodyText,
				Labels:          iss.Labels,
				GithubURL:       iss.GithubURL,
				GithubCreatedAt: iss.GithubCreatedAt,
				QComponents:     components,
				QScore: scoring.QScore(scoring.QComponentsInput{
					HasCode:            components.HasCode,
					HasTemplateHeaders: components.HasTemplateHeaders,
					TechStackWeight:    components.TechStackWeight,
				}),
				ContentHash: scoring.ContentHash(iss.NodeID, iss.Title, iss.BodyText),
			}

			select {
			case out <- draft:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// RunGatherers fans Harvest out across repos bounded by concurrency
// (spec.md §4.3's gatherer_concurrency, default 10), sending every
// resulting IssueDraft onto sink. It blocks until every repo's sequence is
// exhausted or ctx is cancelled.
func RunGatherers(ctx context.Context, g *Gatherer, repos []domain.Repository, concurrency int, sink func(domain.IssueDraft)) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for _, repo := range repos {
		repo := repo
		group.Go(func() error {
			for draft := range g.Harvest(groupCtx, repo) {
				sink(draft)
			}
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
