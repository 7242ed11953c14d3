package main

import (
	"context"
	"fmt"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/ingestion"
)

// fakeGitHubClient is the injected ingestion.GitHubClient stand-in: no
// concrete GitHub SDK dependency is in scope (spec.md §9), so this binary
// ships a deterministic fixture client rather than a real API integration.
// Operators wire a real client by implementing ingestion.GitHubClient and
// swapping the constructor call in runCollector.
type fakeGitHubClient struct {
	seed int
}

func newFakeGitHubClient() *fakeGitHubClient {
	return &fakeGitHubClient{}
}

func (c *fakeGitHubClient) DiscoverRepositories(_ context.Context, starFloor int) ([]ingestion.RepositorySummary, error) {
	summaries := []ingestion.RepositorySummary{
		{
			NodeID:            "R_fake_kubernaut",
			FullName:          "jordigilh/kubernaut",
			PrimaryLanguage:   "Go",
			Topics:            []string{"kubernetes", "aiops"},
			StargazerCount:    starFloor + 500,
			IssueVelocityWeek: 4.5,
		},
		{
			NodeID:            "R_fake_issuefeed",
			FullName:          "issuefeed/backend",
			PrimaryLanguage:   "Go",
			Topics:            []string{"search", "recommendations"},
			StargazerCount:    starFloor + 120,
			IssueVelocityWeek: 2.0,
		},
	}
	return summaries, nil
}

func (c *fakeGitHubClient) ListIssues(_ context.Context, repo domain.Repository, maxIssues int) ([]ingestion.IssueSummary, error) {
	n := 3
	if n > maxIssues {
		n = maxIssues
	}
	now := time.Now().UTC()
	issues := make([]ingestion.IssueSummary, 0, n)
	for i := 0; i < n; i++ {
		issues = append(issues, ingestion.IssueSummary{
			NodeID:          fmt.Sprintf("I_%s_%d", repo.NodeID, i),
			Title:           fmt.Sprintf("Sample issue %d in %s", i, repo.FullName),
			BodyText:        "Steps to reproduce:\n1. Run the binary\n2. Observe the panic\n\n```go\nfmt.Println(\"boom\")\n```",
			Labels:          []string{"bug"},
			State:           domain.StateOpen,
			GithubURL:       fmt.Sprintf("https://github.com/%s/issues/%d", repo.FullName, i),
			GithubCreatedAt: now,
		})
	}
	return issues, nil
}
