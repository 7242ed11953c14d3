// Package ingestion implements spec.md §4.3's Scout -> Gather ->
// Quality-Gate -> Publish -> Embed -> Persist -> Janitor pipeline.
package ingestion

import (
	"context"
	"hash/crc32"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
)

// RepositorySummary is what the external source API returns per
// repository, before it is persisted as a domain.Repository.
type RepositorySummary struct {
	NodeID            string
	FullName          string
	PrimaryLanguage   string
	Topics            []string
	StargazerCount    int
	IssueVelocityWeek float64
}

// GitHubClient is the external source API surface Scout and Gatherer need.
// No concrete SDK is in scope; callers inject a real client or a fake.
type GitHubClient interface {
	DiscoverRepositories(ctx context.Context, starFloor int) ([]RepositorySummary, error)
	ListIssues(ctx context.Context, repo domain.Repository, maxIssues int) ([]IssueSummary, error)
}

// IssueSummary is what the external source API returns per issue, before
// Q-gating and embedding.
type IssueSummary struct {
	NodeID          string
	Title           string
	BodyText        string
	Labels          []string
	State           domain.IssueState
	GithubURL       string
	GithubCreatedAt time.Time
}

// Scout discovers repositories above a popularity floor and deduplicates
// them by node_id, per spec.md §4.3.
type Scout struct {
	client GitHubClient
}

func NewScout(client GitHubClient) *Scout {
	return &Scout{client: client}
}

// Discover queries the external source API for repositories with at least
// floor stargazers and returns them deduplicated by node_id, in the
// client's order. No cap is applied to the list length: it is as long as
// the client's result.
func (s *Scout) Discover(ctx context.Context, floor int) ([]domain.Repository, error) {
	summaries, err := s.client.DiscoverRepositories(ctx, floor)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(summaries))
	repos := make([]domain.Repository, 0, len(summaries))
	for _, sum := range summaries {
		if _, dup := seen[sum.NodeID]; dup {
			continue
		}
		seen[sum.NodeID] = struct{}{}
		repos = append(repos, domain.Repository{
			NodeID:            sum.NodeID,
			FullName:          sum.FullName,
			PrimaryLanguage:   sum.PrimaryLanguage,
			Topics:            sum.Topics,
			StargazerCount:    sum.StargazerCount,
			IssueVelocityWeek: sum.IssueVelocityWeek,
		})
	}
	return repos, nil
}

// shardModulus is the number of hourly shards a day is divided into, per
// spec.md §4.3: "CRC32(r.node_id) mod 24 = H, where H is the UTC hour of
// the job's start time."
const shardModulus = 24

// ShardHour returns CRC32(nodeID) mod 24, the hour bucket a repository
// belongs to. Over 24 hours every repository's ShardHour is visited
// exactly once, since it never changes for a given node_id.
func ShardHour(nodeID string) uint32 {
	return crc32.ChecksumIEEE([]byte(nodeID)) % shardModulus
}

// ShouldCollect reports whether nodeID's shard matches now's UTC hour, per
// spec.md §4.3's "sole temporal partitioning scheme."
func ShouldCollect(nodeID string, now time.Time) bool {
	return ShardHour(nodeID) == uint32(now.UTC().Hour())
}
