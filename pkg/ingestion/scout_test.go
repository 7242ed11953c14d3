package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeGitHubClient struct {
	repos        []RepositorySummary
	discoverErr  error
	issuesByRepo map[string][]IssueSummary
}

func (f *fakeGitHubClient) DiscoverRepositories(ctx context.Context, starFloor int) ([]RepositorySummary, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.repos, nil
}

func (f *fakeGitHubClient) ListIssues(ctx context.Context, repo domain.Repository, maxIssues int) ([]IssueSummary, error) {
	return f.issuesByRepo[repo.NodeID], nil
}

func TestScoutDiscoverDeduplicatesByNodeID(t *testing.T) {
	client := &fakeGitHubClient{repos: []RepositorySummary{
		{NodeID: "R_1", FullName: "a/a", StargazerCount: 500},
		{NodeID: "R_1", FullName: "a/a", StargazerCount: 500},
		{NodeID: "R_2", FullName: "b/b", StargazerCount: 300},
	}}
	scout := NewScout(client)

	repos, err := scout.Discover(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, repos, 2)
}

func TestScoutDiscoverPropagatesClientError(t *testing.T) {
	client := &fakeGitHubClient{discoverErr: errBoom}
	scout := NewScout(client)

	_, err := scout.Discover(context.Background(), 100)
	require.ErrorIs(t, err, errBoom)
}

func TestShardHourIsStableAndWithinRange(t *testing.T) {
	h1 := ShardHour("R_kubernetes")
	h2 := ShardHour("R_kubernetes")
	require.Equal(t, h1, h2)
	require.Less(t, h1, uint32(24))
}

func TestShardHourDistributesAcrossDistinctIDs(t *testing.T) {
	require.NotEqual(t, ShardHour("R_a"), ShardHour("R_totally_different_node_id"))
}

func TestShouldCollectMatchesCurrentUTCHour(t *testing.T) {
	nodeID := "R_x"
	hour := ShardHour(nodeID)
	now := time.Date(2026, 1, 1, int(hour), 0, 0, 0, time.UTC)
	require.True(t, ShouldCollect(nodeID, now))
	require.False(t, ShouldCollect(nodeID, now.Add(time.Hour)))
}
