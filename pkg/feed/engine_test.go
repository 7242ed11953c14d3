package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/feed/feedtest"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

type fakeCandidateStore struct {
	feedCandidates     []postgres.EnrichedIssue
	trendingCandidates []postgres.EnrichedIssue
	err                error
}

func (f *fakeCandidateStore) FeedCandidates(ctx context.Context, preferredLanguages, preferredTopics []string, minHeatThreshold float64) ([]postgres.EnrichedIssue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feedCandidates, nil
}

func (f *fakeCandidateStore) TrendingCandidates(ctx context.Context, minQScore float64, languages, labels, repos []string, limit int) ([]postgres.EnrichedIssue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trendingCandidates, nil
}

func enrichedIssue(nodeID string, qScore float64, embedding domain.Vector, ingestedAt time.Time) postgres.EnrichedIssue {
	return enrichedIssueWithTopics(nodeID, qScore, embedding, ingestedAt, nil)
}

func enrichedIssueWithTopics(nodeID string, qScore float64, embedding domain.Vector, ingestedAt time.Time, topics []string) postgres.EnrichedIssue {
	return postgres.EnrichedIssue{
		Issue: domain.Issue{
			NodeID:     nodeID,
			Title:      "issue " + nodeID,
			BodyText:   "body",
			QScore:     qScore,
			Embedding:  embedding,
			IngestedAt: ingestedAt,
		},
		RepoName:        "owner/" + nodeID,
		PrimaryLanguage: "go",
		Topics:          topics,
	}
}

func TestEnginePersonalizedRanksBySimilarityTimesFreshness(t *testing.T) {
	now := time.Now()
	store := &fakeCandidateStore{
		feedCandidates: []postgres.EnrichedIssue{
			enrichedIssue("stale-but-similar", 0.9, domain.Vector{1, 0}, now.Add(-30*24*time.Hour)),
			enrichedIssue("fresh-and-similar", 0.9, domain.Vector{1, 0}, now),
		},
	}
	engine := NewEngine(store)
	profile := feedtest.FakeProfile{}

	page, err := engine.Personalized(context.Background(), profile, domain.Vector{1, 0}, nil, nil, 0.6, Request{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	require.Equal(t, "fresh-and-similar", page.Results[0].NodeID)
	require.True(t, page.IsPersonalized)
	require.NotNil(t, page.Results[0].SimilarityScore)
}

func TestEnginePersonalizedSkipsIssuesWithoutEmbedding(t *testing.T) {
	store := &fakeCandidateStore{
		feedCandidates: []postgres.EnrichedIssue{
			enrichedIssue("no-embedding", 0.9, nil, time.Now()),
			enrichedIssue("has-embedding", 0.9, domain.Vector{1, 0}, time.Now()),
		},
	}
	engine := NewEngine(store)
	page, err := engine.Personalized(context.Background(), feedtest.FakeProfile{}, domain.Vector{1, 0}, nil, nil, 0.6, Request{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "has-embedding", page.Results[0].NodeID)
}

func TestEnginePersonalizedWhyThisIncludesRepoTopics(t *testing.T) {
	now := time.Now()
	store := &fakeCandidateStore{
		feedCandidates: []postgres.EnrichedIssue{
			enrichedIssueWithTopics("topic-match", 0.9, domain.Vector{1, 0}, now, []string{"kubernetes"}),
		},
	}
	engine := NewEngine(store)
	profile := feedtest.FakeProfile{PreferredTopicsVal: []string{"kubernetes"}}

	page, err := engine.Personalized(context.Background(), profile, domain.Vector{1, 0}, nil, nil, 0.6, Request{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.NotEmpty(t, page.Results[0].WhyThis)
	require.Equal(t, "kubernetes", page.Results[0].WhyThis[0].Entity)
}

func TestEnginePersonalizedPropagatesStoreError(t *testing.T) {
	store := &fakeCandidateStore{err: errors.New("db down")}
	engine := NewEngine(store)
	_, err := engine.Personalized(context.Background(), feedtest.FakeProfile{}, domain.Vector{1, 0}, nil, nil, 0.6, Request{})
	require.Error(t, err)
}

func TestEngineTrendingReturnsUnpersonalizedPageWithCTA(t *testing.T) {
	store := &fakeCandidateStore{
		trendingCandidates: []postgres.EnrichedIssue{
			enrichedIssue("a", 0.9, nil, time.Now()),
			enrichedIssue("b", 0.8, nil, time.Now()),
		},
	}
	engine := NewEngine(store)
	page, err := engine.Trending(context.Background(), TrendingFilters{}, Request{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	require.False(t, page.IsPersonalized)
	require.NotEmpty(t, page.ProfileCTA)
	require.Nil(t, page.Results[0].SimilarityScore)
}

func TestEngineTrendingPaginates(t *testing.T) {
	candidates := make([]postgres.EnrichedIssue, 5)
	for i := range candidates {
		candidates[i] = enrichedIssue(string(rune('a'+i)), 0.9, nil, time.Now())
	}
	store := &fakeCandidateStore{trendingCandidates: candidates}
	engine := NewEngine(store)

	page, err := engine.Trending(context.Background(), TrendingFilters{}, Request{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	require.Equal(t, 5, page.Total)
	require.True(t, page.HasMore)
}
