package search

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/apperr"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCandidateStore struct {
	lexical  []string
	vector   []string
	enriched map[string]postgres.EnrichedIssue
	err      error
}

func (f *fakeCandidateStore) LexicalCandidates(ctx context.Context, query string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lexical, nil
}

func (f *fakeCandidateStore) VectorCandidates(ctx context.Context, queryVec domain.Vector, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeCandidateStore) EnrichForSearch(ctx context.Context, nodeIDs []string) (map[string]postgres.EnrichedIssue, error) {
	out := make(map[string]postgres.EnrichedIssue, len(nodeIDs))
	for _, id := range nodeIDs {
		if e, ok := f.enriched[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

type fakeEmbedder struct{ vec domain.Vector }

func (f fakeEmbedder) Embed(ctx context.Context, text string) domain.Vector { return f.vec }

type fakeInteractionStore struct {
	recorded []domain.SearchInteraction
	err      error
}

func (f *fakeInteractionStore) RecordSearchInteraction(ctx context.Context, i domain.SearchInteraction) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, i)
	return nil
}

func issue(nodeID, title string) postgres.EnrichedIssue {
	return postgres.EnrichedIssue{
		Issue:           domain.Issue{NodeID: nodeID, Title: title, BodyText: "body for " + title},
		RepoName:        "owner/" + nodeID,
		PrimaryLanguage: "Go",
	}
}

func newTestEngine(candidates *fakeCandidateStore, interactions *fakeInteractionStore) (*Engine, *fakeStageCache, *fakeStageCache) {
	stage1Cache := newFakeStageCache()
	contexts := newFakeStageCache()
	cache := NewCache(stage1Cache)
	return NewEngine(candidates, fakeEmbedder{vec: domain.Vector{0.1, 0.2}}, cache, contexts, interactions, testLogger()), stage1Cache, contexts
}

func TestEngineSearchReturnsEnrichedFirstPage(t *testing.T) {
	candidates := &fakeCandidateStore{
		lexical: []string{"a", "b"},
		vector:  []string{"b", "a"},
		enriched: map[string]postgres.EnrichedIssue{
			"a": issue("a", "Memory leak on shutdown"),
			"b": issue("b", "Race in worker pool"),
		},
	}
	engine, _, _ := newTestEngine(candidates, &fakeInteractionStore{})

	resp, err := engine.Search(context.Background(), Request{Query: "bug fix crash", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "a", resp.Results[0].NodeID)
	require.Equal(t, 2, resp.Total)
	require.False(t, resp.HasMore)
	require.NotEmpty(t, resp.SearchID)
}

func TestEngineSearchSkipsVectorPathForShortQuery(t *testing.T) {
	candidates := &fakeCandidateStore{
		lexical:  []string{"a"},
		vector:   []string{"should-not-be-used"},
		enriched: map[string]postgres.EnrichedIssue{"a": issue("a", "short query hit")},
	}
	engine, _, _ := newTestEngine(candidates, &fakeInteractionStore{})

	resp, err := engine.Search(context.Background(), Request{Query: "bug", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "a", resp.Results[0].NodeID)
}

func TestEngineSearchMarksCappedWhenSubqueryHitsLimit(t *testing.T) {
	lexical := make([]string, CandidateLimit)
	for i := range lexical {
		lexical[i] = "node"
	}
	candidates := &fakeCandidateStore{lexical: lexical, enriched: map[string]postgres.EnrichedIssue{}}
	engine, _, _ := newTestEngine(candidates, &fakeInteractionStore{})

	resp, err := engine.Search(context.Background(), Request{Query: "bug", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.True(t, resp.TotalIsCapped)
}

func TestEngineSearchPropagatesLexicalCandidateError(t *testing.T) {
	candidates := &fakeCandidateStore{err: errors.New("db down")}
	engine, _, _ := newTestEngine(candidates, &fakeInteractionStore{})

	_, err := engine.Search(context.Background(), Request{Query: "bug"})
	require.Error(t, err)
}

func TestEngineSearchUsesCachedStage1OnSecondCall(t *testing.T) {
	candidates := &fakeCandidateStore{
		lexical:  []string{"a"},
		enriched: map[string]postgres.EnrichedIssue{"a": issue("a", "cached hit")},
	}
	engine, _, _ := newTestEngine(candidates, &fakeInteractionStore{})

	req := Request{Query: "bug report", Page: 1, PageSize: 20}
	_, err := engine.Search(context.Background(), req)
	require.NoError(t, err)

	// Subsequent lookups fail at the store; a cache hit means Search
	// still succeeds.
	candidates.err = errors.New("db down")
	resp, err := engine.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestEngineInteractValidatesPosition(t *testing.T) {
	candidates := &fakeCandidateStore{
		lexical:  []string{"a", "b"},
		enriched: map[string]postgres.EnrichedIssue{"a": issue("a", "t1"), "b": issue("b", "t2")},
	}
	interactions := &fakeInteractionStore{}
	engine, _, _ := newTestEngine(candidates, interactions)

	resp, err := engine.Search(context.Background(), Request{Query: "bug report"})
	require.NoError(t, err)

	err = engine.Interact(context.Background(), resp.SearchID, 0, "a")
	require.NoError(t, err)
	require.Len(t, interactions.recorded, 1)
	require.Equal(t, "a", interactions.recorded[0].SelectedNode)

	err = engine.Interact(context.Background(), resp.SearchID, 99, "a")
	require.Error(t, err)
	require.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestEngineInteractRejectsUnknownSearchID(t *testing.T) {
	engine, _, _ := newTestEngine(&fakeCandidateStore{}, &fakeInteractionStore{})
	err := engine.Interact(context.Background(), "does-not-exist", 0, "a")
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEngineInteractSwallowsAnalyticsFailure(t *testing.T) {
	candidates := &fakeCandidateStore{
		lexical:  []string{"a"},
		enriched: map[string]postgres.EnrichedIssue{"a": issue("a", "t1")},
	}
	interactions := &fakeInteractionStore{err: errors.New("insert failed")}
	engine, _, _ := newTestEngine(candidates, interactions)

	resp, err := engine.Search(context.Background(), Request{Query: "bug report"})
	require.NoError(t, err)

	err = engine.Interact(context.Background(), resp.SearchID, 0, "a")
	require.NoError(t, err)
}
