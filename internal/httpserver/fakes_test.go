package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/feed"
	"github.com/issuefeed/backend/pkg/recoevents"
	"github.com/issuefeed/backend/pkg/search"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

var errBoom = errors.New("boom")

type fakeSearchEngine struct {
	response search.Response
	err      error

	interactErr      error
	interactedSearch string
}

func (f *fakeSearchEngine) Search(ctx context.Context, req search.Request) (search.Response, error) {
	return f.response, f.err
}

func (f *fakeSearchEngine) Interact(ctx context.Context, searchID string, position int, selectedNode string) error {
	f.interactedSearch = searchID
	return f.interactErr
}

type fakeFeedEngine struct {
	personalized    feed.Page
	personalizedErr error
	trending        feed.Page
	trendingErr     error
}

func (f *fakeFeedEngine) Personalized(ctx context.Context, profile feed.ProfileSource, combinedVector domain.Vector, preferredLanguages, preferredTopics []string, minHeatThreshold float64, req feed.Request) (feed.Page, error) {
	return f.personalized, f.personalizedErr
}

func (f *fakeFeedEngine) Trending(ctx context.Context, filters feed.TrendingFilters, req feed.Request) (feed.Page, error) {
	return f.trending, f.trendingErr
}

type fakeProfileStore struct {
	profile *domain.UserProfile
	err     error
}

func (f *fakeProfileStore) GetOrCreate(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeIssueStore struct {
	issue       domain.Issue
	getErr      error
	candidates  []string
	vectorErr   error
	enriched    map[string]postgres.EnrichedIssue
	enrichedErr error
}

func (f *fakeIssueStore) GetByNodeID(ctx context.Context, nodeID string) (domain.Issue, error) {
	if f.getErr != nil {
		return domain.Issue{}, f.getErr
	}
	return f.issue, nil
}

func (f *fakeIssueStore) VectorCandidates(ctx context.Context, queryVec domain.Vector, limit int) ([]string, error) {
	return f.candidates, f.vectorErr
}

func (f *fakeIssueStore) EnrichForSearch(ctx context.Context, nodeIDs []string) (map[string]postgres.EnrichedIssue, error) {
	return f.enriched, f.enrichedErr
}

type fakeRepositoryStore struct {
	repos []domain.Repository
	err   error
}

func (f *fakeRepositoryStore) SearchByFullName(ctx context.Context, query string, limit int) ([]domain.Repository, error) {
	return f.repos, f.err
}

type fakeStatsStore struct {
	stats domain.PlatformStats
	err   error
	calls int
}

func (f *fakeStatsStore) Platform(ctx context.Context) (domain.PlatformStats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeRecoSubmitter struct {
	result recoevents.SubmitResult
	err    error
}

func (f *fakeRecoSubmitter) Submit(ctx context.Context, batchID string, events []recoevents.EventSubmission) (recoevents.SubmitResult, error) {
	return f.result, f.err
}

type fakeBatchStore struct {
	kv        map[string]string
	ensureErr error
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{kv: make(map[string]string)}
}

func (f *fakeBatchStore) EnsureConnection(ctx context.Context) error { return f.ensureErr }
func (f *fakeBatchStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.kv[key] = value
	return nil
}
func (f *fakeBatchStore) Get(ctx context.Context, key string) (string, error) { return f.kv[key], nil }
func (f *fakeBatchStore) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}
func (f *fakeBatchStore) RPush(ctx context.Context, key, value string) error { return nil }
func (f *fakeBatchStore) LPopBatch(ctx context.Context, key string, n int64) ([]string, error) {
	return nil, nil
}

type fakeAuthenticator struct {
	userID        string
	authenticated bool
	err           error
}

func (f *fakeAuthenticator) Authenticate(r *http.Request) (string, bool, error) {
	return f.userID, f.authenticated, f.err
}

type fakeRateLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return f.allowed, f.retryAfter, f.err
}
