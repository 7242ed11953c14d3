package httpserver

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/feed"
	"github.com/issuefeed/backend/pkg/recoevents"
	"github.com/issuefeed/backend/pkg/search"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

// SearchEngine is the narrow surface Handler needs from pkg/search.Engine.
type SearchEngine interface {
	Search(ctx context.Context, req search.Request) (search.Response, error)
	Interact(ctx context.Context, searchID string, position int, selectedNode string) error
}

// FeedEngine is the narrow surface Handler needs from pkg/feed.Engine.
type FeedEngine interface {
	Personalized(ctx context.Context, profile feed.ProfileSource, combinedVector domain.Vector, preferredLanguages, preferredTopics []string, minHeatThreshold float64, req feed.Request) (feed.Page, error)
	Trending(ctx context.Context, filters feed.TrendingFilters, req feed.Request) (feed.Page, error)
}

// ProfileStore is the narrow surface Handler needs from
// pkg/storage/postgres.ProfileRepository.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// IssueStore is the narrow surface Handler needs from
// pkg/storage/postgres.IssueRepository for the issue-detail and similar-
// issues endpoints.
type IssueStore interface {
	GetByNodeID(ctx context.Context, nodeID string) (domain.Issue, error)
	VectorCandidates(ctx context.Context, queryVec domain.Vector, limit int) ([]string, error)
	EnrichForSearch(ctx context.Context, nodeIDs []string) (map[string]postgres.EnrichedIssue, error)
}

// RepositoryStore is the narrow surface Handler needs from
// pkg/storage/postgres.RepositoryRepository.
type RepositoryStore interface {
	SearchByFullName(ctx context.Context, query string, limit int) ([]domain.Repository, error)
}

// StatsStore is the narrow surface Handler needs from
// pkg/storage/postgres.StatsRepository.
type StatsStore interface {
	Platform(ctx context.Context) (domain.PlatformStats, error)
}

// RecoSubmitter is the narrow surface Handler needs from
// pkg/recoevents.Submitter.
type RecoSubmitter interface {
	Submit(ctx context.Context, batchID string, events []recoevents.EventSubmission) (recoevents.SubmitResult, error)
}

// Handler wires the HTTP surface from spec.md §6 to the core engines and
// repositories. Every field is a narrow interface so tests can substitute
// fakes without standing up Postgres or Redis.
type Handler struct {
	Search       SearchEngine
	Feed         FeedEngine
	Profiles     ProfileStore
	Issues       IssueStore
	Repositories RepositoryStore
	Stats        StatsStore
	Reco         RecoSubmitter
	BatchContext recoevents.Store
	Log          *logrus.Logger

	statsMu       sync.Mutex
	statsCache    domain.PlatformStats
	statsCachedAt time.Time
}

func NewHandler(
	searchEngine SearchEngine,
	feedEngine FeedEngine,
	profiles ProfileStore,
	issues IssueStore,
	repositories RepositoryStore,
	stats StatsStore,
	reco RecoSubmitter,
	batchContext recoevents.Store,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		Search:       searchEngine,
		Feed:         feedEngine,
		Profiles:     profiles,
		Issues:       issues,
		Repositories: repositories,
		Stats:        stats,
		Reco:         reco,
		BatchContext: batchContext,
		Log:          log,
	}
}

// storeRecoBatch persists the batch context a served feed page (personalized
// or trending) needs for a later POST /recommendations/events call, per spec.md §4.6.
// Failure is best-effort: a down cache must not fail the page response.
func (h *Handler) storeRecoBatch(ctx context.Context, batchID string, nodeIDs []string, page, pageSize int, isPersonalized bool) {
	if h.BatchContext == nil {
		return
	}
	err := recoevents.StoreBatchContext(ctx, h.BatchContext, recoevents.BatchContext{
		RecommendationBatchID: batchID,
		IssueNodeIDs:          nodeIDs,
		Page:                  page,
		PageSize:              pageSize,
		IsPersonalized:        isPersonalized,
		ServedAt:              time.Now(),
	})
	if err != nil {
		h.Log.WithFields(logging.NewFields().Component("httpserver").Operation("store_reco_batch").Error(err).Logrus()).
			Warn("failed to persist recommendation batch context")
	}
}
