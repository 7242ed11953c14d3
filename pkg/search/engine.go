package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/apperr"
	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/metrics"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

// CandidateStore is the narrow surface Engine needs from
// pkg/storage/postgres.IssueRepository for Stage 1/Stage 2.
type CandidateStore interface {
	LexicalCandidates(ctx context.Context, query string, limit int) ([]string, error)
	VectorCandidates(ctx context.Context, queryVec domain.Vector, limit int) ([]string, error)
	EnrichForSearch(ctx context.Context, nodeIDs []string) (map[string]postgres.EnrichedIssue, error)
}

// Embedder is the narrow surface Engine needs from pkg/embedding.Service.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.Vector
}

// InteractionStore is the narrow surface Engine needs from
// pkg/storage/postgres.AnalyticsRepository.
type InteractionStore interface {
	RecordSearchInteraction(ctx context.Context, i domain.SearchInteraction) error
}

// contextStore is a short-TTL key/value store used for search-context
// persistence, satisfied by pkg/storage/cache.Client.
type contextStore interface {
	EnsureConnection(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// searchContextTTL is twice stage1TTL: a search_id lives only long enough
// for its immediate interact follow-up.
const searchContextTTL = 10 * time.Minute

// Engine implements spec.md §4.4's two-stage hybrid search.
type Engine struct {
	candidates CandidateStore
	embedder   Embedder
	cache      *Cache
	contexts   contextStore
	analytics  InteractionStore
	log        *logrus.Logger
}

func NewEngine(candidates CandidateStore, embedder Embedder, cache *Cache, contexts contextStore, analytics InteractionStore, log *logrus.Logger) *Engine {
	return &Engine{candidates: candidates, embedder: embedder, cache: cache, contexts: contexts, analytics: analytics, log: log}
}

// Search runs Stage 1 (cached RRF-fused candidate generation) followed by
// Stage 2 enrichment for the requested page, and persists a search-context
// record for a later Interact call.
func (e *Engine) Search(ctx context.Context, req Request) (Response, error) {
	req = req.normalize()

	stage1, stage1Duration, err := e.stage1(ctx, req)
	if err != nil {
		return Response{}, err
	}

	page := pageSlice(stage1.NodeIDs, req.offset(), req.PageSize)
	stage2Start := time.Now()
	results, err := e.stage2(ctx, page, stage1.Scores)
	if err != nil {
		return Response{}, err
	}

	searchID := uuid.NewString()
	e.persistContext(ctx, searchID, req, stage1.Total)

	metrics.RecordSearch(useVectorPath(req.Query), stage1Duration, time.Since(stage2Start))

	return Response{
		SearchID:      searchID,
		Results:       results,
		Total:         stage1.Total,
		TotalIsCapped: stage1.IsCapped,
		Page:          req.Page,
		PageSize:      req.PageSize,
		HasMore:       req.offset()+len(page) < stage1.Total,
		Query:         req.Query,
		Filters:       req.Filters,
	}, nil
}

// stage1 returns the fused candidate order, from cache when present.
func (e *Engine) stage1(ctx context.Context, req Request) (stage1Result, time.Duration, error) {
	start := time.Now()

	if cached, ok := e.cache.get(ctx, req); ok {
		return cached, time.Since(start), nil
	}

	lexical, err := e.candidates.LexicalCandidates(ctx, req.Query, CandidateLimit)
	if err != nil {
		return stage1Result{}, 0, err
	}

	var vector []string
	if useVectorPath(req.Query) {
		queryVec := e.embedder.Embed(ctx, req.Query)
		if queryVec != nil {
			vector, err = e.candidates.VectorCandidates(ctx, queryVec, CandidateLimit)
			if err != nil {
				return stage1Result{}, 0, err
			}
		}
	}

	ordered, scores := fuse(lexical, vector)
	result := stage1Result{
		NodeIDs:  ordered,
		Scores:   scores,
		Total:    len(ordered),
		IsCapped: len(lexical) == CandidateLimit || len(vector) == CandidateLimit,
	}

	e.cache.put(ctx, req, result)
	return result, time.Since(start), nil
}

func pageSlice(ids []string, offset, pageSize int) []string {
	if offset >= len(ids) {
		return nil
	}
	end := offset + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

const bodyPreviewLength = 280

func (e *Engine) stage2(ctx context.Context, page []string, scores map[string]float64) ([]ResultItem, error) {
	if len(page) == 0 {
		return nil, nil
	}
	enriched, err := e.candidates.EnrichForSearch(ctx, page)
	if err != nil {
		return nil, err
	}

	results := make([]ResultItem, 0, len(page))
	for _, id := range page {
		hit, ok := enriched[id]
		if !ok {
			continue
		}
		results = append(results, ResultItem{
			NodeID:          hit.Issue.NodeID,
			Title:           hit.Issue.Title,
			BodyPreview:     truncate(hit.Issue.BodyText, bodyPreviewLength),
			GithubURL:       hit.Issue.GithubURL,
			Labels:          hit.Issue.Labels,
			QScore:          hit.Issue.QScore,
			RepoName:        hit.RepoName,
			PrimaryLanguage: hit.PrimaryLanguage,
			GithubCreatedAt: hit.Issue.GithubCreatedAt,
			RRFScore:        scores[id],
		})
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}

func (e *Engine) persistContext(ctx context.Context, searchID string, req Request, resultCount int) {
	if err := e.contexts.EnsureConnection(ctx); err != nil {
		e.log.WithFields(logging.NewFields().Component("search").Operation("persist_context").Error(err).Logrus()).
			Warn("search context not persisted, interact will fail")
		return
	}
	record := searchContext{
		Query:       req.Query,
		Filters:     req.Filters,
		ResultCount: resultCount,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	_ = e.contexts.Set(ctx, contextKey(searchID), string(raw), searchContextTTL)
}

func contextKey(searchID string) string {
	return fmt.Sprintf("search_context:%s", searchID)
}

// Interact validates position against the persisted result_count and
// writes a best-effort SearchInteraction row, per spec.md §4.4. A
// database failure is logged and swallowed; an out-of-range position or
// an expired/unknown search_id is surfaced as InvalidInput/NotFound.
func (e *Engine) Interact(ctx context.Context, searchID string, position int, selectedNode string) error {
	if err := e.contexts.EnsureConnection(ctx); err != nil {
		return apperr.DependencyUnavailable("search context store unavailable")
	}
	raw, err := e.contexts.Get(ctx, contextKey(searchID))
	if err != nil || raw == "" {
		return apperr.NotFound(fmt.Sprintf("search %s not found or expired", searchID))
	}

	var record searchContext
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return apperr.NotFound(fmt.Sprintf("search %s not found or expired", searchID))
	}
	pageStart := (record.Page - 1) * record.PageSize
	pageEnd := record.Page * record.PageSize
	if pageEnd > record.ResultCount {
		pageEnd = record.ResultCount
	}
	if position < pageStart || position >= pageEnd {
		return apperr.InvalidInput(fmt.Sprintf("position %d out of range for page %d of %d results", position, record.Page, record.ResultCount))
	}

	interaction := domain.SearchInteraction{
		SearchID:     searchID,
		Query:        record.Query,
		Filters:      filtersToMap(record.Filters),
		ResultCount:  record.ResultCount,
		SelectedNode: selectedNode,
		Position:     position,
	}
	if err := e.analytics.RecordSearchInteraction(ctx, interaction); err != nil {
		e.log.WithFields(logging.NewFields().Component("search").Operation("interact").Error(err).Logrus()).
			Warn("search interaction not recorded")
	}
	return nil
}

func filtersToMap(f Filters) map[string]any {
	return map[string]any{
		"languages": f.Languages,
		"labels":    f.Labels,
		"repos":     f.Repos,
	}
}
