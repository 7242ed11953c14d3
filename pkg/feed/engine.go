package feed

import (
	"context"
	"sort"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/scoring"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

// CandidateStore is the narrow surface Engine needs from
// pkg/storage/postgres.IssueRepository.
type CandidateStore interface {
	FeedCandidates(ctx context.Context, preferredLanguages, preferredTopics []string, minHeatThreshold float64) ([]postgres.EnrichedIssue, error)
	TrendingCandidates(ctx context.Context, minQScore float64, languages, labels, repos []string, limit int) ([]postgres.EnrichedIssue, error)
}

// Engine implements spec.md §4.5's personalized feed and trending
// fallback.
type Engine struct {
	store CandidateStore
}

func NewEngine(store CandidateStore) *Engine {
	return &Engine{store: store}
}

// Personalized runs the personalized path: preference-filtered
// candidates ranked by similarity*freshness, with why-this attached.
// combinedVector is the caller-precomputed profile fusion (see
// ComposeCombinedVector); a nil vector means the caller should use
// Trending instead.
func (e *Engine) Personalized(ctx context.Context, profile ProfileSource, combinedVector domain.Vector, preferredLanguages, preferredTopics []string, minHeatThreshold float64, req Request) (Page, error) {
	req = req.normalize()
	now := time.Now()

	candidates, err := e.store.FeedCandidates(ctx, preferredLanguages, preferredTopics, minHeatThreshold)
	if err != nil {
		return Page{}, err
	}

	type ranked struct {
		item  postgres.EnrichedIssue
		score float64
	}
	scored := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Issue.Embedding) == 0 {
			continue
		}
		ageDays := now.Sub(c.Issue.IngestedAt).Hours() / 24
		similarity := c.Issue.Embedding.Cosine(combinedVector)
		decay := scoring.FreshnessDecay(ageDays, freshnessHalfLifeDays, freshnessFloor)
		scored = append(scored, ranked{item: c, score: similarity * decay})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].item.Issue.NodeID < scored[j].item.Issue.NodeID
	})

	if len(scored) > CandidatePoolLimit {
		scored = scored[:CandidatePoolLimit]
	}

	offset := req.offset()
	results := make([]Item, 0, req.PageSize)
	for i := offset; i < len(scored) && i < offset+req.PageSize; i++ {
		entry := scored[i]
		similarityScore := entry.score
		item := toFeedItem(entry.item)
		item.SimilarityScore = &similarityScore
		item.WhyThis = ComputeWhyThis(profile, entry.item.Issue.Title, truncatePreview(entry.item.Issue.BodyText), entry.item.Issue.Labels, entry.item.PrimaryLanguage, entry.item.Topics, DefaultWhyThisTopK)
		results = append(results, item)
	}

	return Page{
		Results:        results,
		Total:          len(scored),
		Page:           req.Page,
		PageSize:       req.PageSize,
		HasMore:        offset+len(results) < len(scored),
		IsPersonalized: true,
	}, nil
}

// Trending runs the trending fallback: state=open, q_score >= 0.6,
// optionally narrowed by languages/labels/repos, ordered by q_score desc
// then github_created_at desc, with no similarity score.
func (e *Engine) Trending(ctx context.Context, filters TrendingFilters, req Request) (Page, error) {
	req = req.normalize()

	candidates, err := e.store.TrendingCandidates(ctx, trendingFloor, filters.Languages, filters.Labels, filters.Repos, CandidatePoolLimit)
	if err != nil {
		return Page{}, err
	}

	offset := req.offset()
	results := make([]Item, 0, req.PageSize)
	for i := offset; i < len(candidates) && i < offset+req.PageSize; i++ {
		results = append(results, toFeedItem(candidates[i]))
	}

	return Page{
		Results:        results,
		Total:          len(candidates),
		Page:           req.Page,
		PageSize:       req.PageSize,
		HasMore:        offset+len(results) < len(candidates),
		IsPersonalized: false,
		ProfileCTA:     profileCTAMessage,
	}, nil
}

func toFeedItem(e postgres.EnrichedIssue) Item {
	return Item{
		NodeID:          e.Issue.NodeID,
		Title:           e.Issue.Title,
		BodyPreview:     truncatePreview(e.Issue.BodyText),
		GithubURL:       e.Issue.GithubURL,
		Labels:          e.Issue.Labels,
		QScore:          e.Issue.QScore,
		RepoName:        e.RepoName,
		PrimaryLanguage: e.PrimaryLanguage,
		GithubCreatedAt: e.Issue.GithubCreatedAt,
	}
}

const bodyPreviewLength = 280

func truncatePreview(s string) string {
	if len(s) <= bodyPreviewLength {
		return s
	}
	return s[:bodyPreviewLength]
}
