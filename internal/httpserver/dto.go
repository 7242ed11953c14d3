package httpserver

import (
	"time"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/feed"
	"github.com/issuefeed/backend/pkg/search"
	"github.com/issuefeed/backend/pkg/storage/postgres"
)

// whyThisDTO mirrors feed.WhyThisItem with wire-friendly tags.
type whyThisDTO struct {
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

type feedItemDTO struct {
	NodeID          string       `json:"node_id"`
	Title           string       `json:"title"`
	BodyPreview     string       `json:"body_preview"`
	GithubURL       string       `json:"github_url"`
	Labels          []string     `json:"labels"`
	QScore          float64      `json:"q_score"`
	RepoName        string       `json:"repo_name"`
	PrimaryLanguage string       `json:"primary_language"`
	GithubCreatedAt time.Time    `json:"github_created_at"`
	SimilarityScore *float64     `json:"similarity_score"`
	WhyThis         []whyThisDTO `json:"why_this,omitempty"`
}

func toFeedItemDTO(item feed.Item) feedItemDTO {
	why := make([]whyThisDTO, len(item.WhyThis))
	for i, w := range item.WhyThis {
		why[i] = whyThisDTO{Entity: w.Entity, Score: w.Score}
	}
	return feedItemDTO{
		NodeID:          item.NodeID,
		Title:           item.Title,
		BodyPreview:     item.BodyPreview,
		GithubURL:       item.GithubURL,
		Labels:          item.Labels,
		QScore:          item.QScore,
		RepoName:        item.RepoName,
		PrimaryLanguage: item.PrimaryLanguage,
		GithubCreatedAt: item.GithubCreatedAt,
		SimilarityScore: item.SimilarityScore,
		WhyThis:         why,
	}
}

type feedResponseDTO struct {
	RecommendationBatchID string        `json:"recommendation_batch_id"`
	Results               []feedItemDTO `json:"results"`
	Total                 int           `json:"total"`
	Page                  int           `json:"page"`
	PageSize              int           `json:"page_size"`
	HasMore               bool          `json:"has_more"`
	IsPersonalized        bool          `json:"is_personalized"`
	ProfileCTA            *string       `json:"profile_cta"`
}

func toFeedResponseDTO(batchID string, page feed.Page) feedResponseDTO {
	results := make([]feedItemDTO, len(page.Results))
	for i, item := range page.Results {
		results[i] = toFeedItemDTO(item)
	}
	var cta *string
	if page.ProfileCTA != "" {
		cta = &page.ProfileCTA
	}
	return feedResponseDTO{
		RecommendationBatchID: batchID,
		Results:               results,
		Total:                 page.Total,
		Page:                  page.Page,
		PageSize:              page.PageSize,
		HasMore:               page.HasMore,
		IsPersonalized:        page.IsPersonalized,
		ProfileCTA:            cta,
	}
}

type searchResultDTO struct {
	NodeID          string    `json:"node_id"`
	Title           string    `json:"title"`
	BodyPreview     string    `json:"body_preview"`
	GithubURL       string    `json:"github_url"`
	Labels          []string  `json:"labels"`
	QScore          float64   `json:"q_score"`
	RepoName        string    `json:"repo_name"`
	PrimaryLanguage string    `json:"primary_language"`
	GithubCreatedAt time.Time `json:"github_created_at"`
	RRFScore        float64   `json:"rrf_score"`
}

type searchResponseDTO struct {
	SearchID      string            `json:"search_id"`
	Results       []searchResultDTO `json:"results"`
	Total         int               `json:"total"`
	TotalIsCapped bool              `json:"total_is_capped"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	HasMore       bool              `json:"has_more"`
}

func toSearchResponseDTO(resp search.Response) searchResponseDTO {
	results := make([]searchResultDTO, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = searchResultDTO{
			NodeID:          r.NodeID,
			Title:           r.Title,
			BodyPreview:     r.BodyPreview,
			GithubURL:       r.GithubURL,
			Labels:          r.Labels,
			QScore:          r.QScore,
			RepoName:        r.RepoName,
			PrimaryLanguage: r.PrimaryLanguage,
			GithubCreatedAt: r.GithubCreatedAt,
			RRFScore:        r.RRFScore,
		}
	}
	return searchResponseDTO{
		SearchID:      resp.SearchID,
		Results:       results,
		Total:         resp.Total,
		TotalIsCapped: resp.TotalIsCapped,
		Page:          resp.Page,
		PageSize:      resp.PageSize,
		HasMore:       resp.HasMore,
	}
}

type issueDTO struct {
	NodeID          string    `json:"node_id"`
	Title           string    `json:"title"`
	BodyText        string    `json:"body_text"`
	Labels          []string  `json:"labels"`
	State           string    `json:"state"`
	GithubURL       string    `json:"github_url"`
	GithubCreatedAt time.Time `json:"github_created_at"`
	QScore          float64   `json:"q_score"`
}

func toIssueDTO(issue domain.Issue) issueDTO {
	return issueDTO{
		NodeID:          issue.NodeID,
		Title:           issue.Title,
		BodyText:        issue.BodyText,
		Labels:          issue.Labels,
		State:           string(issue.State),
		GithubURL:       issue.GithubURL,
		GithubCreatedAt: issue.GithubCreatedAt,
		QScore:          issue.QScore,
	}
}

type similarIssueDTO struct {
	NodeID          string  `json:"node_id"`
	Title           string  `json:"title"`
	BodyPreview     string  `json:"body_preview"`
	GithubURL       string  `json:"github_url"`
	RepoName        string  `json:"repo_name"`
	PrimaryLanguage string  `json:"primary_language"`
	SimilarityScore float64 `json:"similarity_score"`
}

func toSimilarIssueDTO(e postgres.EnrichedIssue, similarity float64) similarIssueDTO {
	return similarIssueDTO{
		NodeID:          e.Issue.NodeID,
		Title:           e.Issue.Title,
		BodyPreview:     truncatePreview(e.Issue.BodyText),
		GithubURL:       e.Issue.GithubURL,
		RepoName:        e.RepoName,
		PrimaryLanguage: e.PrimaryLanguage,
		SimilarityScore: similarity,
	}
}

type repositoryDTO struct {
	NodeID            string   `json:"node_id"`
	FullName          string   `json:"full_name"`
	PrimaryLanguage   string   `json:"primary_language"`
	Topics            []string `json:"topics"`
	StargazerCount    int      `json:"stargazer_count"`
	IssueVelocityWeek float64  `json:"issue_velocity_week"`
}

func toRepositoryDTO(repo domain.Repository) repositoryDTO {
	return repositoryDTO{
		NodeID:            repo.NodeID,
		FullName:          repo.FullName,
		PrimaryLanguage:   repo.PrimaryLanguage,
		Topics:            repo.Topics,
		StargazerCount:    repo.StargazerCount,
		IssueVelocityWeek: repo.IssueVelocityWeek,
	}
}

type statsDTO struct {
	OpenIssues        int `json:"open_issues"`
	TotalIssues       int `json:"total_issues"`
	TotalRepositories int `json:"total_repositories"`
}

func toStatsDTO(s domain.PlatformStats) statsDTO {
	return statsDTO{
		OpenIssues:        s.OpenIssues,
		TotalIssues:       s.TotalIssues,
		TotalRepositories: s.TotalRepositories,
	}
}

const similarBodyPreviewLength = 280

func truncatePreview(s string) string {
	if len(s) <= similarBodyPreviewLength {
		return s
	}
	return s[:similarBodyPreviewLength]
}
