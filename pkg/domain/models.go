// Package domain holds the value types shared by every layer of the core:
// storage adapters, the ingestion pipeline, the search and feed engines,
// and the HTTP handlers.
package domain

import "time"

// IssueState is the closed enum described in spec.md §3. Transitions are
// monotonic open -> closed within a single ingestion pass; a reopen arrives
// as a fresh upsert rather than a transition.
type IssueState string

const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

func (s IssueState) Valid() bool {
	return s == StateOpen || s == StateClosed
}

// Repository is keyed by an opaque node_id and a unique full_name.
type Repository struct {
	NodeID            string
	FullName          string
	PrimaryLanguage   string
	Topics            []string
	StargazerCount    int
	IssueVelocityWeek float64
	LastScrapedAt     time.Time
}

// QComponents are the pure Q-score inputs computed by pkg/scoring.
type QComponents struct {
	HasCode            bool
	HasTemplateHeaders bool
	TechStackWeight    float64
}

// Issue is keyed by node_id and references a Repository by RepoID.
type Issue struct {
	NodeID           string
	RepoID           string
	Title            string
	BodyText         string
	Labels           []string
	State            IssueState
	GithubURL        string
	GithubCreatedAt  time.Time
	IngestedAt       time.Time
	QComponents      QComponents
	QScore           float64
	SurvivalScore    float64
	ContentHash      string
	Embedding        Vector
}

// IssueDraft is a harvested-but-not-yet-embedded issue, as produced by
// Gatherer.Harvest and carried across the issue topic. It has Q-components
// and ContentHash already computed (Gather does this on the fly) but no
// embedding, state transition, or survival score yet; those are the
// embedder worker's job.
type IssueDraft struct {
	NodeID          string
	RepoID          string
	Title           string
	BodyText        string
	Labels          []string
	GithubURL       string
	GithubCreatedAt time.Time
	QComponents     QComponents
	QScore          float64
	ContentHash     string
}

// Visible reports whether the issue may be surfaced to users, per spec.md
// §3: "An Issue is visible in user-facing surfaces iff state = 'open' and
// (for similarity queries) embedding is non-null."
func (i Issue) Visible(requireEmbedding bool) bool {
	if i.State != StateOpen {
		return false
	}
	if requireEmbedding && i.Embedding == nil {
		return false
	}
	return true
}

// PendingIssueStatus is the staging-table lifecycle from spec.md §3.
type PendingIssueStatus string

const (
	PendingStatusPending    PendingIssueStatus = "pending"
	PendingStatusProcessing PendingIssueStatus = "processing"
	PendingStatusCompleted  PendingIssueStatus = "completed"
	PendingStatusFailed     PendingIssueStatus = "failed"
)

// PendingIssue is a staging row awaiting embedding.
type PendingIssue struct {
	NodeID      string
	RepoID      string
	Title       string
	BodyText    string
	Labels      []string
	QComponents QComponents
	ContentHash string
	Status      PendingIssueStatus
	Attempts    int
}

// OnboardingStatus tracks how much of a UserProfile has been completed.
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "not_started"
	OnboardingInProgress OnboardingStatus = "in_progress"
	OnboardingComplete   OnboardingStatus = "complete"
)

// UserProfile is the per-user record described in spec.md §3.
type UserProfile struct {
	UserID string

	IntentVector  Vector
	ResumeVector  Vector
	GithubVector  Vector
	CombinedVector Vector

	IntentText         string
	IntentStackAreas   []string
	IntentLanguages    []string
	ResumeSkills       []string
	ResumeJobTitles    []string
	GithubLanguages    []string
	GithubTopics       []string
	GithubUsername     string

	PreferredLanguages []string
	PreferredTopics    []string
	MinHeatThreshold   float64

	OnboardingStatus OnboardingStatus
	IsCalculating    bool
}

// Default values for a lazily-created profile (spec.md §3 "lazily created
// on first access with defaults").
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		MinHeatThreshold: 0.6,
		OnboardingStatus: OnboardingNotStarted,
	}
}

// SearchInteraction is an analytics row capturing a search click, per
// spec.md §3.
type SearchInteraction struct {
	SearchID     string
	Query        string
	Filters      map[string]any
	ResultCount  int
	SelectedNode string
	Position     int
	CreatedAt    time.Time
}

// RecommendationSurface is the closed set of surfaces an event can
// originate from (spec.md §3).
type RecommendationSurface string

const (
	SurfaceFeed   RecommendationSurface = "feed"
	SurfaceSearch RecommendationSurface = "search"
	SurfaceEmail  RecommendationSurface = "email"
)

// RecommendationEventType is impression or click.
type RecommendationEventType string

const (
	EventImpression RecommendationEventType = "impression"
	EventClick      RecommendationEventType = "click"
)

// PlatformStats is the public /stats summary, cached at the HTTP boundary
// for at least an hour per spec.md §6.
type PlatformStats struct {
	OpenIssues       int
	TotalIssues      int
	TotalRepositories int
}

// RecommendationEvent is a row bound for the analytics table, per spec.md §3.
type RecommendationEvent struct {
	EventID              string
	RecommendationBatchID string
	UserID               string
	IssueNodeID          string
	Position             int
	Surface              RecommendationSurface
	EventType            RecommendationEventType
	IsPersonalized       bool
	Metadata             map[string]any
	CreatedAt            time.Time
}
