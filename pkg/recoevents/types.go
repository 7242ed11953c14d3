// Package recoevents implements spec.md §4.6's recommendation event
// pipeline: short-TTL batch context, client-submitted event acceptance
// with position verification and dedup, and the periodic flush job that
// drains the queue into the analytics warehouse.
package recoevents

import (
	"time"

	"github.com/issuefeed/backend/pkg/domain"
)

// dedupTTL bounds how long an accepted event_id blocks a redelivery of
// the same id.
const dedupTTL = 24 * time.Hour

// batchContextTTL is the short TTL spec.md §4.6 names for the served
// batch context.
const batchContextTTL = 15 * time.Minute

// queueKey is the single queue every accepted event is RPUSHed onto.
const queueKey = "reco:events:queue"

func batchContextKey(batchID string) string {
	return "reco:batch:" + batchID
}

func eventDedupKey(eventID string) string {
	return "reco:event:" + eventID
}

// BatchContext is the short-TTL record spec.md §4.6 stores on every feed
// response, keyed by RecommendationBatchID.
type BatchContext struct {
	RecommendationBatchID string    `json:"recommendation_batch_id"`
	IssueNodeIDs          []string  `json:"issue_node_ids"`
	Page                  int       `json:"page"`
	PageSize              int       `json:"page_size"`
	IsPersonalized        bool      `json:"is_personalized"`
	ServedAt              time.Time `json:"served_at"`
}

// EventSubmission is a single client-reported event from
// POST /recommendations/events.
type EventSubmission struct {
	EventID     string
	EventType   domain.RecommendationEventType
	IssueNodeID string
	Position    int
	Surface     domain.RecommendationSurface
	Metadata    map[string]any
}

// SubmitResult is the response to a batch of event submissions, per
// spec.md §4.6 step 5.
type SubmitResult struct {
	Queued  int
	Deduped int
}

// FlushResult is the periodic flush job's summary, per spec.md §4.6.
type FlushResult struct {
	Loops    int
	Popped   int
	Inserted int
}
