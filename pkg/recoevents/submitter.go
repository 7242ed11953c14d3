package recoevents

import (
	"context"
	"encoding/json"

	"github.com/issuefeed/backend/pkg/metrics"
)

// queuedEvent is the JSON shape RPUSHed onto queueKey; CreatedAt is
// stamped by the flush job's insert, not here.
type queuedEvent struct {
	EventID               string         `json:"event_id"`
	RecommendationBatchID string         `json:"recommendation_batch_id"`
	IssueNodeID           string         `json:"issue_node_id"`
	Position              int            `json:"position"`
	Surface               string         `json:"surface"`
	EventType             string         `json:"event_type"`
	IsPersonalized        bool           `json:"is_personalized"`
	Metadata              map[string]any `json:"metadata"`
}

// Submitter accepts client-reported events, per spec.md §4.6 steps 1-5.
type Submitter struct {
	store Store
}

func NewSubmitter(store Store) *Submitter {
	return &Submitter{store: store}
}

// Submit validates each event's position against the batch context's
// served order, dedups on event_id via SETNX, and RPUSHes accepted
// events onto the flush queue. A missing/expired batch context or a
// position/node_id mismatch are handled per spec.md §4.6: the former is
// surfaced (apperr.NotFound), the latter is dropped silently with a
// counter increment.
func (s *Submitter) Submit(ctx context.Context, batchID string, events []EventSubmission) (SubmitResult, error) {
	bc, err := loadBatchContext(ctx, s.store, batchID)
	if err != nil {
		return SubmitResult{}, err
	}

	var result SubmitResult
	for _, ev := range events {
		if !positionMatches(bc.IssueNodeIDs, ev.Position, ev.IssueNodeID) {
			metrics.RecoEventsDroppedMismatchTotal.Inc()
			continue
		}

		accepted, err := s.store.SetNX(ctx, eventDedupKey(ev.EventID), dedupTTL)
		if err != nil {
			return result, err
		}
		if !accepted {
			result.Deduped++
			metrics.RecoEventsDedupedTotal.Inc()
			continue
		}

		payload := queuedEvent{
			EventID:               ev.EventID,
			RecommendationBatchID: batchID,
			IssueNodeID:           ev.IssueNodeID,
			Position:              ev.Position,
			Surface:               string(ev.Surface),
			EventType:             string(ev.EventType),
			IsPersonalized:        bc.IsPersonalized,
			Metadata:              ev.Metadata,
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return result, err
		}
		if err := s.store.RPush(ctx, queueKey, string(raw)); err != nil {
			return result, err
		}
		result.Queued++
		metrics.RecoEventsQueuedTotal.Inc()
	}
	return result, nil
}

// positionMatches implements spec.md §4.6 step 2's "issue_node_ids[position]
// == issue_node_id" check. The served positions the client echoes back are
// 1-based (position 1 is the first result shown), so the lookup is
// issueNodeIDs[position-1].
func positionMatches(issueNodeIDs []string, position int, issueNodeID string) bool {
	idx := position - 1
	if idx < 0 || idx >= len(issueNodeIDs) {
		return false
	}
	return issueNodeIDs[idx] == issueNodeID
}
