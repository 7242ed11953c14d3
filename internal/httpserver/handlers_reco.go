package httpserver

import (
	"net/http"

	"github.com/issuefeed/backend/pkg/domain"
	"github.com/issuefeed/backend/pkg/recoevents"
)

type recoEventBody struct {
	EventID     string         `json:"event_id" validate:"required"`
	EventType   string         `json:"event_type" validate:"required,oneof=impression click"`
	IssueNodeID string         `json:"issue_node_id" validate:"required"`
	Position    int            `json:"position" validate:"required"`
	Surface     string         `json:"surface" validate:"required,oneof=feed search email"`
	Metadata    map[string]any `json:"metadata"`
}

type recoEventsRequestBody struct {
	RecommendationBatchID string          `json:"recommendation_batch_id" validate:"required"`
	Events                []recoEventBody `json:"events" validate:"required,min=1,dive"`
}

type recoEventsResponseDTO struct {
	Queued  int `json:"queued"`
	Deduped int `json:"deduped"`
}

// HandleRecommendationEvents serves POST /recommendations/events: the
// client echoes the batch id a feed/search response carried, plus the
// impressions/clicks to record, per spec.md §4.6.
func (h *Handler) HandleRecommendationEvents(w http.ResponseWriter, r *http.Request) {
	var body recoEventsRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	events := make([]recoevents.EventSubmission, len(body.Events))
	for i, e := range body.Events {
		events[i] = recoevents.EventSubmission{
			EventID:     e.EventID,
			EventType:   domain.RecommendationEventType(e.EventType),
			IssueNodeID: e.IssueNodeID,
			Position:    e.Position,
			Surface:     domain.RecommendationSurface(e.Surface),
			Metadata:    e.Metadata,
		}
	}

	result, err := h.Reco.Submit(r.Context(), body.RecommendationBatchID, events)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recoEventsResponseDTO{Queued: result.Queued, Deduped: result.Deduped})
}
