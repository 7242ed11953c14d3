package ingestion

import (
	"encoding/json"
	"time"

	"github.com/issuefeed/backend/pkg/domain"
)

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// draftWire is the issue topic's wire shape: content_hash is carried both
// as the broker.Message attribute (at-broker dedup) and here as a payload
// field (at-consumer idempotency), per spec.md §4.3.
type draftWire struct {
	NodeID          string             `json:"node_id"`
	RepoID          string             `json:"repo_id"`
	Title           string             `json:"title"`
	BodyText        string             `json:"body_text"`
	Labels          []string           `json:"labels"`
	GithubURL       string             `json:"github_url"`
	GithubCreatedAt int64              `json:"github_created_at"`
	HasCode         bool               `json:"has_code"`
	HasTemplate     bool               `json:"has_template_headers"`
	TechStackWeight float64            `json:"tech_stack_weight"`
	QScore          float64            `json:"q_score"`
	ContentHash     string             `json:"content_hash"`
}

// EncodeDraft serializes an IssueDraft for publication to the issue topic.
func EncodeDraft(draft domain.IssueDraft) ([]byte, error) {
	return json.Marshal(draftWire{
		NodeID:          draft.NodeID,
		RepoID:          draft.RepoID,
		Title:           draft.Title,
		BodyText:        draft.BodyText,
		Labels:          draft.Labels,
		GithubURL:       draft.GithubURL,
		GithubCreatedAt: draft.GithubCreatedAt.Unix(),
		HasCode:         draft.QComponents.HasCode,
		HasTemplate:     draft.QComponents.HasTemplateHeaders,
		TechStackWeight: draft.QComponents.TechStackWeight,
		QScore:          draft.QScore,
		ContentHash:     draft.ContentHash,
	})
}

// DecodeDraft is EncodeDraft's inverse, used by the embedder worker to
// recover an IssueDraft from a delivered message payload.
func DecodeDraft(payload []byte) (domain.IssueDraft, error) {
	var wire draftWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return domain.IssueDraft{}, err
	}
	return domain.IssueDraft{
		NodeID:    wire.NodeID,
		RepoID:    wire.RepoID,
		Title:     wire.Title,
		BodyText:  wire.BodyText,
		Labels:    wire.Labels,
		GithubURL: wire.GithubURL,
		GithubCreatedAt: timeFromUnix(wire.GithubCreatedAt),
		QComponents: domain.QComponents{
			HasCode:            wire.HasCode,
			HasTemplateHeaders: wire.HasTemplate,
			TechStackWeight:    wire.TechStackWeight,
		},
		QScore:      wire.QScore,
		ContentHash: wire.ContentHash,
	}, nil
}
