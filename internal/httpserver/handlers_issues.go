package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/issuefeed/backend/pkg/apperr"
)

// similarIssuesLimit bounds the top-K neighbors returned by
// GET /issues/{node_id}/similar.
const similarIssuesLimit = 10

// HandleGetIssue serves GET /issues/{node_id}.
func (h *Handler) HandleGetIssue(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node_id")
	issue, err := h.Issues.GetByNodeID(r.Context(), nodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueDTO(issue))
}

// HandleSimilarIssues serves GET /issues/{node_id}/similar: the top-K open
// issues nearest the target's embedding by cosine distance.
func (h *Handler) HandleSimilarIssues(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node_id")
	target, err := h.Issues.GetByNodeID(r.Context(), nodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(target.Embedding) == 0 {
		writeError(w, apperr.InvalidInput("issue has no embedding yet"))
		return
	}

	candidateIDs, err := h.Issues.VectorCandidates(r.Context(), target.Embedding, similarIssuesLimit+1)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := make([]string, 0, similarIssuesLimit)
	for _, id := range candidateIDs {
		if id == nodeID {
			continue
		}
		ids = append(ids, id)
		if len(ids) == similarIssuesLimit {
			break
		}
	}

	enriched, err := h.Issues.EnrichForSearch(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]similarIssueDTO, 0, len(ids))
	for _, id := range ids {
		e, ok := enriched[id]
		if !ok {
			continue
		}
		similarity := e.Issue.Embedding.Cosine(target.Embedding)
		results = append(results, toSimilarIssueDTO(e, similarity))
	}
	writeJSON(w, http.StatusOK, results)
}
