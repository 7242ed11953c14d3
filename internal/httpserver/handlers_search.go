package httpserver

import (
	"net/http"

	"github.com/issuefeed/backend/pkg/search"
)

type searchRequestBody struct {
	Query     string   `json:"query" validate:"required"`
	Languages []string `json:"languages"`
	Labels    []string `json:"labels"`
	Repos     []string `json:"repos"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
}

// HandleSearch serves POST /search: auth is optional (mixed), and an
// authenticated caller's user id is folded into the cache key and the
// persisted search interaction so later analytics can attribute clicks.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	userID, _ := userIDFromContext(r.Context())
	req := search.Request{
		Query: body.Query,
		Filters: search.Filters{
			Languages: body.Languages,
			Labels:    body.Labels,
			Repos:     body.Repos,
		},
		Page:     body.Page,
		PageSize: body.PageSize,
		UserID:   userID,
	}

	resp, err := h.Search.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResponseDTO(resp))
}

type searchInteractBody struct {
	SearchID       string `json:"search_id" validate:"required"`
	Position       int    `json:"position" validate:"gte=0"`
	SelectedNodeID string `json:"selected_node_id" validate:"required"`
}

// HandleSearchInteract serves POST /search/interact: logs a click against
// the search context persisted by Search, per spec.md §4.4.
func (h *Handler) HandleSearchInteract(w http.ResponseWriter, r *http.Request) {
	var body searchInteractBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Search.Interact(r.Context(), body.SearchID, body.Position, body.SelectedNodeID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
