package httpserver

import (
	"net/http"

	"github.com/issuefeed/backend/pkg/taxonomy"
)

// HandleTaxonomyLanguages serves GET /taxonomy/languages: the closed
// language whitelist used to validate the profile/filter inputs that
// reference a language.
func (h *Handler) HandleTaxonomyLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, taxonomy.Languages)
}

// HandleTaxonomyStackAreas serves GET /taxonomy/stack-areas.
func (h *Handler) HandleTaxonomyStackAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, taxonomy.StackAreas)
}
