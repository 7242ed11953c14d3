package httpserver

import "net/http"

const defaultRepositoryLimit = 20

// HandleRepositories serves GET /repositories: a substring search against
// full_name, per spec.md §6 ("Repository search").
func (h *Handler) HandleRepositories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", defaultRepositoryLimit)

	repos, err := h.Repositories.SearchByFullName(r.Context(), query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]repositoryDTO, len(repos))
	for i, repo := range repos {
		dtos[i] = toRepositoryDTO(repo)
	}
	writeJSON(w, http.StatusOK, dtos)
}
