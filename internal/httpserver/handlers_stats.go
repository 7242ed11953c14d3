package httpserver

import (
	"net/http"
	"time"
)

// statsCacheTTL satisfies spec.md §6's "platform counts (cached >= 1 h)".
const statsCacheTTL = time.Hour

// HandleStats serves GET /stats, caching the underlying count queries for
// statsCacheTTL so the endpoint stays cheap under the "no auth" public
// traffic it's exposed to.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.statsMu.Lock()
	stale := time.Since(h.statsCachedAt) >= statsCacheTTL
	cached := h.statsCache
	h.statsMu.Unlock()

	if !stale {
		writeJSON(w, http.StatusOK, toStatsDTO(cached))
		return
	}

	stats, err := h.Stats.Platform(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	h.statsMu.Lock()
	h.statsCache = stats
	h.statsCachedAt = time.Now()
	h.statsMu.Unlock()

	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}
