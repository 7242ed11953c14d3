package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/issuefeed/backend/pkg/feed"
	"github.com/issuefeed/backend/pkg/metrics"
)

// HandleFeed serves GET /feed: the personalized feed for an authenticated
// user, or the trending fallback when the profile has no combined_vector
// yet (spec.md §4.5 "Feed fallback").
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	req := feed.Request{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", feed.DefaultPageSize),
	}

	profile, err := h.Profiles.GetOrCreate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var page feed.Page
	if len(profile.CombinedVector) == 0 {
		page, err = h.Feed.Trending(r.Context(), feed.TrendingFilters{}, req)
	} else {
		adapter := feed.UserProfileAdapter{Profile: profile}
		page, err = h.Feed.Personalized(r.Context(), adapter, profile.CombinedVector,
			profile.PreferredLanguages, profile.PreferredTopics, profile.MinHeatThreshold, req)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.RecordFeed(page.IsPersonalized)

	batchID := uuid.NewString()
	nodeIDs := make([]string, len(page.Results))
	for i, item := range page.Results {
		nodeIDs[i] = item.NodeID
	}
	h.storeRecoBatch(r.Context(), batchID, nodeIDs, page.Page, page.PageSize, page.IsPersonalized)

	writeJSON(w, http.StatusOK, toFeedResponseDTO(batchID, page))
}

// HandleTrendingFeed serves GET /feed/trending: the public, unauthenticated
// landing page, always the trending path regardless of any session.
func (h *Handler) HandleTrendingFeed(w http.ResponseWriter, r *http.Request) {
	req := feed.Request{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", feed.DefaultPageSize),
	}
	filters := feed.TrendingFilters{
		Languages: queryList(r, "languages"),
		Labels:    queryList(r, "labels"),
		Repos:     queryList(r, "repos"),
	}

	page, err := h.Feed.Trending(r.Context(), filters, req)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.RecordFeed(false)

	batchID := uuid.NewString()
	nodeIDs := make([]string, len(page.Results))
	for i, item := range page.Results {
		nodeIDs[i] = item.NodeID
	}
	h.storeRecoBatch(r.Context(), batchID, nodeIDs, page.Page, page.PageSize, false)

	writeJSON(w, http.StatusOK, toFeedResponseDTO(batchID, page))
}
