package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yusefzzz/connectly-spark-82/internal/feed"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
)

// FeedHandlers holds dependencies for feed HTTP handlers.
type FeedHandlers struct {
	svc *feed.Service
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(svc *feed.Service) *FeedHandlers {
	return &FeedHandlers{svc: svc}
}

// FeedResponse wraps a ranked feed page.
type FeedResponse struct {
	Events []feed.EnrichedEvent `json:"events"`
}

// ForYou handles GET /feed/for-you - the personalized upcoming-events feed.
// Anonymous requests get an empty feed, not an error.
func (h *FeedHandlers) ForYou(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, feed.KindPersonalized)
}

// Explore handles GET /feed/explore - the interest-bridging discovery feed.
func (h *FeedHandlers) Explore(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, feed.KindBridging)
}

func (h *FeedHandlers) serveFeed(w http.ResponseWriter, r *http.Request, kind feed.Kind) {
	viewerID := middleware.GetUserID(r.Context())

	events, err := h.svc.Rank(r.Context(), viewerID, kind)
	if err != nil {
		var dataErr *feed.DataAccessError
		if errors.As(err, &dataErr) {
			slog.ErrorContext(r.Context(), "feed data access failed",
				"error", err, "kind", kind, "op", dataErr.Op)
			fail(w, r, http.StatusInternalServerError, ErrCodeDataAccess, "Failed to load feed")
			return
		}
		slog.ErrorContext(r.Context(), "feed ranking failed", "error", err, "kind", kind)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load feed")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, FeedResponse{Events: events})
}
