package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/notification"
)

// EngagementHandlers holds dependencies for like and attendance HTTP handlers.
type EngagementHandlers struct {
	events        event.Repository
	likes         event.LikeRepository
	attendance    event.AttendanceRepository
	notifications notification.Repository
}

// NewEngagementHandlers creates a new EngagementHandlers instance.
func NewEngagementHandlers(events event.Repository, likes event.LikeRepository, attendance event.AttendanceRepository, notifications notification.Repository) *EngagementHandlers {
	return &EngagementHandlers{
		events:        events,
		likes:         likes,
		attendance:    attendance,
		notifications: notifications,
	}
}

// loadEvent resolves the event for an engagement action and applies the
// visibility rule. Writes the error response and returns nil on failure.
func (h *EngagementHandlers) loadEvent(w http.ResponseWriter, r *http.Request, eventID, viewerID string) *event.Event {
	e, err := h.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return nil
		}
		slog.ErrorContext(r.Context(), "failed to get event", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve event")
		return nil
	}

	if !e.VisibleTo(viewerID) {
		rec, err := h.attendance.Get(eventID, viewerID)
		if err != nil || rec == nil {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return nil
		}
	}
	return e
}

// Like handles PUT /events/{id}/like. Liking an already-liked event is a no-op.
func (h *EngagementHandlers) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	eventID := pathSegment(r.URL.Path, "/events/", "/like")
	if eventID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID is required")
		return
	}

	e := h.loadEvent(w, r, eventID, userID)
	if e == nil {
		return
	}

	already, err := h.likes.Exists(eventID, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to check like", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to like event")
		return
	}

	if err := h.likes.Like(eventID, userID); err != nil {
		slog.ErrorContext(r.Context(), "failed to like event", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to like event")
		return
	}

	// Notify the creator on the first like only, and never for self-likes.
	if !already && e.CreatorID != userID {
		n := &notification.Notification{
			UserID:  e.CreatorID,
			Message: "Someone liked your event \"" + e.Title + "\"",
		}
		if err := h.notifications.Create(n); err != nil {
			slog.ErrorContext(r.Context(), "failed to create like notification", "error", err, "event_id", eventID)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unlike handles DELETE /events/{id}/like. Unliking a never-liked event is a no-op.
func (h *EngagementHandlers) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	eventID := pathSegment(r.URL.Path, "/events/", "/like")
	if eventID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID is required")
		return
	}

	if h.loadEvent(w, r, eventID, userID) == nil {
		return
	}

	if err := h.likes.Unlike(eventID, userID); err != nil {
		slog.ErrorContext(r.Context(), "failed to unlike event", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to unlike event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Attend handles POST /events/{id}/attend - requests attendance.
// Re-requesting keeps the existing record's status.
func (h *EngagementHandlers) Attend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	eventID := pathSegment(r.URL.Path, "/events/", "/attend")
	if eventID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID is required")
		return
	}

	e := h.loadEvent(w, r, eventID, userID)
	if e == nil {
		return
	}

	if e.CreatorID == userID {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Creators cannot attend their own event")
		return
	}

	if err := h.attendance.Request(eventID, userID); err != nil {
		slog.ErrorContext(r.Context(), "failed to request attendance", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to request attendance")
		return
	}

	rec, err := h.attendance.Get(eventID, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get attendance", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to request attendance")
		return
	}

	writeJSON(w, r.Context(), http.StatusAccepted, rec)
}

// Approve handles POST /events/{id}/attendees/{user_id}/approve. Creator only.
func (h *EngagementHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, event.AttendanceApproved, "approve")
}

// Decline handles POST /events/{id}/attendees/{user_id}/decline. Creator only.
func (h *EngagementHandlers) Decline(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, event.AttendanceDeclined, "decline")
}

func (h *EngagementHandlers) review(w http.ResponseWriter, r *http.Request, status event.AttendanceStatus, action string) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	eventID, attendeeID := attendeePathIDs(r.URL.Path, action)
	if eventID == "" || attendeeID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID and attendee ID are required")
		return
	}

	e, err := h.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get event", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve event")
		return
	}

	if e.CreatorID != userID {
		fail(w, r, http.StatusForbidden, ErrCodeForbidden, "Only the event creator can review attendance")
		return
	}

	if err := h.attendance.SetStatus(eventID, attendeeID, status); err != nil {
		if errors.Is(err, event.ErrAttendanceNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Attendance request not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update attendance", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update attendance")
		return
	}

	if status == event.AttendanceApproved {
		n := &notification.Notification{
			UserID:  attendeeID,
			Message: "Your request to attend \"" + e.Title + "\" was approved",
		}
		if err := h.notifications.Create(n); err != nil {
			slog.ErrorContext(r.Context(), "failed to create approval notification", "error", err, "event_id", eventID)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// attendeePathIDs parses /events/{id}/attendees/{user_id}/{action} paths.
func attendeePathIDs(path, action string) (eventID, attendeeID string) {
	parts := strings.Split(strings.TrimPrefix(path, "/events/"), "/")
	if len(parts) != 4 || parts[1] != "attendees" || parts[3] != action {
		return "", ""
	}
	return parts[0], parts[2]
}
