package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/notification"
)

// NotificationHandlers holds dependencies for notification HTTP handlers.
type NotificationHandlers struct {
	notifications notification.Repository
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(notifications notification.Repository) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications}
}

// NotificationsResponse wraps the caller's notification list.
type NotificationsResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
}

// List handles GET /notifications - lists the caller's notifications,
// newest first.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	notifications, err := h.notifications.ListByUser(userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list notifications", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	writeJSON(w, r.Context(), http.StatusOK, NotificationsResponse{Notifications: notifications})
}

// MarkRead handles POST /notifications/{id}/read. Only the owner can mark
// a notification read; anything else reads as not found.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	notificationID := pathSegment(r.URL.Path, "/notifications/", "/read")
	if notificationID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Notification ID is required")
		return
	}

	if err := h.notifications.MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Notification not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to mark notification read", "error", err, "notification_id", notificationID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
