package api

import (
	"net/http"
	"strings"
)

// Handlers aggregates every handler group the router dispatches to.
type Handlers struct {
	Feed          *FeedHandlers
	Events        *EventHandlers
	Engagement    *EngagementHandlers
	Profiles      *ProfileHandlers
	Notifications *NotificationHandlers
	Health        *HealthHandlers
}

// NewRouter builds the ServeMux for the API. Method checks and dynamic path
// segments are handled inside the dispatchers since the routes nest under
// shared prefixes.
func NewRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", requireMethod(http.MethodGet, h.Health.Health))
	mux.HandleFunc("/ready", requireMethod(http.MethodGet, h.Health.Ready))

	mux.HandleFunc("/feed/for-you", requireMethod(http.MethodGet, h.Feed.ForYou))
	mux.HandleFunc("/feed/explore", requireMethod(http.MethodGet, h.Feed.Explore))

	mux.HandleFunc("/events", requireMethod(http.MethodPost, h.Events.CreateEvent))
	mux.HandleFunc("/events/", h.dispatchEvents)

	mux.HandleFunc("/notifications", requireMethod(http.MethodGet, h.Notifications.List))
	mux.HandleFunc("/notifications/", h.dispatchNotifications)

	mux.HandleFunc("/profiles/", h.dispatchProfiles)

	return mux
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// dispatchEvents routes everything under /events/{id}.
func (h *Handlers) dispatchEvents(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		requireMethod(http.MethodGet, h.Events.GetEvent)(w, r)
	case len(parts) == 2 && parts[1] == "like":
		switch r.Method {
		case http.MethodPut:
			h.Engagement.Like(w, r)
		case http.MethodDelete:
			h.Engagement.Unlike(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "attend":
		requireMethod(http.MethodPost, h.Engagement.Attend)(w, r)
	case len(parts) == 4 && parts[1] == "attendees" && parts[3] == "approve":
		requireMethod(http.MethodPost, h.Engagement.Approve)(w, r)
	case len(parts) == 4 && parts[1] == "attendees" && parts[3] == "decline":
		requireMethod(http.MethodPost, h.Engagement.Decline)(w, r)
	default:
		http.NotFound(w, r)
	}
}

// dispatchProfiles routes everything under /profiles/{id}.
func (h *Handlers) dispatchProfiles(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/profiles/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			h.Profiles.GetProfile(w, r)
		case http.MethodPut:
			h.Profiles.UpdateProfile(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "follow":
		switch r.Method {
		case http.MethodPut:
			h.Profiles.Follow(w, r)
		case http.MethodDelete:
			h.Profiles.Unfollow(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "events":
		requireMethod(http.MethodGet, h.Events.ListByCreator)(w, r)
	default:
		http.NotFound(w, r)
	}
}

// dispatchNotifications routes /notifications/{id}/read.
func (h *Handlers) dispatchNotifications(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/notifications/"), "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] == "read" {
		requireMethod(http.MethodPost, h.Notifications.MarkRead)(w, r)
		return
	}
	http.NotFound(w, r)
}
