package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/validate"
)

// CreateEventRequest represents the request body for creating an event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	EventType   string    `json:"event_type"`
	Visibility  string    `json:"visibility"`
	Location    *string   `json:"location,omitempty"`
	OnlineLink  *string   `json:"online_link,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	EventDate   time.Time `json:"event_date"`
}

// EventResponse is an event plus the viewer-dependent engagement fields.
type EventResponse struct {
	*event.Event
	Liked         bool `json:"liked"`
	LikeCount     int  `json:"like_count"`
	AttendeeCount int  `json:"approved_attendee_count"`
}

// EventHandlers holds dependencies for event HTTP handlers.
type EventHandlers struct {
	events     event.Repository
	likes      event.LikeRepository
	attendance event.AttendanceRepository
}

// NewEventHandlers creates a new EventHandlers instance.
func NewEventHandlers(events event.Repository, likes event.LikeRepository, attendance event.AttendanceRepository) *EventHandlers {
	return &EventHandlers{
		events:     events,
		likes:      likes,
		attendance: attendance,
	}
}

// CreateEvent handles POST /events - creates a new event.
func (h *EventHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	e, errMsg := h.buildEvent(userID, &req)
	if errMsg != "" {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, errMsg)
		return
	}

	if err := h.events.Create(e); err != nil {
		slog.ErrorContext(r.Context(), "failed to create event", "error", err)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create event")
		return
	}

	writeJSON(w, r.Context(), http.StatusCreated, e)
}

// buildEvent validates the request and assembles the event to store.
// Returns a non-empty message on validation failure.
func (h *EventHandlers) buildEvent(userID string, req *CreateEventRequest) (*event.Event, string) {
	title, err := validate.EventTitle(req.Title)
	if err != nil {
		return nil, "title must be 1-200 characters"
	}

	description, err := validate.Description(req.Description)
	if err != nil {
		return nil, "description exceeds the maximum length"
	}

	eventType := event.Type(req.EventType)
	if eventType != event.TypeInPerson && eventType != event.TypeOnline {
		return nil, "event_type must be 'in-person' or 'online'"
	}

	visibility := event.Visibility(req.Visibility)
	if visibility == "" {
		visibility = event.VisibilityPublic
	}
	if visibility != event.VisibilityPublic && visibility != event.VisibilityPrivate {
		return nil, "visibility must be 'public' or 'private'"
	}

	if req.EventDate.IsZero() {
		return nil, "event_date is required"
	}
	if req.EventDate.Before(time.Now()) {
		return nil, "event_date must be in the future"
	}

	tags, err := validate.Tags(req.Tags)
	if err != nil {
		return nil, "invalid tags: " + err.Error()
	}

	e := &event.Event{
		CreatorID:   userID,
		Title:       title,
		Description: description,
		EventType:   eventType,
		Visibility:  visibility,
		Tags:        tags,
		EventDate:   req.EventDate,
	}

	if req.Location != nil {
		loc, err := validate.Location(*req.Location)
		if err != nil {
			return nil, "location exceeds the maximum length"
		}
		if loc != "" {
			e.Location = &loc
		}
	}
	if req.OnlineLink != nil && *req.OnlineLink != "" {
		link, err := validate.URL(*req.OnlineLink, validate.PublicWebURLConstraints)
		if err != nil {
			return nil, "online_link is not a valid public URL"
		}
		e.OnlineLink = &link
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		img, err := validate.URL(*req.ImageURL, validate.PublicWebURLConstraints)
		if err != nil {
			return nil, "image_url is not a valid public URL"
		}
		e.ImageURL = &img
	}

	return e, ""
}

// GetEvent handles GET /events/{id} - retrieves one event with engagement counts.
func (h *EventHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimPrefix(r.URL.Path, "/events/")
	if eventID == "" || strings.Contains(eventID, "/") {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Event ID is required")
		return
	}

	viewerID := middleware.GetUserID(r.Context())

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

	if !h.canView(e, viewerID) {
		// Private events are indistinguishable from missing ones.
		fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
		return
	}

	resp, err := h.enrich(e, viewerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load engagement", "error", err, "event_id", eventID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve event")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, resp)
}

// ListByCreator handles GET /profiles/{id}/events - lists a creator's events.
// Private events are included only for their creator.
func (h *EventHandlers) ListByCreator(w http.ResponseWriter, r *http.Request) {
	creatorID := pathSegment(r.URL.Path, "/profiles/", "/events")
	if creatorID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Profile ID is required")
		return
	}

	viewerID := middleware.GetUserID(r.Context())

	events, err := h.events.ListByCreator(creatorID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list events", "error", err, "creator_id", creatorID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list events")
		return
	}

	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		if !h.canView(e, viewerID) {
			continue
		}
		resp, err := h.enrich(e, viewerID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to load engagement", "error", err, "event_id", e.ID)
			fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list events")
			return
		}
		responses = append(responses, resp)
	}

	writeJSON(w, r.Context(), http.StatusOK, responses)
}

// canView applies the event visibility rule, falling back to an attendance
// record check for private events.
func (h *EventHandlers) canView(e *event.Event, viewerID string) bool {
	if e.VisibleTo(viewerID) {
		return true
	}
	if viewerID == "" {
		return false
	}
	rec, err := h.attendance.Get(e.ID, viewerID)
	return err == nil && rec != nil
}

// enrich attaches the viewer-dependent engagement fields to an event.
func (h *EventHandlers) enrich(e *event.Event, viewerID string) (EventResponse, error) {
	likes, err := h.likes.ByEvent(e.ID)
	if err != nil {
		return EventResponse{}, err
	}

	liked := false
	if viewerID != "" {
		liked, err = h.likes.Exists(e.ID, viewerID)
		if err != nil {
			return EventResponse{}, err
		}
	}

	attendance, err := h.attendance.ByEvent(e.ID)
	if err != nil {
		return EventResponse{}, err
	}
	approved := 0
	for _, a := range attendance {
		if a.Status == event.AttendanceApproved {
			approved++
		}
	}

	return EventResponse{
		Event:         e,
		Liked:         liked,
		LikeCount:     len(likes),
		AttendeeCount: approved,
	}, nil
}

// pathSegment extracts the single dynamic segment between prefix and suffix,
// e.g. pathSegment("/profiles/u1/events", "/profiles/", "/events") == "u1".
// Returns empty string when the path does not match the shape.
func pathSegment(path, prefix, suffix string) string {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	segment := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if segment == "" || strings.Contains(segment, "/") {
		return ""
	}
	return segment
}
