package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
)

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)

	eventDate := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	rec := env.do(t, http.MethodPost, "/events", "creator-1", map[string]any{
		"title":      "  Basement Show  ",
		"event_type": "in-person",
		"visibility": "public",
		"tags":       []string{"Punk", "diy", "punk"},
		"event_date": eventDate,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created event.Event
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Error("created event has no ID")
	}
	if created.Title != "Basement Show" {
		t.Errorf("title = %q, want trimmed %q", created.Title, "Basement Show")
	}
	if created.CreatorID != "creator-1" {
		t.Errorf("creator_id = %q, want creator-1", created.CreatorID)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "punk" || created.Tags[1] != "diy" {
		t.Errorf("tags = %v, want deduplicated lowercase [punk diy]", created.Tags)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newTestEnv(t)
	eventDate := time.Now().Add(72 * time.Hour)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty title", map[string]any{"title": "", "event_type": "online", "event_date": eventDate}},
		{"bad event type", map[string]any{"title": "x", "event_type": "hybrid", "event_date": eventDate}},
		{"bad visibility", map[string]any{"title": "x", "event_type": "online", "visibility": "unlisted", "event_date": eventDate}},
		{"missing event date", map[string]any{"title": "x", "event_type": "online"}},
		{"past event date", map[string]any{"title": "x", "event_type": "online", "event_date": time.Now().Add(-time.Hour)}},
		{"ssrf online link", map[string]any{"title": "x", "event_type": "online", "event_date": eventDate, "online_link": "http://169.254.169.254/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/events", "creator-1", tt.body)
			assertErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
		})
	}
}

func TestCreateEvent_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/events", "", map[string]any{"title": "x"})
	assertErrorCode(t, rec, http.StatusUnauthorized, ErrCodeAuthFailed)
}

func TestGetEvent_PublicWithEngagement(t *testing.T) {
	env := newTestEnv(t)
	e := env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic, "punk")

	for _, userID := range []string{"viewer-1", "viewer-2"} {
		if err := env.likes.Like(e.ID, userID); err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}
	if err := env.attendance.Request(e.ID, "viewer-1"); err != nil {
		t.Fatalf("seed attendance: %v", err)
	}
	if err := env.attendance.SetStatus(e.ID, "viewer-1", event.AttendanceApproved); err != nil {
		t.Fatalf("approve attendance: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/events/e1", "viewer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp EventResponse
	decodeBody(t, rec, &resp)
	if !resp.Liked {
		t.Error("liked = false, want true for a viewer who liked the event")
	}
	if resp.LikeCount != 2 {
		t.Errorf("like_count = %d, want 2", resp.LikeCount)
	}
	if resp.AttendeeCount != 1 {
		t.Errorf("approved_attendee_count = %d, want 1", resp.AttendeeCount)
	}
}

func TestGetEvent_PrivateVisibility(t *testing.T) {
	env := newTestEnv(t)
	e := env.seedEvent(t, "e-private", "creator-1", event.VisibilityPrivate)
	if err := env.attendance.Request(e.ID, "invited-1"); err != nil {
		t.Fatalf("seed attendance: %v", err)
	}

	tests := []struct {
		name       string
		viewerID   string
		wantStatus int
	}{
		{"creator sees own private event", "creator-1", http.StatusOK},
		{"invited user sees private event", "invited-1", http.StatusOK},
		{"stranger gets not found", "stranger-1", http.StatusNotFound},
		{"anonymous gets not found", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/events/e-private", tt.viewerID, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/events/missing", "viewer-1", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestListByCreator_FiltersPrivateForStrangers(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e-pub", "creator-1", event.VisibilityPublic)
	env.seedEvent(t, "e-priv", "creator-1", event.VisibilityPrivate)

	rec := env.do(t, http.MethodGet, "/profiles/creator-1/events", "stranger-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var forStranger []EventResponse
	decodeBody(t, rec, &forStranger)
	if len(forStranger) != 1 || forStranger[0].ID != "e-pub" {
		t.Errorf("stranger sees %d events, want only e-pub", len(forStranger))
	}

	rec = env.do(t, http.MethodGet, "/profiles/creator-1/events", "creator-1", nil)
	var forCreator []EventResponse
	decodeBody(t, rec, &forCreator)
	if len(forCreator) != 2 {
		t.Errorf("creator sees %d events, want 2", len(forCreator))
	}
}
