package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/feed"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
)

func TestForYou_RanksFollowedCreatorsFirst(t *testing.T) {
	env := newTestEnv(t)

	followed := env.seedEvent(t, "e-followed", "creator-1", event.VisibilityPublic)
	env.seedEvent(t, "e-other", "creator-2", event.VisibilityPublic)
	if err := env.follows.Follow("viewer-1", "creator-1"); err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/feed/for-you", "viewer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp FeedResponse
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(resp.Events))
	}
	if resp.Events[0].ID != followed.ID {
		t.Errorf("top event = %s, want followed creator's %s", resp.Events[0].ID, followed.ID)
	}
}

func TestForYou_AnonymousGetsEmptyList(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodGet, "/feed/for-you", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var raw map[string]any
	decodeBody(t, rec, &raw)
	events, ok := raw["events"].([]any)
	if !ok {
		t.Fatalf("events is %T, want array", raw["events"])
	}
	if len(events) != 0 {
		t.Errorf("got %d events for anonymous viewer, want 0", len(events))
	}
}

func TestExplore_PenalizesLikedEvents(t *testing.T) {
	env := newTestEnv(t)

	liked := env.seedEvent(t, "e-liked", "creator-1", event.VisibilityPublic, "punk")
	env.seedEvent(t, "e-fresh", "creator-2", event.VisibilityPublic, "jazz")
	if err := env.likes.Like(liked.ID, "viewer-1"); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/feed/explore", "viewer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp FeedResponse
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("got %d events, want 2 (liked events are penalized, not removed)", len(resp.Events))
	}
	if resp.Events[len(resp.Events)-1].ID != liked.ID {
		t.Errorf("liked event is not last: order %s then %s", resp.Events[0].ID, resp.Events[1].ID)
	}
}

// failingGateway simulates a storage outage for one fetch.
type failingGateway struct{}

func (failingGateway) Candidates(context.Context, feed.Kind, string, time.Time) ([]feed.Candidate, error) {
	return nil, errors.New("connection refused")
}

func (failingGateway) LikesByUser(context.Context, string) ([]event.Like, error) {
	return nil, nil
}

func (failingGateway) EventTags(context.Context, []string) ([]feed.TaggedEvent, error) {
	return nil, nil
}

func (failingGateway) Follows(context.Context, string) ([]string, error) {
	return nil, nil
}

func TestFeed_DataAccessFailure(t *testing.T) {
	h := NewFeedHandlers(feed.NewService(failingGateway{}))

	req := httptest.NewRequest(http.MethodGet, "/feed/for-you", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "viewer-1"))
	rec := httptest.NewRecorder()
	h.ForYou(rec, req)

	assertErrorCode(t, rec, http.StatusInternalServerError, ErrCodeDataAccess)
}
