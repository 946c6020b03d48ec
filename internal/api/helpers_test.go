package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/feed"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/notification"
	"github.com/yusefzzz/connectly-spark-82/internal/profile"
)

type testEnv struct {
	events        *event.InMemoryRepository
	likes         *event.InMemoryLikeRepository
	attendance    *event.InMemoryAttendanceRepository
	profiles      *profile.InMemoryRepository
	follows       *profile.InMemoryFollowRepository
	notifications *notification.InMemoryRepository
	router        *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		events:        event.NewInMemoryRepository(),
		likes:         event.NewInMemoryLikeRepository(),
		attendance:    event.NewInMemoryAttendanceRepository(),
		profiles:      profile.NewInMemoryRepository(),
		follows:       profile.NewInMemoryFollowRepository(),
		notifications: notification.NewInMemoryRepository(),
	}

	gw := feed.NewRepositoryGateway(env.events, env.likes, env.attendance, env.follows)
	svc := feed.NewService(gw)

	env.router = NewRouter(&Handlers{
		Feed:          NewFeedHandlers(svc),
		Events:        NewEventHandlers(env.events, env.likes, env.attendance),
		Engagement:    NewEngagementHandlers(env.events, env.likes, env.attendance, env.notifications),
		Profiles:      NewProfileHandlers(env.profiles, env.follows),
		Notifications: NewNotificationHandlers(env.notifications),
		Health:        NewHealthHandlers(nil),
	})
	return env
}

// do performs a request against the router. A non-empty userID simulates an
// authenticated caller the way the auth middleware would.
func (env *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedEvent(t *testing.T, id, creatorID string, visibility event.Visibility, tags ...string) *event.Event {
	t.Helper()

	e := &event.Event{
		ID:         id,
		CreatorID:  creatorID,
		Title:      "Event " + id,
		EventType:  event.TypeInPerson,
		Visibility: visibility,
		Tags:       tags,
		EventDate:  time.Now().Add(48 * time.Hour),
	}
	if err := env.events.Create(e); err != nil {
		t.Fatalf("seed event %s: %v", id, err)
	}
	return e
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, wantStatus, rec.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Error.Code != wantCode {
		t.Errorf("error code = %q, want %q", resp.Error.Code, wantCode)
	}
}
