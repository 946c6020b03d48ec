package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yusefzzz/connectly-spark-82/internal/health"
)

func TestRouter_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/feed/for-you"},
		{http.MethodGet, "/events"},
		{http.MethodPost, "/events/e1/like"},
		{http.MethodGet, "/events/e1/attend"},
		{http.MethodPost, "/profiles/u1/follow"},
		{http.MethodDelete, "/notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, "u1", nil)
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rec.Code)
			}
		})
	}
}

func TestRouter_UnknownPaths(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/events/e1/unknown",
		"/events/e1/attendees/u1/promote",
		"/profiles/u1/followers",
		"/notifications/n1/archive",
	} {
		rec := env.do(t, http.MethodPost, path, "u1", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/ready with no checkers status = %d, want 200", rec.Code)
	}
}

func TestReady_DegradedDependency(t *testing.T) {
	h := NewHealthHandlers(map[string]health.Checker{
		"database": stubChecker{},
		"redis":    stubChecker{err: errors.New("connection refused")},
	})
	env := &testEnv{router: NewRouter(&Handlers{
		Feed:          nil,
		Events:        nil,
		Engagement:    nil,
		Profiles:      nil,
		Notifications: nil,
		Health:        h,
	})}

	rec := env.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
	deps, _ := body["dependencies"].(map[string]any)
	if deps["redis"] != "unreachable" || deps["database"] != "ok" {
		t.Errorf("dependencies = %v", deps)
	}
}
