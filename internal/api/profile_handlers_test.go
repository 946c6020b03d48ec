package api

import (
	"net/http"
	"testing"

	"github.com/yusefzzz/connectly-spark-82/internal/profile"
)

func seedProfile(t *testing.T, env *testEnv, id, username string) {
	t.Helper()
	if err := env.profiles.Upsert(&profile.Profile{ID: id, Username: username}); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "u1", "zineclub")
	if err := env.follows.Follow("viewer-1", "u1"); err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/profiles/u1", "viewer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp ProfileResponse
	decodeBody(t, rec, &resp)
	if resp.Username != "zineclub" {
		t.Errorf("username = %q, want zineclub", resp.Username)
	}
	if !resp.Following {
		t.Error("following = false, want true")
	}

	rec = env.do(t, http.MethodGet, "/profiles/u1", "other-1", nil)
	decodeBody(t, rec, &resp)
	if resp.Following {
		t.Error("following = true for a non-follower, want false")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/profiles/missing", "viewer-1", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/profiles/u1", "u1", map[string]any{
		"username":  "diy.promoter",
		"full_name": "Sam R",
		"bio":       "books all-ages shows",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	stored, err := env.profiles.GetByID("u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if stored.Username != "diy.promoter" {
		t.Errorf("username = %q, want diy.promoter", stored.Username)
	}
}

func TestUpdateProfile_OwnOnly(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/profiles/u2", "u1", map[string]any{"username": "x"})
	assertErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)
}

func TestUpdateProfile_InvalidUsername(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/profiles/u1", "u1", map[string]any{"username": "has spaces"})
	assertErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestFollow(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "u2", "target")

	rec := env.do(t, http.MethodPut, "/profiles/u2/follow", "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	following, err := env.follows.IsFollowing("u1", "u2")
	if err != nil || !following {
		t.Errorf("follow edge missing: following=%v err=%v", following, err)
	}
}

func TestFollow_Self(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "u1", "me")

	rec := env.do(t, http.MethodPut, "/profiles/u1/follow", "u1", nil)
	assertErrorCode(t, rec, http.StatusBadRequest, ErrCodeSelfFollow)
}

func TestFollow_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/profiles/ghost/follow", "u1", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestUnfollow_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "u2", "target")
	if err := env.follows.Follow("u1", "u2"); err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodDelete, "/profiles/u2/follow", "u1", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unfollow #%d status = %d, want 204", i+1, rec.Code)
		}
	}

	following, _ := env.follows.IsFollowing("u1", "u2")
	if following {
		t.Error("follow edge still present after unfollow")
	}
}
