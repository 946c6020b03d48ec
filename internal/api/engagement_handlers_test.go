package api

import (
	"net/http"
	"testing"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
)

func TestLike_CreatesAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPut, "/events/e1/like", "viewer-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	liked, err := env.likes.Exists("e1", "viewer-1")
	if err != nil || !liked {
		t.Errorf("like not recorded: liked=%v err=%v", liked, err)
	}

	notifications, err := env.notifications.ListByUser("creator-1")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("creator has %d notifications, want 1", len(notifications))
	}
}

func TestLike_IdempotentNotification(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPut, "/events/e1/like", "viewer-1", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("like #%d status = %d, want 204", i+1, rec.Code)
		}
	}

	notifications, _ := env.notifications.ListByUser("creator-1")
	if len(notifications) != 1 {
		t.Errorf("creator has %d notifications after repeated likes, want 1", len(notifications))
	}
}

func TestLike_SelfLikeSkipsNotification(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPut, "/events/e1/like", "creator-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	notifications, _ := env.notifications.ListByUser("creator-1")
	if len(notifications) != 0 {
		t.Errorf("creator has %d notifications for self-like, want 0", len(notifications))
	}
}

func TestUnlike_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)
	if err := env.likes.Like("e1", "viewer-1"); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodDelete, "/events/e1/like", "viewer-1", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unlike #%d status = %d, want 204", i+1, rec.Code)
		}
	}

	liked, _ := env.likes.Exists("e1", "viewer-1")
	if liked {
		t.Error("like still recorded after unlike")
	}
}

func TestLike_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPut, "/events/e1/like", "", nil)
	assertErrorCode(t, rec, http.StatusUnauthorized, ErrCodeAuthFailed)
}

func TestLike_HiddenPrivateEvent(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e-priv", "creator-1", event.VisibilityPrivate)

	rec := env.do(t, http.MethodPut, "/events/e-priv/like", "stranger-1", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestAttend_CreatesPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPost, "/events/e1/attend", "viewer-1", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp event.Attendance
	decodeBody(t, rec, &resp)
	if resp.Status != event.AttendancePending {
		t.Errorf("status = %q, want pending", resp.Status)
	}
}

func TestAttend_ReRequestKeepsApprovedStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	env.do(t, http.MethodPost, "/events/e1/attend", "viewer-1", nil)
	if err := env.attendance.SetStatus("e1", "viewer-1", event.AttendanceApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/events/e1/attend", "viewer-1", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp event.Attendance
	decodeBody(t, rec, &resp)
	if resp.Status != event.AttendanceApproved {
		t.Errorf("status = %q, want approved preserved on re-request", resp.Status)
	}
}

func TestAttend_CreatorCannotAttendOwnEvent(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPost, "/events/e1/attend", "creator-1", nil)
	assertErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestApprove_CreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)
	env.do(t, http.MethodPost, "/events/e1/attend", "viewer-1", nil)

	rec := env.do(t, http.MethodPost, "/events/e1/attendees/viewer-1/approve", "other-1", nil)
	assertErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)

	rec = env.do(t, http.MethodPost, "/events/e1/attendees/viewer-1/approve", "creator-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("creator approve status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	a, err := env.attendance.Get("e1", "viewer-1")
	if err != nil {
		t.Fatalf("get attendance: %v", err)
	}
	if a.Status != event.AttendanceApproved {
		t.Errorf("status = %q, want approved", a.Status)
	}

	notifications, _ := env.notifications.ListByUser("viewer-1")
	if len(notifications) != 1 {
		t.Errorf("attendee has %d notifications after approval, want 1", len(notifications))
	}
}

func TestDecline_NoNotification(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)
	env.do(t, http.MethodPost, "/events/e1/attend", "viewer-1", nil)

	rec := env.do(t, http.MethodPost, "/events/e1/attendees/viewer-1/decline", "creator-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	a, _ := env.attendance.Get("e1", "viewer-1")
	if a.Status != event.AttendanceDeclined {
		t.Errorf("status = %q, want declined", a.Status)
	}

	notifications, _ := env.notifications.ListByUser("viewer-1")
	if len(notifications) != 0 {
		t.Errorf("attendee has %d notifications after decline, want 0", len(notifications))
	}
}

func TestApprove_MissingRequest(t *testing.T) {
	env := newTestEnv(t)
	env.seedEvent(t, "e1", "creator-1", event.VisibilityPublic)

	rec := env.do(t, http.MethodPost, "/events/e1/attendees/nobody/approve", "creator-1", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}
