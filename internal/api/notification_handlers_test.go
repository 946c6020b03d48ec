package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/notification"
)

func TestListNotifications_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	base := time.Now()

	for i, msg := range []string{"first", "second", "third"} {
		n := &notification.Notification{
			UserID:    "u1",
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := env.notifications.Create(n); err != nil {
			t.Fatalf("seed notification: %v", err)
		}
	}
	if err := env.notifications.Create(&notification.Notification{UserID: "u2", Message: "other user"}); err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/notifications", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp NotificationsResponse
	decodeBody(t, rec, &resp)
	if len(resp.Notifications) != 3 {
		t.Fatalf("got %d notifications, want 3", len(resp.Notifications))
	}
	for i, want := range []string{"third", "second", "first"} {
		if resp.Notifications[i].Message != want {
			t.Errorf("notifications[%d] = %q, want %q", i, resp.Notifications[i].Message, want)
		}
	}
}

func TestListNotifications_EmptyIsNotNull(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/notifications", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var raw map[string]any
	decodeBody(t, rec, &raw)
	if raw["notifications"] == nil {
		t.Error("notifications is null, want empty array")
	}
}

func TestListNotifications_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/notifications", "", nil)
	assertErrorCode(t, rec, http.StatusUnauthorized, ErrCodeAuthFailed)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)
	n := &notification.Notification{UserID: "u1", Message: "hello"}
	if err := env.notifications.Create(n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/notifications/"+n.ID+"/read", "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	list, _ := env.notifications.ListByUser("u1")
	if len(list) != 1 || !list[0].Read {
		t.Error("notification not marked read")
	}
}

func TestMarkRead_OtherUsersNotification(t *testing.T) {
	env := newTestEnv(t)
	n := &notification.Notification{UserID: "u1", Message: "hello"}
	if err := env.notifications.Create(n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/notifications/"+n.ID+"/read", "u2", nil)
	assertErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}
