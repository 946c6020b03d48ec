package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
)

// stubGateway is a Gateway with canned responses for service tests.
type stubGateway struct {
	likes      []event.Like
	tagged     []TaggedEvent
	follows    []string
	candidates []Candidate

	likesErr      error
	taggedErr     error
	followsErr    error
	candidatesErr error
}

func (s *stubGateway) LikesByUser(ctx context.Context, userID string) ([]event.Like, error) {
	return s.likes, s.likesErr
}

func (s *stubGateway) EventTags(ctx context.Context, ids []string) ([]TaggedEvent, error) {
	return s.tagged, s.taggedErr
}

func (s *stubGateway) Follows(ctx context.Context, followerID string) ([]string, error) {
	return s.follows, s.followsErr
}

func (s *stubGateway) Candidates(ctx context.Context, kind Kind, viewerID string, now time.Time) ([]Candidate, error) {
	return s.candidates, s.candidatesErr
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func TestRank_EmptyViewerYieldsEmptyList(t *testing.T) {
	// An anonymous viewer is not an error: the contract is an empty list.
	gw := &stubGateway{candidatesErr: errors.New("must not be called")}
	svc := NewService(gw)

	for _, kind := range []Kind{KindPersonalized, KindBridging} {
		results, err := svc.Rank(context.Background(), "", kind)
		if err != nil {
			t.Fatalf("Rank(%s) with empty viewer: unexpected error %v", kind, err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("Rank(%s) with empty viewer: expected empty list, got %v", kind, results)
		}
	}
}

func TestRank_UnknownKind(t *testing.T) {
	svc := NewService(&stubGateway{})

	_, err := svc.Rank(context.Background(), "viewer", Kind("trending"))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRank_GatewayFailureIsDataAccessError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		gw   *stubGateway
		op   string
	}{
		{"likes fetch fails", &stubGateway{likesErr: cause}, "likes_by_user"},
		{"tag fetch fails", &stubGateway{likes: []event.Like{{EventID: "e1", UserID: "viewer"}}, taggedErr: cause}, "event_tags"},
		{"follow fetch fails", &stubGateway{followsErr: cause}, "follows"},
		{"candidate fetch fails", &stubGateway{candidatesErr: cause}, "candidates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.gw)

			_, err := svc.Rank(context.Background(), "viewer", KindPersonalized)
			var dae *DataAccessError
			if !errors.As(err, &dae) {
				t.Fatalf("expected *DataAccessError, got %v", err)
			}
			if dae.Op != tt.op {
				t.Errorf("expected op %q, got %q", tt.op, dae.Op)
			}
			if !errors.Is(err, cause) {
				t.Errorf("expected error to wrap the gateway cause")
			}
		})
	}
}

// TestRank_PersonalizedScenario reproduces the documented example: the
// viewer follows creator C with interests {music, tech}; candidate A
// (creator C, music, 2h old) scores 18 and candidate B (other creator,
// art+tech, 3 days old) scores 5.
func TestRank_PersonalizedScenario(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	gw := &stubGateway{
		likes:   []event.Like{{EventID: "liked1", UserID: "viewer"}},
		tagged:  []TaggedEvent{{ID: "liked1", Tags: []string{"music", "tech"}}},
		follows: []string{"creatorC"},
		candidates: []Candidate{
			newCandidate("a", "creatorC", []string{"music"}, 2*time.Hour, now),
			newCandidate("b", "other", []string{"art", "tech"}, 72*time.Hour, now),
		},
	}
	svc := NewService(gw, WithClock(fixedClock(now)))

	results, err := svc.Rank(context.Background(), "viewer", KindPersonalized)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[0].Score != 18 {
		t.Errorf("expected a with score 18 first, got %s with score %d", results[0].ID, results[0].Score)
	}
	if results[1].ID != "b" || results[1].Score != 5 {
		t.Errorf("expected b with score 5 second, got %s with score %d", results[1].ID, results[1].Score)
	}
}

// TestRank_BridgingScenario reproduces the documented example: interests
// {music}; X bridges one familiar tag (15), Y is all novel (5), Z is
// already liked with no novelty (-100). Z stays in the list.
func TestRank_BridgingScenario(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	gw := &stubGateway{
		likes:   []event.Like{{EventID: "z", UserID: "viewer"}},
		tagged:  []TaggedEvent{{ID: "z", Tags: []string{"music"}}},
		follows: nil,
		candidates: []Candidate{
			newCandidate("x", "c1", []string{"music", "pottery"}, 48*time.Hour, now),
			newCandidate("y", "c2", []string{"pottery", "ceramics"}, 48*time.Hour, now),
			newCandidate("z", "c3", []string{"music"}, 48*time.Hour, now),
		},
	}
	svc := NewService(gw, WithClock(fixedClock(now)))

	results, err := svc.Rank(context.Background(), "viewer", KindBridging)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("already-liked events must not be filtered: expected 3 results, got %d", len(results))
	}
	wantOrder := []string{"x", "y", "z"}
	wantScores := []int{15, 5, -100}
	for i := range wantOrder {
		if results[i].ID != wantOrder[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantOrder[i], results[i].ID)
		}
		if results[i].Score != wantScores[i] {
			t.Errorf("%s: expected score %d, got %d", results[i].ID, wantScores[i], results[i].Score)
		}
	}
}

// TestRank_TieBreakFollowsPoolOrder verifies stability through the full
// pipeline: equal-score candidates come back in candidate-pool order.
func TestRank_TieBreakFollowsPoolOrder(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// All three candidates score zero for a viewer with no likes or follows.
	gw := &stubGateway{
		candidates: []Candidate{
			newCandidate("soonest", "c1", []string{"a"}, 48*time.Hour, now),
			newCandidate("middle", "c2", []string{"b"}, 48*time.Hour, now),
			newCandidate("latest", "c3", []string{"c"}, 48*time.Hour, now),
		},
	}
	svc := NewService(gw, WithClock(fixedClock(now)))

	results, err := svc.Rank(context.Background(), "viewer", KindPersonalized)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	want := []string{"soonest", "middle", "latest"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, results[i].ID)
		}
	}
}

func TestRank_EnrichmentFields(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	c := newCandidate("e1", "creator", []string{"music"}, 48*time.Hour, now)
	c.Likes = []event.Like{
		{EventID: "e1", UserID: "viewer"},
		{EventID: "e1", UserID: "other"},
		{EventID: "e1", UserID: "third"},
	}
	c.Attendance = []event.Attendance{
		{EventID: "e1", UserID: "u1", Status: event.AttendanceApproved},
		{EventID: "e1", UserID: "u2", Status: event.AttendancePending},
		{EventID: "e1", UserID: "u3", Status: event.AttendanceApproved},
		{EventID: "e1", UserID: "u4", Status: event.AttendanceDeclined},
	}

	gw := &stubGateway{candidates: []Candidate{c}}
	svc := NewService(gw, WithClock(fixedClock(now)))

	results, err := svc.Rank(context.Background(), "viewer", KindPersonalized)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if !got.Liked {
		t.Error("expected liked=true for viewer with a like record")
	}
	if got.LikeCount != 3 {
		t.Errorf("expected like_count 3, got %d", got.LikeCount)
	}
	if got.AttendeeCount != 2 {
		t.Errorf("pending and declined must not count: expected 2 approved attendees, got %d", got.AttendeeCount)
	}
}

func TestRank_EmptyPoolIsNormal(t *testing.T) {
	svc := NewService(&stubGateway{})

	results, err := svc.Rank(context.Background(), "viewer", KindBridging)
	if err != nil {
		t.Fatalf("zero candidates is a normal outcome, got error %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d entries", len(results))
	}
}
