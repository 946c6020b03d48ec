package feed

import "github.com/yusefzzz/connectly-spark-82/internal/event"

// EnrichedEvent is an event augmented with its score and viewer-relative
// engagement fields. It is the unit of the ranked list handed to the
// presentation layer and is never stored.
type EnrichedEvent struct {
	*event.Event
	Score         int  `json:"score"`
	Liked         bool `json:"liked"`
	LikeCount     int  `json:"like_count"`
	AttendeeCount int  `json:"approved_attendee_count"`
}

// enrich derives the viewer-relative fields for each ranked candidate.
// Runs after ranking and preserves order. Read-only: the enriched list
// copies event pointers but never mutates the candidates.
func enrich(viewerID string, ranked []scoredCandidate) []EnrichedEvent {
	results := make([]EnrichedEvent, len(ranked))
	for i, sc := range ranked {
		liked := false
		for _, l := range sc.Likes {
			if l.UserID == viewerID {
				liked = true
				break
			}
		}

		approved := 0
		for _, a := range sc.Attendance {
			if a.Status == event.AttendanceApproved {
				approved++
			}
		}

		results[i] = EnrichedEvent{
			Event:         sc.Event,
			Score:         sc.score,
			Liked:         liked,
			LikeCount:     len(sc.Likes),
			AttendeeCount: approved,
		}
	}
	return results
}
