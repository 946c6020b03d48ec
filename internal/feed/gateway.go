package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/profile"
)

// Kind selects which feed a ranking request is for.
type Kind string

const (
	// KindPersonalized is the "For You" feed: relevance to known interests
	// and followed creators.
	KindPersonalized Kind = "personalized"

	// KindBridging is the "Explore" feed: partial interest overlap plus
	// at least one new topic.
	KindBridging Kind = "bridging"
)

// Valid reports whether k is a known feed kind.
func (k Kind) Valid() bool {
	return k == KindPersonalized || k == KindBridging
}

// Candidate pool caps per feed kind.
const (
	PersonalizedPoolSize = 20
	BridgingPoolSize     = 30
)

// TaggedEvent carries just the fields the interest profile builder needs.
type TaggedEvent struct {
	ID   string
	Tags []string
}

// Candidate is an event fetched for ranking together with its engagement
// records. Likes and attendance are embedded eagerly so scoring and
// enrichment never issue per-candidate queries.
type Candidate struct {
	Event      *event.Event
	Likes      []event.Like
	Attendance []event.Attendance
}

// Gateway is the data access boundary of the ranking engine. Implementations
// translate these queries to whatever store holds the records. The engine
// never mutates anything it receives through this interface.
type Gateway interface {
	// LikesByUser fetches every like the user has placed.
	LikesByUser(ctx context.Context, userID string) ([]event.Like, error)

	// EventTags fetches (id, tags) for the given event IDs. Unknown IDs
	// are skipped, not errors.
	EventTags(ctx context.Context, eventIDs []string) ([]TaggedEvent, error)

	// Follows fetches the IDs of everyone the user follows.
	Follows(ctx context.Context, followerID string) ([]string, error)

	// Candidates fetches the bounded candidate pool for the given feed kind.
	// Personalized pools are ordered by event date ASC and capped at
	// PersonalizedPoolSize; bridging pools contain only public events,
	// ordered by creation time DESC and capped at BridgingPoolSize.
	// The viewer ID is used for visibility filtering on personalized pools.
	Candidates(ctx context.Context, kind Kind, viewerID string, now time.Time) ([]Candidate, error)
}

// RepositoryGateway adapts the in-process repositories to the Gateway
// interface. It is the default gateway when no database is configured.
type RepositoryGateway struct {
	events     event.Repository
	likes      event.LikeRepository
	attendance event.AttendanceRepository
	follows    profile.FollowRepository
}

// NewRepositoryGateway creates a Gateway backed by in-process repositories.
func NewRepositoryGateway(events event.Repository, likes event.LikeRepository, attendance event.AttendanceRepository, follows profile.FollowRepository) *RepositoryGateway {
	return &RepositoryGateway{
		events:     events,
		likes:      likes,
		attendance: attendance,
		follows:    follows,
	}
}

// LikesByUser fetches every like the user has placed.
func (g *RepositoryGateway) LikesByUser(ctx context.Context, userID string) ([]event.Like, error) {
	return g.likes.ByUser(userID)
}

// EventTags fetches (id, tags) for the given event IDs.
func (g *RepositoryGateway) EventTags(ctx context.Context, eventIDs []string) ([]TaggedEvent, error) {
	tagSets, err := g.events.TagSets(eventIDs)
	if err != nil {
		return nil, err
	}
	tagged := make([]TaggedEvent, 0, len(tagSets))
	for _, id := range eventIDs {
		tags, ok := tagSets[id]
		if !ok {
			continue
		}
		tagged = append(tagged, TaggedEvent{ID: id, Tags: tags})
	}
	return tagged, nil
}

// Follows fetches the IDs of everyone the user follows.
func (g *RepositoryGateway) Follows(ctx context.Context, followerID string) ([]string, error) {
	return g.follows.FollowingIDs(followerID)
}

// Candidates fetches the bounded candidate pool for the given feed kind.
func (g *RepositoryGateway) Candidates(ctx context.Context, kind Kind, viewerID string, now time.Time) ([]Candidate, error) {
	var (
		events []*event.Event
		err    error
	)
	switch kind {
	case KindPersonalized:
		// Fetch unbounded, filter visibility, then cap. There is no
		// row-level security beneath this process, so private events
		// must be filtered here before the pool is capped.
		events, err = g.events.UpcomingByDate(now, 0)
		if err == nil {
			events, err = g.filterVisible(events, viewerID)
			if err == nil && len(events) > PersonalizedPoolSize {
				events = events[:PersonalizedPoolSize]
			}
		}
	case KindBridging:
		events, err = g.events.PublicByCreation(now, BridgingPoolSize)
	default:
		return nil, fmt.Errorf("unknown feed kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(events))
	for _, e := range events {
		likes, err := g.likes.ByEvent(e.ID)
		if err != nil {
			return nil, err
		}
		attendance, err := g.attendance.ByEvent(e.ID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{
			Event:      e,
			Likes:      likes,
			Attendance: attendance,
		})
	}
	return candidates, nil
}

// filterVisible keeps events the viewer may see: public events, the
// viewer's own, and private events the viewer has an attendance record for.
func (g *RepositoryGateway) filterVisible(events []*event.Event, viewerID string) ([]*event.Event, error) {
	visible := events[:0]
	for _, e := range events {
		if e.VisibleTo(viewerID) {
			visible = append(visible, e)
			continue
		}
		rec, err := g.attendance.Get(e.ID, viewerID)
		if err == event.ErrAttendanceNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec != nil {
			visible = append(visible, e)
		}
	}
	return visible, nil
}
