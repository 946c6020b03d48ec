package feed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/yusefzzz/connectly-spark-82/internal/event"
)

// PostgresGateway implements Gateway against PostgreSQL. Tags are stored
// as text[]; likes and attendance for a candidate pool are batch-loaded
// with ANY(id-set) queries rather than per-candidate round trips.
type PostgresGateway struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresGateway creates a new PostgresGateway.
func NewPostgresGateway(db *sql.DB, logger *slog.Logger) *PostgresGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGateway{
		db:     db,
		logger: logger,
	}
}

// LikesByUser fetches every like the user has placed.
func (g *PostgresGateway) LikesByUser(ctx context.Context, userID string) ([]event.Like, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT event_id, user_id, created_at
		FROM event_likes
		WHERE user_id = $1
		ORDER BY created_at, event_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	var likes []event.Like
	for rows.Next() {
		var l event.Like
		if err := rows.Scan(&l.EventID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// EventTags fetches (id, tags) for the given event IDs.
func (g *PostgresGateway) EventTags(ctx context.Context, eventIDs []string) ([]TaggedEvent, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	rows, err := g.db.QueryContext(ctx, `
		SELECT id, tags
		FROM events
		WHERE id = ANY($1)`, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("query event tags: %w", err)
	}
	defer rows.Close()

	var tagged []TaggedEvent
	for rows.Next() {
		var te TaggedEvent
		if err := rows.Scan(&te.ID, pq.Array(&te.Tags)); err != nil {
			return nil, fmt.Errorf("scan event tags: %w", err)
		}
		tagged = append(tagged, te)
	}
	return tagged, rows.Err()
}

// Follows fetches the IDs of everyone the user follows.
func (g *PostgresGateway) Follows(ctx context.Context, followerID string) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT following_id
		FROM follows
		WHERE follower_id = $1
		ORDER BY following_id`, followerID)
	if err != nil {
		return nil, fmt.Errorf("query follows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Candidates fetches the bounded candidate pool for the given feed kind.
// The personalized pool applies the visibility rule in SQL: public events,
// the viewer's own, and private events the viewer has an attendance record
// for. The bridging pool is public-only by definition.
func (g *PostgresGateway) Candidates(ctx context.Context, kind Kind, viewerID string, now time.Time) ([]Candidate, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch kind {
	case KindPersonalized:
		rows, err = g.db.QueryContext(ctx, `
			SELECT id, creator_id, title, description, event_type, visibility,
			       location, online_link, image_url, tags, event_date, created_at, updated_at
			FROM events
			WHERE event_date >= $1
			  AND (visibility = 'public'
			       OR creator_id = $2
			       OR EXISTS (
			             SELECT 1 FROM event_attendees a
			             WHERE a.event_id = events.id AND a.user_id = $2))
			ORDER BY event_date ASC, id ASC
			LIMIT $3`, now, viewerID, PersonalizedPoolSize)
	case KindBridging:
		rows, err = g.db.QueryContext(ctx, `
			SELECT id, creator_id, title, description, event_type, visibility,
			       location, online_link, image_url, tags, event_date, created_at, updated_at
			FROM events
			WHERE visibility = 'public' AND event_date >= $1
			ORDER BY created_at DESC, id ASC
			LIMIT $2`, now, BridgingPoolSize)
	default:
		return nil, fmt.Errorf("unknown feed kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return g.attachEngagement(ctx, events)
}

// scanEvent reads one event row, mapping nullable columns to pointers.
func scanEvent(rows *sql.Rows) (*event.Event, error) {
	var (
		e                              event.Event
		location, onlineLink, imageURL sql.NullString
	)
	if err := rows.Scan(
		&e.ID, &e.CreatorID, &e.Title, &e.Description, &e.EventType, &e.Visibility,
		&location, &onlineLink, &imageURL, pq.Array(&e.Tags),
		&e.EventDate, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if location.Valid {
		e.Location = &location.String
	}
	if onlineLink.Valid {
		e.OnlineLink = &onlineLink.String
	}
	if imageURL.Valid {
		e.ImageURL = &imageURL.String
	}
	return &e, nil
}

// attachEngagement batch-loads likes and attendance for the pool and
// embeds them per candidate, preserving the pool's order.
func (g *PostgresGateway) attachEngagement(ctx context.Context, events []*event.Event) ([]Candidate, error) {
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	likesByEvent := make(map[string][]event.Like)
	rows, err := g.db.QueryContext(ctx, `
		SELECT event_id, user_id, created_at
		FROM event_likes
		WHERE event_id = ANY($1)
		ORDER BY created_at, user_id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query pool likes: %w", err)
	}
	for rows.Next() {
		var l event.Like
		if err := rows.Scan(&l.EventID, &l.UserID, &l.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pool like: %w", err)
		}
		likesByEvent[l.EventID] = append(likesByEvent[l.EventID], l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	attendanceByEvent := make(map[string][]event.Attendance)
	rows, err = g.db.QueryContext(ctx, `
		SELECT event_id, user_id, status, created_at, updated_at
		FROM event_attendees
		WHERE event_id = ANY($1)
		ORDER BY created_at, user_id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query pool attendance: %w", err)
	}
	for rows.Next() {
		var a event.Attendance
		if err := rows.Scan(&a.EventID, &a.UserID, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pool attendance: %w", err)
		}
		attendanceByEvent[a.EventID] = append(attendanceByEvent[a.EventID], a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	candidates := make([]Candidate, len(events))
	for i, e := range events {
		candidates[i] = Candidate{
			Event:      e,
			Likes:      likesByEvent[e.ID],
			Attendance: attendanceByEvent[e.ID],
		}
	}
	return candidates, nil
}
