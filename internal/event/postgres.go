package event

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository against PostgreSQL.
// Tags are stored as text[].
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed event repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, creator_id, title, description, event_type, visibility,
	location, online_link, image_url, tags, event_date, created_at, updated_at`

// Create inserts a new event with a generated UUID.
func (r *PostgresRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.CreatorID, e.Title, e.Description, e.EventType, e.Visibility,
		e.Location, e.OnlineLink, e.ImageURL, pq.Array(e.Tags),
		e.EventDate, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its UUID.
func (r *PostgresRepository) GetByID(id string) (*Event, error) {
	row := r.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEventRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// ListByCreator retrieves a creator's events ordered by created_at DESC.
func (r *PostgresRepository) ListByCreator(creatorID string) ([]*Event, error) {
	rows, err := r.db.Query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE creator_id = $1
		ORDER BY created_at DESC, id ASC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("query creator events: %w", err)
	}
	return collectEvents(rows)
}

// TagSets returns the tag list for each of the given event IDs.
func (r *PostgresRepository) TagSets(ids []string) (map[string][]string, error) {
	tags := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}

	rows, err := r.db.Query(`SELECT id, tags FROM events WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query tag sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      string
			tagList []string
		)
		if err := rows.Scan(&id, pq.Array(&tagList)); err != nil {
			return nil, fmt.Errorf("scan tag set: %w", err)
		}
		tags[id] = tagList
	}
	return tags, rows.Err()
}

// UpcomingByDate retrieves events with event_date >= now ordered by
// event_date ASC, id ASC on ties.
func (r *PostgresRepository) UpcomingByDate(now time.Time, limit int) ([]*Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_date >= $1
		ORDER BY event_date ASC, id ASC`
	args := []any{now}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query upcoming events: %w", err)
	}
	return collectEvents(rows)
}

// PublicByCreation retrieves public upcoming events ordered by
// created_at DESC, id ASC on ties.
func (r *PostgresRepository) PublicByCreation(now time.Time, limit int) ([]*Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE visibility = 'public' AND event_date >= $1
		ORDER BY created_at DESC, id ASC`
	args := []any{now}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query public events: %w", err)
	}
	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventRow(row rowScanner) (*Event, error) {
	var (
		e                              Event
		location, onlineLink, imageURL sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.CreatorID, &e.Title, &e.Description, &e.EventType, &e.Visibility,
		&location, &onlineLink, &imageURL, pq.Array(&e.Tags),
		&e.EventDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
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

func collectEvents(rows *sql.Rows) ([]*Event, error) {
	defer rows.Close()

	var results []*Event
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// PostgresLikeRepository implements LikeRepository against PostgreSQL.
type PostgresLikeRepository struct {
	db *sql.DB
}

// NewPostgresLikeRepository creates a new Postgres-backed like repository.
func NewPostgresLikeRepository(db *sql.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// Like records a like. Idempotent via ON CONFLICT DO NOTHING.
func (r *PostgresLikeRepository) Like(eventID, userID string) error {
	_, err := r.db.Exec(`
		INSERT INTO event_likes (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Unlike removes a like. Idempotent.
func (r *PostgresLikeRepository) Unlike(eventID, userID string) error {
	_, err := r.db.Exec(`
		DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// ByEvent retrieves all likes for an event.
func (r *PostgresLikeRepository) ByEvent(eventID string) ([]Like, error) {
	return r.queryLikes(`
		SELECT event_id, user_id, created_at
		FROM event_likes
		WHERE event_id = $1
		ORDER BY created_at, user_id`, eventID)
}

// ByUser retrieves all likes a user has placed.
func (r *PostgresLikeRepository) ByUser(userID string) ([]Like, error) {
	return r.queryLikes(`
		SELECT event_id, user_id, created_at
		FROM event_likes
		WHERE user_id = $1
		ORDER BY created_at, event_id`, userID)
}

// Exists reports whether the like exists.
func (r *PostgresLikeRepository) Exists(eventID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM event_likes WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

func (r *PostgresLikeRepository) queryLikes(query string, arg any) ([]Like, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	var likes []Like
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.EventID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// PostgresAttendanceRepository implements AttendanceRepository against
// PostgreSQL.
type PostgresAttendanceRepository struct {
	db *sql.DB
}

// NewPostgresAttendanceRepository creates a new Postgres-backed attendance
// repository.
func NewPostgresAttendanceRepository(db *sql.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

// Request records a pending attendance request. Idempotent: an existing
// record keeps its status.
func (r *PostgresAttendanceRepository) Request(eventID, userID string) error {
	now := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO event_attendees (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID, AttendancePending, now)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// SetStatus transitions an existing attendance record to the given status.
func (r *PostgresAttendanceRepository) SetStatus(eventID, userID string, status AttendanceStatus) error {
	res, err := r.db.Exec(`
		UPDATE event_attendees
		SET status = $3, updated_at = $4
		WHERE event_id = $1 AND user_id = $2`,
		eventID, userID, status, time.Now())
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if affected == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}

// Get retrieves the attendance record for the pair.
func (r *PostgresAttendanceRepository) Get(eventID, userID string) (*Attendance, error) {
	var a Attendance
	err := r.db.QueryRow(`
		SELECT event_id, user_id, status, created_at, updated_at
		FROM event_attendees
		WHERE event_id = $1 AND user_id = $2`,
		eventID, userID).Scan(&a.EventID, &a.UserID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttendanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	return &a, nil
}

// ByEvent retrieves all attendance records for an event.
func (r *PostgresAttendanceRepository) ByEvent(eventID string) ([]Attendance, error) {
	return r.queryAttendance(`
		SELECT event_id, user_id, status, created_at, updated_at
		FROM event_attendees
		WHERE event_id = $1
		ORDER BY created_at, user_id`, eventID)
}

// ByUser retrieves all attendance records for a user.
func (r *PostgresAttendanceRepository) ByUser(userID string) ([]Attendance, error) {
	return r.queryAttendance(`
		SELECT event_id, user_id, status, created_at, updated_at
		FROM event_attendees
		WHERE user_id = $1
		ORDER BY created_at, event_id`, userID)
}

func (r *PostgresAttendanceRepository) queryAttendance(query string, arg any) ([]Attendance, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var records []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.EventID, &a.UserID, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
