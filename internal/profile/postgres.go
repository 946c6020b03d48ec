package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed profile repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces a profile.
func (r *PostgresRepository) Upsert(p *Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(`
		INSERT INTO profiles (id, username, full_name, avatar_url, bio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url,
		    bio = EXCLUDED.bio`,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.Bio, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by user ID.
func (r *PostgresRepository) GetByID(id string) (*Profile, error) {
	var (
		p         Profile
		avatarURL sql.NullString
	)
	err := r.db.QueryRow(`
		SELECT id, username, full_name, avatar_url, bio, created_at
		FROM profiles
		WHERE id = $1`, id).Scan(&p.ID, &p.Username, &p.FullName, &avatarURL, &p.Bio, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	return &p, nil
}

// PostgresFollowRepository implements FollowRepository against PostgreSQL.
type PostgresFollowRepository struct {
	db *sql.DB
}

// NewPostgresFollowRepository creates a new Postgres-backed follow repository.
func NewPostgresFollowRepository(db *sql.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// Follow records a follow edge. Idempotent. Self-follows are rejected.
func (r *PostgresFollowRepository) Follow(followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	_, err := r.db.Exec(`
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followeeID, time.Now())
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Unfollow removes a follow edge. Idempotent.
func (r *PostgresFollowRepository) Unfollow(followerID, followeeID string) error {
	_, err := r.db.Exec(`
		DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// IsFollowing reports whether the edge exists.
func (r *PostgresFollowRepository) IsFollowing(followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

// FollowingIDs retrieves the IDs of everyone the follower follows.
func (r *PostgresFollowRepository) FollowingIDs(followerID string) ([]string, error) {
	rows, err := r.db.Query(`
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
