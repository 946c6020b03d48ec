// Package profile provides models and repositories for user profiles
// and follow edges.
package profile

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Common errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSelfFollow      = errors.New("cannot follow yourself")
)

// Profile represents a user's public profile.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed edge: follower follows followee.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"following_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository defines the interface for profile data operations.
type Repository interface {
	// Upsert inserts or replaces a profile.
	Upsert(p *Profile) error

	// GetByID retrieves a profile by user ID.
	GetByID(id string) (*Profile, error)
}

// FollowRepository defines the interface for follow-edge operations.
type FollowRepository interface {
	// Follow records a follow edge. Idempotent. Self-follows are rejected.
	Follow(followerID, followeeID string) error

	// Unfollow removes a follow edge. Idempotent.
	Unfollow(followerID, followeeID string) error

	// IsFollowing reports whether the edge exists.
	IsFollowing(followerID, followeeID string) (bool, error)

	// FollowingIDs retrieves the IDs of everyone the follower follows.
	FollowingIDs(followerID string) ([]string, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
	}
}

// Upsert inserts or replaces a profile.
func (r *InMemoryRepository) Upsert(p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	profileCopy := *p
	r.profiles[p.ID] = &profileCopy
	return nil
}

// GetByID retrieves a profile by user ID.
func (r *InMemoryRepository) GetByID(id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	profileCopy := *p
	return &profileCopy, nil
}

// InMemoryFollowRepository is an in-memory implementation of FollowRepository.
// Thread-safe via RWMutex.
type InMemoryFollowRepository struct {
	mu    sync.RWMutex
	edges map[string]Follow
}

// NewInMemoryFollowRepository creates a new in-memory follow repository.
func NewInMemoryFollowRepository() *InMemoryFollowRepository {
	return &InMemoryFollowRepository{
		edges: make(map[string]Follow),
	}
}

func edgeKey(followerID, followeeID string) string {
	return followerID + "\x00" + followeeID
}

// Follow records a follow edge. Idempotent.
func (r *InMemoryFollowRepository) Follow(followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := edgeKey(followerID, followeeID)
	if _, exists := r.edges[key]; exists {
		return nil
	}
	r.edges[key] = Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	return nil
}

// Unfollow removes a follow edge. Idempotent.
func (r *InMemoryFollowRepository) Unfollow(followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.edges, edgeKey(followerID, followeeID))
	return nil
}

// IsFollowing reports whether the edge exists.
func (r *InMemoryFollowRepository) IsFollowing(followerID, followeeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.edges[edgeKey(followerID, followeeID)]
	return ok, nil
}

// FollowingIDs retrieves the IDs of everyone the follower follows.
func (r *InMemoryFollowRepository) FollowingIDs(followerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, edge := range r.edges {
		if edge.FollowerID == followerID {
			ids = append(ids, edge.FolloweeID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
