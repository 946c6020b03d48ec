// Package notification provides models and a repository for user notifications.
package notification

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification is a message delivered to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for notification data operations.
type Repository interface {
	// Create inserts a new notification with a generated UUID.
	Create(n *Notification) error

	// ListByUser retrieves a user's notifications ordered by created_at DESC,
	// id ASC on ties.
	ListByUser(userID string) ([]*Notification, error)

	// MarkRead marks a notification as read. The notification must belong
	// to the given user.
	MarkRead(id, userID string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewInMemoryRepository creates a new in-memory notification repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		notifications: make(map[string]*Notification),
	}
}

// Create inserts a new notification with a generated UUID.
func (r *InMemoryRepository) Create(n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	notifCopy := *n
	r.notifications[n.ID] = &notifCopy
	return nil
}

// ListByUser retrieves a user's notifications ordered by created_at DESC.
func (r *InMemoryRepository) ListByUser(userID string) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		notifCopy := *n
		results = append(results, &notifCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

// MarkRead marks a notification as read.
func (r *InMemoryRepository) MarkRead(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}
	n.Read = true
	return nil
}
