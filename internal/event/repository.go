package event

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for event operations.
var (
	ErrEventNotFound = errors.New("event not found")
)

// Repository defines the interface for event data operations.
type Repository interface {
	// Create inserts a new event with a generated UUID.
	Create(e *Event) error

	// GetByID retrieves an event by its UUID.
	GetByID(id string) (*Event, error)

	// ListByCreator retrieves a creator's events ordered by created_at DESC,
	// id ASC on ties.
	ListByCreator(creatorID string) ([]*Event, error)

	// TagSets returns the tag list for each of the given event IDs.
	// Unknown IDs are silently skipped.
	TagSets(ids []string) (map[string][]string, error)

	// UpcomingByDate retrieves events with event_date >= now ordered by
	// event_date ASC, id ASC on ties. A limit <= 0 returns all matches.
	UpcomingByDate(now time.Time, limit int) ([]*Event, error)

	// PublicByCreation retrieves public events with event_date >= now
	// ordered by created_at DESC, id ASC on ties. A limit <= 0 returns all.
	PublicByCreation(now time.Time, limit int) ([]*Event, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*Event
}

// NewInMemoryRepository creates a new in-memory event repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		events: make(map[string]*Event),
	}
}

// Create inserts a new event with a generated UUID.
func (r *InMemoryRepository) Create(e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	eventCopy := *e
	r.events[e.ID] = &eventCopy
	return nil
}

// GetByID retrieves an event by its UUID.
func (r *InMemoryRepository) GetByID(id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	eventCopy := *e
	return &eventCopy, nil
}

// ListByCreator retrieves a creator's events ordered by created_at DESC.
func (r *InMemoryRepository) ListByCreator(creatorID string) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Event
	for _, e := range r.events {
		if e.CreatorID != creatorID {
			continue
		}
		eventCopy := *e
		results = append(results, &eventCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

// TagSets returns the tag list for each of the given event IDs.
func (r *InMemoryRepository) TagSets(ids []string) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make(map[string][]string, len(ids))
	for _, id := range ids {
		e, ok := r.events[id]
		if !ok {
			continue
		}
		tags[id] = append([]string(nil), e.Tags...)
	}
	return tags, nil
}

// UpcomingByDate retrieves events with event_date >= now ordered by
// event_date ASC, id ASC on ties.
func (r *InMemoryRepository) UpcomingByDate(now time.Time, limit int) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Event
	for _, e := range r.events {
		if e.EventDate.Before(now) {
			continue
		}
		eventCopy := *e
		results = append(results, &eventCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].EventDate.Equal(results[j].EventDate) {
			return results[i].EventDate.Before(results[j].EventDate)
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// PublicByCreation retrieves public upcoming events ordered by
// created_at DESC, id ASC on ties.
func (r *InMemoryRepository) PublicByCreation(now time.Time, limit int) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Event
	for _, e := range r.events {
		if e.Visibility != VisibilityPublic {
			continue
		}
		if e.EventDate.Before(now) {
			continue
		}
		eventCopy := *e
		results = append(results, &eventCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
