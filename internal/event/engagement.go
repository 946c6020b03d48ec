package event

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Common errors for engagement operations.
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	// Like records a like for the (event, user) pair. Idempotent.
	Like(eventID, userID string) error

	// Unlike removes a like for the (event, user) pair. Idempotent.
	Unlike(eventID, userID string) error

	// ByEvent retrieves all likes for an event.
	ByEvent(eventID string) ([]Like, error)

	// ByUser retrieves all likes placed by a user, ordered by created_at ASC.
	ByUser(userID string) ([]Like, error)

	// Exists reports whether the user has liked the event.
	Exists(eventID, userID string) (bool, error)
}

// AttendanceRepository defines the interface for attendance data operations.
type AttendanceRepository interface {
	// Request records a pending attendance request. If a record already
	// exists for the pair, it is left unchanged.
	Request(eventID, userID string) error

	// SetStatus transitions an existing attendance record to the given status.
	SetStatus(eventID, userID string, status AttendanceStatus) error

	// Get retrieves the attendance record for the pair.
	Get(eventID, userID string) (*Attendance, error)

	// ByEvent retrieves all attendance records for an event.
	ByEvent(eventID string) ([]Attendance, error)

	// ByUser retrieves all attendance records for a user.
	ByUser(userID string) ([]Attendance, error)
}

// pairKey builds a composite map key for (event, user) pairs.
// A null byte separator avoids collisions between concatenated IDs.
func pairKey(eventID, userID string) string {
	return eventID + "\x00" + userID
}

// InMemoryLikeRepository is an in-memory implementation of LikeRepository.
// Thread-safe via RWMutex.
type InMemoryLikeRepository struct {
	mu    sync.RWMutex
	likes map[string]Like
}

// NewInMemoryLikeRepository creates a new in-memory like repository.
func NewInMemoryLikeRepository() *InMemoryLikeRepository {
	return &InMemoryLikeRepository{
		likes: make(map[string]Like),
	}
}

// Like records a like for the (event, user) pair. Idempotent.
func (r *InMemoryLikeRepository) Like(eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(eventID, userID)
	if _, exists := r.likes[key]; exists {
		return nil
	}
	r.likes[key] = Like{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	return nil
}

// Unlike removes a like for the (event, user) pair. Idempotent.
func (r *InMemoryLikeRepository) Unlike(eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.likes, pairKey(eventID, userID))
	return nil
}

// ByEvent retrieves all likes for an event.
func (r *InMemoryLikeRepository) ByEvent(eventID string) ([]Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Like
	for _, l := range r.likes {
		if l.EventID == eventID {
			results = append(results, l)
		}
	}
	sortLikes(results)
	return results, nil
}

// ByUser retrieves all likes placed by a user.
func (r *InMemoryLikeRepository) ByUser(userID string) ([]Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Like
	for _, l := range r.likes {
		if l.UserID == userID {
			results = append(results, l)
		}
	}
	sortLikes(results)
	return results, nil
}

// Exists reports whether the user has liked the event.
func (r *InMemoryLikeRepository) Exists(eventID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.likes[pairKey(eventID, userID)]
	return ok, nil
}

// sortLikes orders likes by created_at ASC, then event id, then user id.
// Map iteration order is random; queries need a deterministic order.
func sortLikes(likes []Like) {
	sort.Slice(likes, func(i, j int) bool {
		if !likes[i].CreatedAt.Equal(likes[j].CreatedAt) {
			return likes[i].CreatedAt.Before(likes[j].CreatedAt)
		}
		if likes[i].EventID != likes[j].EventID {
			return likes[i].EventID < likes[j].EventID
		}
		return likes[i].UserID < likes[j].UserID
	})
}

// InMemoryAttendanceRepository is an in-memory implementation of
// AttendanceRepository. Thread-safe via RWMutex.
type InMemoryAttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]Attendance
}

// NewInMemoryAttendanceRepository creates a new in-memory attendance repository.
func NewInMemoryAttendanceRepository() *InMemoryAttendanceRepository {
	return &InMemoryAttendanceRepository{
		records: make(map[string]Attendance),
	}
}

// Request records a pending attendance request.
func (r *InMemoryAttendanceRepository) Request(eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(eventID, userID)
	if _, exists := r.records[key]; exists {
		return nil
	}
	now := time.Now()
	r.records[key] = Attendance{
		EventID:   eventID,
		UserID:    userID,
		Status:    AttendancePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// SetStatus transitions an existing attendance record to the given status.
func (r *InMemoryAttendanceRepository) SetStatus(eventID, userID string, status AttendanceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(eventID, userID)
	rec, ok := r.records[key]
	if !ok {
		return ErrAttendanceNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now()
	r.records[key] = rec
	return nil
}

// Get retrieves the attendance record for the pair.
func (r *InMemoryAttendanceRepository) Get(eventID, userID string) (*Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[pairKey(eventID, userID)]
	if !ok {
		return nil, ErrAttendanceNotFound
	}
	recCopy := rec
	return &recCopy, nil
}

// ByEvent retrieves all attendance records for an event.
func (r *InMemoryAttendanceRepository) ByEvent(eventID string) ([]Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Attendance
	for _, rec := range r.records {
		if rec.EventID == eventID {
			results = append(results, rec)
		}
	}
	sortAttendance(results)
	return results, nil
}

// ByUser retrieves all attendance records for a user.
func (r *InMemoryAttendanceRepository) ByUser(userID string) ([]Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Attendance
	for _, rec := range r.records {
		if rec.UserID == userID {
			results = append(results, rec)
		}
	}
	sortAttendance(results)
	return results, nil
}

func sortAttendance(records []Attendance) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		if records[i].EventID != records[j].EventID {
			return records[i].EventID < records[j].EventID
		}
		return records[i].UserID < records[j].UserID
	})
}
