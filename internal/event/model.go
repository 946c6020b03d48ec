// Package event provides models and repositories for events and their
// engagement records (likes and attendance).
package event

import "time"

// Visibility controls who can discover an event.
type Visibility string

const (
	// VisibilityPublic events appear in discovery feeds for everyone.
	VisibilityPublic Visibility = "public"

	// VisibilityPrivate events are only visible to their creator and
	// users with an attendance record.
	VisibilityPrivate Visibility = "private"
)

// Type distinguishes in-person gatherings from online ones.
type Type string

const (
	TypeInPerson Type = "in-person"
	TypeOnline   Type = "online"
)

// Event represents a scheduled event created by a user.
// Tags are free-form lowercase strings; duplicates may exist in stored data
// and must be deduplicated before any set arithmetic.
type Event struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	EventType   Type       `json:"event_type"`
	Visibility  Visibility `json:"visibility"`
	Location    *string    `json:"location,omitempty"`
	OnlineLink  *string    `json:"online_link,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	EventDate   time.Time  `json:"event_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Like records that a user liked an event. Unique per (event, user) pair.
type Like struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceStatus is the lifecycle state of an attendance request.
type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceApproved AttendanceStatus = "approved"
	AttendanceDeclined AttendanceStatus = "declined"
)

// Attendance records a user's request to attend an event.
// Only approved records count toward an event's attendee count.
type Attendance struct {
	EventID   string           `json:"event_id"`
	UserID    string           `json:"user_id"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// VisibleTo reports whether the event may be shown to the given viewer
// when no row-level access control sits beneath this process. Public events
// are visible to everyone; private events only to the creator and users
// holding an attendance record (checked by the caller).
func (e *Event) VisibleTo(viewerID string) bool {
	if e.Visibility == VisibilityPublic {
		return true
	}
	return viewerID != "" && e.CreatorID == viewerID
}
