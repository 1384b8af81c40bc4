package models

import "time"

// SessionStatus enumerates session lifecycle states.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "SCHEDULED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// Cancellable reports whether a session in this state may still be cancelled.
func (s SessionStatus) Cancellable() bool {
	return s == SessionStatusScheduled || s == SessionStatusInProgress
}

// Session is one scheduled block of teaching time owned by a tutor.
type Session struct {
	ID          string        `db:"id" json:"id"`
	CourseID    string        `db:"course_id" json:"courseId"`
	TutorID     string        `db:"tutor_id" json:"tutorId"`
	StartTime   time.Time     `db:"start_time" json:"startTime"`
	EndTime     time.Time     `db:"end_time" json:"endTime"`
	Title       *string       `db:"title" json:"title,omitempty"`
	Description *string       `db:"description" json:"description,omitempty"`
	Status      SessionStatus `db:"status" json:"status"`
	MeetingURL  *string       `db:"meeting_url" json:"meetingUrl,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// SessionDetail embeds the bookings held against a session.
type SessionDetail struct {
	Session
	Bookings []Booking `json:"bookings"`
}

// CreateSessionRequest is the payload for scheduling a session on a draft course.
type CreateSessionRequest struct {
	CourseID    string    `json:"courseId" validate:"required"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string   `json:"description,omitempty"`
}

// DuplicateSessionRequest carries the new interval for a copied session.
type DuplicateSessionRequest struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

// SlotQuery describes a suggested-slots search.
type SlotQuery struct {
	TutorID         string
	CourseID        string
	From            time.Time
	To              time.Time
	DurationMinutes int
	MaxResults      int
}

// Slot is a bookable candidate interval.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
