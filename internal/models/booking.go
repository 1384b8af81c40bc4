package models

import "time"

// BookingStatus enumerates seat states.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a student's claim on a seat in a session.
type Booking struct {
	ID          string        `db:"id" json:"id"`
	SessionID   string        `db:"session_id" json:"sessionId"`
	StudentID   string        `db:"student_id" json:"studentId"`
	Status      BookingStatus `db:"status" json:"status"`
	BookedAt    time.Time     `db:"booked_at" json:"bookedAt"`
	CancelledAt *time.Time    `db:"cancelled_at" json:"cancelledAt,omitempty"`
}

// BookingDetail joins a booking with its session and course title.
type BookingDetail struct {
	Booking
	Session     BookingSession `db:"session" json:"session"`
	CourseTitle string         `db:"course_title" json:"courseTitle"`
}

// BookingSession is the session summary embedded in a student's booking list.
type BookingSession struct {
	CourseID  string        `db:"course_id" json:"courseId"`
	TutorID   string        `db:"tutor_id" json:"tutorId"`
	StartTime time.Time     `db:"start_time" json:"startTime"`
	EndTime   time.Time     `db:"end_time" json:"endTime"`
	Title     *string       `db:"title" json:"title,omitempty"`
	Status    SessionStatus `db:"status" json:"status"`
}

// FanOutResult reports how many seats a fan-out created.
type FanOutResult struct {
	CourseID string `json:"courseId"`
	Created  int64  `json:"created"`
}
