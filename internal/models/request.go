package models

import "time"

// RequestStatus captures workflow states for tutor change requests.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// RequestReview records an admin decision.
type RequestReview struct {
	Status    RequestStatus
	AdminID   string
	Note      *string
	Timestamp time.Time
}

// RescheduleRequest proposes new times for an existing session.
type RescheduleRequest struct {
	ID                 string        `db:"id" json:"id"`
	SessionID          string        `db:"session_id" json:"sessionId"`
	RequestedStartTime time.Time     `db:"requested_start_time" json:"requestedStartTime"`
	RequestedEndTime   time.Time     `db:"requested_end_time" json:"requestedEndTime"`
	Reason             string        `db:"reason" json:"reason"`
	RequestedByTutorID string        `db:"requested_by_tutor_id" json:"requestedByTutorId"`
	Status             RequestStatus `db:"status" json:"status"`
	ReviewedByAdminID  *string       `db:"reviewed_by_admin_id" json:"reviewedByAdminId,omitempty"`
	ReviewedAt         *time.Time    `db:"reviewed_at" json:"reviewedAt,omitempty"`
	AdminNote          *string       `db:"admin_note" json:"adminNote,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
}

// RescheduleRequestDetail joins the target session and its course title.
type RescheduleRequestDetail struct {
	RescheduleRequest
	SessionStartTime time.Time `db:"session_start_time" json:"sessionStartTime"`
	SessionEndTime   time.Time `db:"session_end_time" json:"sessionEndTime"`
	CourseID         string    `db:"course_id" json:"courseId"`
	CourseTitle      string    `db:"course_title" json:"courseTitle"`
}

// AddSessionRequest proposes a new session on a published course.
type AddSessionRequest struct {
	ID                 string        `db:"id" json:"id"`
	CourseID           string        `db:"course_id" json:"courseId"`
	StartTime          time.Time     `db:"start_time" json:"startTime"`
	EndTime            time.Time     `db:"end_time" json:"endTime"`
	Title              *string       `db:"title" json:"title,omitempty"`
	Description        *string       `db:"description" json:"description,omitempty"`
	Reason             string        `db:"reason" json:"reason"`
	RequestedByTutorID string        `db:"requested_by_tutor_id" json:"requestedByTutorId"`
	Status             RequestStatus `db:"status" json:"status"`
	ReviewedByAdminID  *string       `db:"reviewed_by_admin_id" json:"reviewedByAdminId,omitempty"`
	ReviewedAt         *time.Time    `db:"reviewed_at" json:"reviewedAt,omitempty"`
	AdminNote          *string       `db:"admin_note" json:"adminNote,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
}

// AddSessionRequestDetail joins the course title.
type AddSessionRequestDetail struct {
	AddSessionRequest
	CourseTitle string `db:"course_title" json:"courseTitle"`
}

// CreateRescheduleRequest is the tutor payload for proposing new times.
type CreateRescheduleRequest struct {
	SessionID          string    `json:"sessionId" validate:"required"`
	RequestedStartTime time.Time `json:"requestedStartTime" validate:"required"`
	RequestedEndTime   time.Time `json:"requestedEndTime" validate:"required"`
	Reason             string    `json:"reason" validate:"required,min=10"`
}

// CreateAddSessionRequest is the tutor payload for proposing an extra session.
type CreateAddSessionRequest struct {
	CourseID    string    `json:"courseId" validate:"required"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string   `json:"description,omitempty"`
	Reason      string    `json:"reason" validate:"required,min=10"`
}

// ReviewRequest is the admin decision payload.
type ReviewRequest struct {
	Status    RequestStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	AdminNote *string       `json:"adminNote,omitempty" validate:"omitempty,max=1000"`
}
