package models

import (
	"time"

	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

// Availability is a recurring weekly window declared by a tutor in their local time.
type Availability struct {
	ID          string               `db:"id" json:"id"`
	TutorID     string               `db:"tutor_id" json:"tutorId"`
	DayOfWeek   timewindow.DayOfWeek `db:"day_of_week" json:"dayOfWeek"`
	StartTime   string               `db:"start_time" json:"startTime"`
	EndTime     string               `db:"end_time" json:"endTime"`
	IsAvailable bool                 `db:"is_available" json:"isAvailable"`
	CreatedAt   time.Time            `db:"created_at" json:"createdAt"`
}

// CreateAvailabilityRequest is the payload for declaring a window.
type CreateAvailabilityRequest struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}
