package models

import "time"

// RoomRole identifies how a caller participates in a live session.
type RoomRole string

const (
	RoomRoleTutor   RoomRole = "tutor"
	RoomRoleStudent RoomRole = "student"
)

// RoomParticipant describes the caller in a room authorization.
type RoomParticipant struct {
	Role RoomRole `json:"role"`
	Name string   `json:"name"`
}

// RoomSession summarises the session being joined.
type RoomSession struct {
	ID        string        `json:"id"`
	Title     *string       `json:"title,omitempty"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Status    SessionStatus `json:"status"`
}

// RoomAccess is the result of a successful join authorization.
type RoomAccess struct {
	Token       string          `json:"token"`
	URL         string          `json:"url"`
	RoomName    string          `json:"roomName"`
	Participant RoomParticipant `json:"participant"`
	Session     RoomSession     `json:"session"`
}

// CalendarExport is a rendered tutor calendar document.
type CalendarExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
