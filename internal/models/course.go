package models

// CourseStatus mirrors the catalog lifecycle.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// EnrollmentStatusStarted marks an enrollment whose student is live on the course.
const EnrollmentStatusStarted = "STARTED"

// Course is the read-only catalog projection used for scheduling decisions.
type Course struct {
	ID          string       `db:"id" json:"id"`
	TutorID     string       `db:"tutor_id" json:"tutorId"`
	Title       string       `db:"title" json:"title"`
	Status      CourseStatus `db:"status" json:"status"`
	MaxStudents *int         `db:"max_students" json:"maxStudents,omitempty"`
}

// Tutor is the read-only tutor profile projection.
type Tutor struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Timezone *string `db:"timezone" json:"timezone,omitempty"`
}

// Participant is the display identity of a user joining a room.
type Participant struct {
	ID       string  `db:"id" json:"id"`
	FullName *string `db:"full_name" json:"fullName,omitempty"`
	Email    string  `db:"email" json:"email"`
}

// DisplayName prefers the full name and falls back to the email.
func (p Participant) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}
