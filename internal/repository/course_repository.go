package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

// CourseRepository reads catalog and enrollment rows owned by the course service.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course projection.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, tutor_id, title, status, max_students FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// HasActiveEnrollment reports whether any student is live on the course.
func (r *CourseRepository) HasActiveEnrollment(ctx context.Context, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE course_id = $1 AND status = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, models.EnrollmentStatusStarted); err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return exists, nil
}

// IsStudentEnrolled reports whether the student holds an active enrollment on the course.
func (r *CourseRepository) IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE course_id = $1 AND student_id = $2 AND status = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, studentID, models.EnrollmentStatusStarted); err != nil {
		return false, fmt.Errorf("check student enrollment: %w", err)
	}
	return exists, nil
}

// ListActiveStudentIDs returns students with an active enrollment on the course.
func (r *CourseRepository) ListActiveStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT student_id FROM course_enrollments WHERE course_id = $1 AND status = $2 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID, models.EnrollmentStatusStarted); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return ids, nil
}
