package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

// RequestRepository persists reschedule and add-session requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const rescheduleColumns = `r.id, r.session_id, r.requested_start_time, r.requested_end_time, r.reason,
       r.requested_by_tutor_id, r.status, r.reviewed_by_admin_id, r.reviewed_at, r.admin_note, r.created_at`

const addSessionColumns = `r.id, r.course_id, r.start_time, r.end_time, r.title, r.description, r.reason,
       r.requested_by_tutor_id, r.status, r.reviewed_by_admin_id, r.reviewed_at, r.admin_note, r.created_at`

// CreateReschedule inserts a PENDING reschedule request.
func (r *RequestRepository) CreateReschedule(ctx context.Context, req *models.RescheduleRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.RequestStatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reschedule_requests
	(id, session_id, requested_start_time, requested_end_time, reason, requested_by_tutor_id, status, created_at)
	VALUES (:id, :session_id, :requested_start_time, :requested_end_time, :reason, :requested_by_tutor_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create reschedule request: %w", err)
	}
	return nil
}

// FindReschedule fetches a reschedule request.
func (r *RequestRepository) FindReschedule(ctx context.Context, id string) (*models.RescheduleRequest, error) {
	const query = `SELECT ` + rescheduleColumns + ` FROM reschedule_requests r WHERE r.id = $1`
	var req models.RescheduleRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRescheduleByTutor returns the tutor's requests newest first.
func (r *RequestRepository) ListRescheduleByTutor(ctx context.Context, tutorID string) ([]models.RescheduleRequestDetail, error) {
	const query = `SELECT ` + rescheduleColumns + `,
       s.start_time AS session_start_time, s.end_time AS session_end_time, s.course_id, c.title AS course_title
FROM reschedule_requests r
JOIN sessions s ON s.id = r.session_id
JOIN courses c ON c.id = s.course_id
WHERE r.requested_by_tutor_id = $1
ORDER BY r.created_at DESC`
	var list []models.RescheduleRequestDetail
	if err := r.db.SelectContext(ctx, &list, query, tutorID); err != nil {
		return nil, fmt.Errorf("list tutor reschedule requests: %w", err)
	}
	return list, nil
}

// ListPendingReschedule returns pending requests oldest first.
func (r *RequestRepository) ListPendingReschedule(ctx context.Context) ([]models.RescheduleRequestDetail, error) {
	const query = `SELECT ` + rescheduleColumns + `,
       s.start_time AS session_start_time, s.end_time AS session_end_time, s.course_id, c.title AS course_title
FROM reschedule_requests r
JOIN sessions s ON s.id = r.session_id
JOIN courses c ON c.id = s.course_id
WHERE r.status = 'PENDING'
ORDER BY r.created_at ASC`
	var list []models.RescheduleRequestDetail
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("list pending reschedule requests: %w", err)
	}
	return list, nil
}

// ReviewReschedule records the decision and, when approved, overwrites the target
// session's times in the same transaction. It returns sql.ErrNoRows when the
// request is missing or no longer pending.
func (r *RequestRepository) ReviewReschedule(ctx context.Context, id string, review models.RequestReview) (req *models.RescheduleRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reschedule review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE reschedule_requests r
SET status = $2, reviewed_by_admin_id = $3, reviewed_at = $4, admin_note = $5
WHERE r.id = $1 AND r.status = 'PENDING'
RETURNING ` + rescheduleColumns
	var updated models.RescheduleRequest
	if err = tx.GetContext(ctx, &updated, updateQuery, id, review.Status, review.AdminID, review.Timestamp, review.Note); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("review reschedule request: %w", err)
	}

	if review.Status == models.RequestStatusApproved {
		const sessionQuery = `UPDATE sessions SET start_time = $2, end_time = $3, updated_at = $4 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, sessionQuery, updated.SessionID, updated.RequestedStartTime, updated.RequestedEndTime, review.Timestamp); err != nil {
			return nil, fmt.Errorf("apply reschedule: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reschedule review: %w", err)
	}
	return &updated, nil
}

// CreateAddSession inserts a PENDING add-session request.
func (r *RequestRepository) CreateAddSession(ctx context.Context, req *models.AddSessionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.RequestStatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO add_session_requests
	(id, course_id, start_time, end_time, title, description, reason, requested_by_tutor_id, status, created_at)
	VALUES (:id, :course_id, :start_time, :end_time, :title, :description, :reason, :requested_by_tutor_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create add-session request: %w", err)
	}
	return nil
}

// FindAddSession fetches an add-session request.
func (r *RequestRepository) FindAddSession(ctx context.Context, id string) (*models.AddSessionRequest, error) {
	const query = `SELECT ` + addSessionColumns + ` FROM add_session_requests r WHERE r.id = $1`
	var req models.AddSessionRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListAddSessionByTutor returns the tutor's requests newest first.
func (r *RequestRepository) ListAddSessionByTutor(ctx context.Context, tutorID string) ([]models.AddSessionRequestDetail, error) {
	const query = `SELECT ` + addSessionColumns + `, c.title AS course_title
FROM add_session_requests r
JOIN courses c ON c.id = r.course_id
WHERE r.requested_by_tutor_id = $1
ORDER BY r.created_at DESC`
	var list []models.AddSessionRequestDetail
	if err := r.db.SelectContext(ctx, &list, query, tutorID); err != nil {
		return nil, fmt.Errorf("list tutor add-session requests: %w", err)
	}
	return list, nil
}

// ListPendingAddSession returns pending requests oldest first.
func (r *RequestRepository) ListPendingAddSession(ctx context.Context) ([]models.AddSessionRequestDetail, error) {
	const query = `SELECT ` + addSessionColumns + `, c.title AS course_title
FROM add_session_requests r
JOIN courses c ON c.id = r.course_id
WHERE r.status = 'PENDING'
ORDER BY r.created_at ASC`
	var list []models.AddSessionRequestDetail
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("list pending add-session requests: %w", err)
	}
	return list, nil
}

// ReviewAddSession records the decision and, when approved, inserts session in the
// same transaction. It returns sql.ErrNoRows when the request is missing or no longer pending.
func (r *RequestRepository) ReviewAddSession(ctx context.Context, id string, review models.RequestReview, session *models.Session) (req *models.AddSessionRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add-session review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE add_session_requests r
SET status = $2, reviewed_by_admin_id = $3, reviewed_at = $4, admin_note = $5
WHERE r.id = $1 AND r.status = 'PENDING'
RETURNING ` + addSessionColumns
	var updated models.AddSessionRequest
	if err = tx.GetContext(ctx, &updated, updateQuery, id, review.Status, review.AdminID, review.Timestamp, review.Note); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("review add-session request: %w", err)
	}

	if review.Status == models.RequestStatusApproved && session != nil {
		session.CourseID = updated.CourseID
		session.StartTime = updated.StartTime
		session.EndTime = updated.EndTime
		session.Title = updated.Title
		session.Description = updated.Description
		session.CreatedAt = review.Timestamp
		session.UpdatedAt = review.Timestamp
		prepareSession(session)
		if _, err = tx.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
			return nil, fmt.Errorf("create approved session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add-session review: %w", err)
	}
	return &updated, nil
}
