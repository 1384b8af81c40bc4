package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

// SessionRepository persists the session registry.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, course_id, tutor_id, start_time, end_time, title, description, status, meeting_url, created_at, updated_at`

const insertSessionQuery = `INSERT INTO sessions (` + sessionColumns + `)
VALUES (:id, :course_id, :tutor_id, :start_time, :end_time, :title, :description, :status, :meeting_url, :created_at, :updated_at)`

const overlapCountQuery = `SELECT COUNT(1) FROM sessions
WHERE tutor_id = $1 AND status <> 'CANCELLED' AND start_time < $3 AND end_time > $2`

// FindByID fetches a session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOverlapping returns the tutor's non-cancelled sessions intersecting [start, end).
func (r *SessionRepository) FindOverlapping(ctx context.Context, tutorID string, start, end time.Time) ([]models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions
WHERE tutor_id = $1 AND status <> 'CANCELLED' AND start_time < $3 AND end_time > $2
ORDER BY start_time ASC`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, tutorID, start, end); err != nil {
		return nil, fmt.Errorf("find overlapping sessions: %w", err)
	}
	return sessions, nil
}

// CreateExclusive inserts the session while holding a per-tutor advisory lock and
// re-checking overlap, so two writers for the same tutor are serialized.
func (r *SessionRepository) CreateExclusive(ctx context.Context, session *models.Session) (err error) {
	prepareSession(session)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, session.TutorID); err != nil {
		return fmt.Errorf("lock tutor calendar: %w", err)
	}

	var overlapping int
	if err = tx.GetContext(ctx, &overlapping, overlapCountQuery, session.TutorID, session.StartTime, session.EndTime); err != nil {
		return fmt.Errorf("count overlapping sessions: %w", err)
	}
	if overlapping > 0 {
		err = ErrSessionOverlap
		return err
	}

	if _, err = tx.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// ListByCourse returns the course's sessions ascending by start, with their bookings.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.SessionDetail, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE course_id = $1 ORDER BY start_time ASC`
	return r.listWithBookings(ctx, query, courseID)
}

// ListByTutor returns the tutor's sessions ascending by start, with their bookings.
func (r *SessionRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE tutor_id = $1 ORDER BY start_time ASC`
	return r.listWithBookings(ctx, query, tutorID)
}

// ListActiveIDsByCourse returns ids of the course's non-cancelled sessions.
func (r *SessionRepository) ListActiveIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT id FROM sessions WHERE course_id = $1 AND status <> 'CANCELLED' ORDER BY start_time ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course session ids: %w", err)
	}
	return ids, nil
}

func (r *SessionRepository) listWithBookings(ctx context.Context, query string, arg string) ([]models.SessionDetail, error) {
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, arg); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	result := make([]models.SessionDetail, len(sessions))
	if len(sessions) == 0 {
		return result, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		result[i] = models.SessionDetail{Session: s, Bookings: []models.Booking{}}
	}

	const bookingsQuery = `SELECT ` + bookingColumns + ` FROM session_bookings
WHERE session_id = ANY($1) ORDER BY booked_at ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, bookingsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list session bookings: %w", err)
	}

	index := make(map[string]int, len(result))
	for i := range result {
		index[result[i].ID] = i
	}
	for _, b := range bookings {
		if i, ok := index[b.SessionID]; ok {
			result[i].Bookings = append(result[i].Bookings, b)
		}
	}
	return result, nil
}

// Cancel cancels the session's confirmed bookings and then the session in one transaction.
// It returns sql.ErrNoRows when the session is no longer cancellable.
func (r *SessionRepository) Cancel(ctx context.Context, id string, at time.Time) (cancelled int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cancel session tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const sessionQuery = `UPDATE sessions SET status = 'CANCELLED', updated_at = $2
WHERE id = $1 AND status IN ('SCHEDULED', 'IN_PROGRESS')`
	res, err := tx.ExecContext(ctx, sessionQuery, id, at)
	if err != nil {
		return 0, fmt.Errorf("cancel session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel session rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return 0, err
	}

	const bookingsQuery = `UPDATE session_bookings SET status = 'CANCELLED', cancelled_at = $2
WHERE session_id = $1 AND status = 'CONFIRMED'`
	res, err = tx.ExecContext(ctx, bookingsQuery, id, at)
	if err != nil {
		return 0, fmt.Errorf("cancel session bookings: %w", err)
	}
	if cancelled, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("cancel session bookings rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cancel session: %w", err)
	}
	return cancelled, nil
}

// MarkInProgress moves a SCHEDULED session to IN_PROGRESS. It reports whether this call made the transition.
func (r *SessionRepository) MarkInProgress(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE sessions SET status = 'IN_PROGRESS', updated_at = $2 WHERE id = $1 AND status = 'SCHEDULED'`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("mark session in progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark session in progress rows: %w", err)
	}
	return affected > 0, nil
}

// AssignRoom stores room as the session's meeting reference unless one already exists,
// and returns the reference in effect.
func (r *SessionRepository) AssignRoom(ctx context.Context, id, room string) (string, error) {
	const query = `UPDATE sessions SET meeting_url = COALESCE(meeting_url, $2) WHERE id = $1 RETURNING meeting_url`
	var assigned string
	if err := r.db.GetContext(ctx, &assigned, query, id, room); err != nil {
		return "", fmt.Errorf("assign session room: %w", err)
	}
	return assigned, nil
}

func prepareSession(session *models.Session) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.CreatedAt
	}
}
