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

// BookingRepository persists the booking ledger.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, session_id, student_id, status, booked_at, cancelled_at`

// BookingPair identifies one seat to create during fan-out.
type BookingPair struct {
	SessionID string
	StudentID string
}

// CreateGuarded inserts a CONFIRMED booking after locking the session row and
// re-checking pair uniqueness and capacity. maxStudents nil means unlimited.
func (r *BookingRepository) CreateGuarded(ctx context.Context, booking *models.Booking, maxStudents *int) (err error) {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusConfirmed
	}
	if booking.BookedAt.IsZero() {
		booking.BookedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM sessions WHERE id = $1 FOR UPDATE`, booking.SessionID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock session: %w", err)
	}

	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM session_bookings WHERE session_id = $1 AND student_id = $2)`
	if err = tx.GetContext(ctx, &exists, existsQuery, booking.SessionID, booking.StudentID); err != nil {
		return fmt.Errorf("check existing booking: %w", err)
	}
	if exists {
		err = ErrDuplicateBooking
		return err
	}

	if maxStudents != nil {
		var confirmed int
		const countQuery = `SELECT COUNT(1) FROM session_bookings WHERE session_id = $1 AND status = 'CONFIRMED'`
		if err = tx.GetContext(ctx, &confirmed, countQuery, booking.SessionID); err != nil {
			return fmt.Errorf("count confirmed bookings: %w", err)
		}
		if confirmed >= *maxStudents {
			err = ErrCapacityReached
			return err
		}
	}

	const insertQuery = `INSERT INTO session_bookings (` + bookingColumns + `)
VALUES (:id, :session_id, :student_id, :status, :booked_at, :cancelled_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, booking); err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateBooking
			return err
		}
		return fmt.Errorf("create booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// FindByID fetches a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM session_bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByPair fetches the booking a student holds for a session.
func (r *BookingRepository) FindByPair(ctx context.Context, sessionID, studentID string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM session_bookings WHERE session_id = $1 AND student_id = $2`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, sessionID, studentID); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Cancel marks a confirmed booking CANCELLED. It returns sql.ErrNoRows when it was not confirmed.
func (r *BookingRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE session_bookings SET status = 'CANCELLED', cancelled_at = $2 WHERE id = $1 AND status = 'CONFIRMED'`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel booking rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForStudent returns the student's bookings newest first, joined with session and course title.
func (r *BookingRepository) ListForStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	const query = `SELECT b.id, b.session_id, b.student_id, b.status, b.booked_at, b.cancelled_at,
       s.course_id AS "session.course_id", s.tutor_id AS "session.tutor_id",
       s.start_time AS "session.start_time", s.end_time AS "session.end_time",
       s.title AS "session.title", s.status AS "session.status",
       c.title AS course_title
FROM session_bookings b
JOIN sessions s ON s.id = b.session_id
JOIN courses c ON c.id = s.course_id
WHERE b.student_id = $1
ORDER BY b.booked_at DESC`
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, studentID); err != nil {
		return nil, fmt.Errorf("list student bookings: %w", err)
	}
	return bookings, nil
}

// InsertMany creates CONFIRMED bookings for the pairs in one statement, skipping
// pairs that already exist. It returns the number of rows created.
func (r *BookingRepository) InsertMany(ctx context.Context, pairs []BookingPair, at time.Time) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(pairs))
	sessionIDs := make([]string, len(pairs))
	studentIDs := make([]string, len(pairs))
	for i, pair := range pairs {
		ids[i] = uuid.NewString()
		sessionIDs[i] = pair.SessionID
		studentIDs[i] = pair.StudentID
	}

	const query = `INSERT INTO session_bookings (id, session_id, student_id, status, booked_at)
SELECT t.id, t.session_id, t.student_id, 'CONFIRMED', $4
FROM unnest($1::uuid[], $2::uuid[], $3::uuid[]) AS t(id, session_id, student_id)
ON CONFLICT (session_id, student_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids), pq.Array(sessionIDs), pq.Array(studentIDs), at)
	if err != nil {
		return 0, fmt.Errorf("fan-out bookings: %w", err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fan-out booking rows: %w", err)
	}
	return created, nil
}
