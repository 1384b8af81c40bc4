package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrSessionOverlap is returned when an exclusive insert finds a non-cancelled session in the same interval.
	ErrSessionOverlap = errors.New("tutor already has a session in this interval")
	// ErrDuplicateBooking is returned when the student already holds a row for the session.
	ErrDuplicateBooking = errors.New("booking already exists for session and student")
	// ErrCapacityReached is returned when confirmed bookings have reached the course limit.
	ErrCapacityReached = errors.New("session capacity reached")
)

const (
	pqUniqueViolation           = "23505"
	pqInvalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// IsMalformedID reports whether Postgres refused an identifier it could not
// parse as a UUID. No row can carry such an id.
func IsMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}
