package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

// AvailabilityRepository persists tutor weekly windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = `id, tutor_id, day_of_week, start_time, end_time, is_available, created_at`

// Create inserts a new window.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.Availability) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	if window.CreatedAt.IsZero() {
		window.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tutor_availability (` + availabilityColumns + `)
VALUES (:id, :tutor_id, :day_of_week, :start_time, :end_time, :is_available, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// ListActiveByTutor returns the tutor's active windows ordered Monday first, then by start time.
func (r *AvailabilityRepository) ListActiveByTutor(ctx context.Context, tutorID string) ([]models.Availability, error) {
	const query = `SELECT ` + availabilityColumns + ` FROM tutor_availability
WHERE tutor_id = $1 AND is_available = TRUE
ORDER BY array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY'], day_of_week), start_time`
	var windows []models.Availability
	if err := r.db.SelectContext(ctx, &windows, query, tutorID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return windows, nil
}

// FindByID fetches a window regardless of owner.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	const query = `SELECT ` + availabilityColumns + ` FROM tutor_availability WHERE id = $1`
	var window models.Availability
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// Delete removes a window.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tutor_availability WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}
