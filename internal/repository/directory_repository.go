package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

// DirectoryRepository reads tutor profiles and user display data.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindTutor fetches the tutor profile, keyed by the tutor's user id.
func (r *DirectoryRepository) FindTutor(ctx context.Context, tutorID string) (*models.Tutor, error) {
	const query = `SELECT id, name, timezone FROM tutors WHERE id = $1`
	var tutor models.Tutor
	if err := r.db.GetContext(ctx, &tutor, query, tutorID); err != nil {
		return nil, err
	}
	return &tutor, nil
}

// FindParticipant fetches the user's display identity.
func (r *DirectoryRepository) FindParticipant(ctx context.Context, userID string) (*models.Participant, error) {
	const query = `SELECT id, full_name, email FROM users WHERE id = $1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, query, userID); err != nil {
		return nil, err
	}
	return &participant, nil
}
