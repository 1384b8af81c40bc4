package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

type availabilityStore interface {
	Create(ctx context.Context, window *models.Availability) error
	ListActiveByTutor(ctx context.Context, tutorID string) ([]models.Availability, error)
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	Delete(ctx context.Context, id string) error
}

// AvailabilityService manages tutors' recurring weekly windows.
type AvailabilityService struct {
	repo        availabilityStore
	invalidator SlotInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo availabilityStore, invalidator SlotInvalidator, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &AvailabilityService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// Create declares a window. Overlapping windows are accepted as-is.
func (s *AvailabilityService) Create(ctx context.Context, tutorID string, req models.CreateAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability payload")
	}
	day, err := timewindow.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return nil, validationError(err, "invalid day of week")
	}
	start, err := timewindow.ParseClock(req.StartTime)
	if err != nil {
		return nil, validationError(err, "startTime must be HH:mm")
	}
	end, err := timewindow.ParseClock(req.EndTime)
	if err != nil {
		return nil, validationError(err, "endTime must be HH:mm")
	}
	if timewindow.TimeLE(end, start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "startTime must be before endTime")
	}

	window := &models.Availability{
		TutorID:     tutorID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}
	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Internal(err, "failed to create availability")
	}
	s.invalidator.InvalidateTutor(ctx, tutorID)
	s.logger.Info("availability created",
		zap.String("tutor_id", tutorID),
		zap.String("window_id", window.ID),
		zap.String("day", string(day)),
		zap.String("start", start),
		zap.String("end", end),
	)
	return window, nil
}

// ListActive returns the tutor's active windows, Monday first.
func (s *AvailabilityService) ListActive(ctx context.Context, tutorID string) ([]models.Availability, error) {
	windows, err := s.repo.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list availability")
	}
	if windows == nil {
		windows = []models.Availability{}
	}
	return windows, nil
}

// Delete removes a window owned by the tutor.
func (s *AvailabilityService) Delete(ctx context.Context, windowID, tutorID string) error {
	window, err := s.repo.FindByID(ctx, windowID)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return appErrors.Internal(err, "failed to load availability")
	}
	if window.TutorID != tutorID {
		return appErrors.Clone(appErrors.ErrForbidden, "availability belongs to another tutor")
	}
	if err := s.repo.Delete(ctx, windowID); err != nil {
		return appErrors.Internal(err, "failed to delete availability")
	}
	s.invalidator.InvalidateTutor(ctx, tutorID)
	s.logger.Info("availability deleted", zap.String("tutor_id", tutorID), zap.String("window_id", windowID))
	return nil
}
