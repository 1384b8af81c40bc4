package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
)

type sessionStore interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindOverlapping(ctx context.Context, tutorID string, start, end time.Time) ([]models.Session, error)
	CreateExclusive(ctx context.Context, session *models.Session) error
	ListByCourse(ctx context.Context, courseID string) ([]models.SessionDetail, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error)
	Cancel(ctx context.Context, id string, at time.Time) (int64, error)
}

// SessionService owns the session registry and its conflict rules.
type SessionService struct {
	sessions     sessionStore
	courses      courseReader
	availability availabilityLister
	zones        *zoneResolver
	invalidator  SlotInvalidator
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          Clock
}

// SessionServiceOption configures the service.
type SessionServiceOption func(*SessionService)

// WithSessionClock overrides the clock used for past-start checks.
func WithSessionClock(clock Clock) SessionServiceOption {
	return func(s *SessionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSessionSlotInvalidator sets the cache invalidation hook for mutations.
func WithSessionSlotInvalidator(invalidator SlotInvalidator) SessionServiceOption {
	return func(s *SessionService) {
		if invalidator != nil {
			s.invalidator = invalidator
		}
	}
}

// WithSessionMetrics attaches domain counters.
func WithSessionMetrics(metrics *MetricsService) SessionServiceOption {
	return func(s *SessionService) {
		s.metrics = metrics
	}
}

// NewSessionService constructs the service. defaultTimezone applies to tutors without one.
func NewSessionService(
	sessions sessionStore,
	courses courseReader,
	availability availabilityLister,
	tutors tutorLocator,
	defaultTimezone string,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...SessionServiceOption,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &SessionService{
		sessions:     sessions,
		courses:      courses,
		availability: availability,
		zones:        &zoneResolver{tutors: tutors, fallback: defaultTimezone, logger: logger},
		invalidator:  noopInvalidator{},
		validator:    validate,
		logger:       logger,
		now:          systemClock,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create schedules a session on a draft course owned by the tutor.
func (s *SessionService) Create(ctx context.Context, tutorID string, req models.CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	return s.create(ctx, tutorID, req.CourseID, req.StartTime, req.EndTime, req.Title, req.Description)
}

// Duplicate copies a session's course, title and description to a new interval.
// Bookings are not copied.
func (s *SessionService) Duplicate(ctx context.Context, sessionID, tutorID string, req models.DuplicateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid duplicate payload")
	}
	source, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if source.TutorID != tutorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another tutor")
	}
	return s.create(ctx, tutorID, source.CourseID, req.StartTime, req.EndTime, source.Title, source.Description)
}

func (s *SessionService) create(ctx context.Context, tutorID, courseID string, start, end time.Time, title, description *string) (*models.Session, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if err != nil || course.TutorID != tutorID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if course.Status != models.CourseStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "sessions can only be added directly while the course is a draft; submit an add-session request instead")
	}

	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "startTime must be before endTime")
	}
	if start.Before(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "startTime must not be in the past")
	}

	existing, err := s.sessions.FindOverlapping(ctx, tutorID, start, end)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check session conflicts")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "tutor already has a session in this time range")
	}

	if err := s.checkAvailability(ctx, tutorID, start, end); err != nil {
		return nil, err
	}

	session := &models.Session{
		CourseID:    course.ID,
		TutorID:     tutorID,
		StartTime:   start,
		EndTime:     end,
		Title:       title,
		Description: description,
		Status:      models.SessionStatusScheduled,
	}
	if err := s.sessions.CreateExclusive(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionOverlap) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "tutor already has a session in this time range")
		}
		return nil, appErrors.Internal(err, "failed to create session")
	}

	s.invalidator.InvalidateTutor(ctx, tutorID)
	s.metrics.RecordSessionCreated()
	s.logger.Info("session scheduled",
		zap.String("session_id", session.ID),
		zap.String("course_id", session.CourseID),
		zap.String("tutor_id", tutorID),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return session, nil
}

// checkAvailability enforces window containment. A tutor with no active windows is unconstrained.
func (s *SessionService) checkAvailability(ctx context.Context, tutorID string, start, end time.Time) error {
	windows, err := s.availability.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return appErrors.Internal(err, "failed to load availability")
	}
	if len(windows) == 0 {
		return nil
	}
	loc, err := s.zones.locate(ctx, tutorID)
	if err != nil {
		return err
	}
	if !withinAvailability(windows, start, end, loc) {
		return appErrors.Clone(appErrors.ErrOutsideAvailability, "session is outside the tutor's availability")
	}
	return nil
}

// Cancel cancels a session and its confirmed bookings.
func (s *SessionService) Cancel(ctx context.Context, sessionID, tutorID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Internal(err, "failed to load session")
	}
	if session.TutorID != tutorID {
		return appErrors.Clone(appErrors.ErrForbidden, "session belongs to another tutor")
	}
	if !session.Status.Cancellable() {
		return appErrors.Clone(appErrors.ErrInvalidState, "session is already "+string(session.Status))
	}
	active, err := s.courses.HasActiveEnrollment(ctx, session.CourseID)
	if err != nil {
		return appErrors.Internal(err, "failed to check enrollments")
	}
	if active {
		return appErrors.Clone(appErrors.ErrConflict, "course has active enrollment; submit a reschedule request instead")
	}

	cascaded, err := s.sessions.Cancel(ctx, sessionID, s.now())
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrInvalidState, "session can no longer be cancelled")
		}
		return appErrors.Internal(err, "failed to cancel session")
	}

	s.invalidator.InvalidateTutor(ctx, tutorID)
	s.metrics.RecordSessionCancelled(cascaded)
	s.logger.Info("session cancelled",
		zap.String("session_id", sessionID),
		zap.String("tutor_id", tutorID),
		zap.Int64("bookings_cancelled", cascaded),
	)
	return nil
}

// ListByCourse returns the course's sessions with bookings, earliest first.
func (s *SessionService) ListByCourse(ctx context.Context, courseID string) ([]models.SessionDetail, error) {
	list, err := s.sessions.ListByCourse(ctx, courseID)
	if err != nil {
		if isNoRows(err) {
			return []models.SessionDetail{}, nil
		}
		return nil, appErrors.Internal(err, "failed to list course sessions")
	}
	return list, nil
}

// ListByTutor returns the tutor's sessions with bookings, earliest first.
func (s *SessionService) ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error) {
	list, err := s.sessions.ListByTutor(ctx, tutorID)
	if err != nil {
		if isNoRows(err) {
			return []models.SessionDetail{}, nil
		}
		return nil, appErrors.Internal(err, "failed to list tutor sessions")
	}
	return list, nil
}
