package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
)

type bookingStore interface {
	CreateGuarded(ctx context.Context, booking *models.Booking, maxStudents *int) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Cancel(ctx context.Context, id string, at time.Time) error
	ListForStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error)
	InsertMany(ctx context.Context, pairs []repository.BookingPair, at time.Time) (int64, error)
}

type bookingSessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	ListActiveIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

// BookingService manages student seats on sessions.
type BookingService struct {
	bookings bookingStore
	sessions bookingSessionReader
	courses  courseReader
	metrics  *MetricsService
	logger   *zap.Logger
	now      Clock
}

// BookingServiceOption configures the service.
type BookingServiceOption func(*BookingService)

// WithBookingClock overrides the clock used for timestamps.
func WithBookingClock(clock Clock) BookingServiceOption {
	return func(s *BookingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithBookingMetrics attaches domain metrics.
func WithBookingMetrics(metrics *MetricsService) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = metrics
	}
}

// NewBookingService constructs the service.
func NewBookingService(bookings bookingStore, sessions bookingSessionReader, courses courseReader, logger *zap.Logger, opts ...BookingServiceOption) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BookingService{bookings: bookings, sessions: sessions, courses: courses, logger: logger, now: systemClock}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Book reserves a seat for the student. Uniqueness and capacity are enforced
// atomically by the store.
func (s *BookingService) Book(ctx context.Context, sessionID, studentID string) (*models.Booking, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if !session.Status.Cancellable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "session is "+string(session.Status))
	}

	var (
		course   *models.Course
		enrolled bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		course, err = s.courses.FindByID(gctx, session.CourseID)
		return err
	})
	g.Go(func() error {
		var err error
		enrolled, err = s.courses.IsStudentEnrolled(gctx, session.CourseID, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if !enrolled {
		s.metrics.RecordBookingAttempt("not_enrolled")
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in this course")
	}

	booking := &models.Booking{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    models.BookingStatusConfirmed,
		BookedAt:  s.now(),
	}
	if err := s.bookings.CreateGuarded(ctx, booking, course.MaxStudents); err != nil {
		switch {
		case isNoRows(err):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		case errors.Is(err, repository.ErrDuplicateBooking):
			s.metrics.RecordBookingAttempt("conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "session already booked by this student")
		case errors.Is(err, repository.ErrCapacityReached):
			s.metrics.RecordBookingAttempt("capacity")
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "session is fully booked")
		default:
			return nil, appErrors.Internal(err, "failed to book session")
		}
	}

	s.metrics.RecordBookingAttempt("confirmed")
	s.logger.Info("session booked",
		zap.String("booking_id", booking.ID),
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
	)
	return booking, nil
}

// Cancel releases the student's seat. Cancellation is terminal for the pair.
func (s *BookingService) Cancel(ctx context.Context, bookingID, studentID string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Internal(err, "failed to load booking")
	}
	if booking.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another student")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "booking is already cancelled")
	}

	at := s.now()
	if err := s.bookings.Cancel(ctx, bookingID, at); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "booking is already cancelled")
		}
		return nil, appErrors.Internal(err, "failed to cancel booking")
	}
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &at

	s.logger.Info("booking cancelled", zap.String("booking_id", bookingID), zap.String("student_id", studentID))
	return booking, nil
}

// ListForStudent returns the student's bookings, newest first.
func (s *BookingService) ListForStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	list, err := s.bookings.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list bookings")
	}
	if list == nil {
		list = []models.BookingDetail{}
	}
	return list, nil
}

// FanOut books every actively enrolled student into every non-cancelled session
// of the course. Existing pairs are skipped, so repeated calls are harmless.
func (s *BookingService) FanOut(ctx context.Context, courseID string) (*models.FanOutResult, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	var students, sessionIDs []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.courses.ListActiveStudentIDs(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		sessionIDs, err = s.sessions.ListActiveIDsByCourse(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Internal(err, "failed to load fan-out targets")
	}

	pairs := make([]repository.BookingPair, 0, len(students)*len(sessionIDs))
	for _, sessionID := range sessionIDs {
		for _, studentID := range students {
			pairs = append(pairs, repository.BookingPair{SessionID: sessionID, StudentID: studentID})
		}
	}
	created, err := s.bookings.InsertMany(ctx, pairs, s.now())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fan out bookings")
	}

	s.metrics.RecordFanOut(created)
	s.logger.Info("bookings fanned out",
		zap.String("course_id", courseID),
		zap.Int("students", len(students)),
		zap.Int("sessions", len(sessionIDs)),
		zap.Int64("created", created),
	)
	return &models.FanOutResult{CourseID: courseID, Created: created}, nil
}
