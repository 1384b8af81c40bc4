package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
)

const (
	requestKindReschedule = "reschedule"
	requestKindAddSession = "add_session"
)

type requestStore interface {
	CreateReschedule(ctx context.Context, req *models.RescheduleRequest) error
	ListRescheduleByTutor(ctx context.Context, tutorID string) ([]models.RescheduleRequestDetail, error)
	ListPendingReschedule(ctx context.Context) ([]models.RescheduleRequestDetail, error)
	ReviewReschedule(ctx context.Context, id string, review models.RequestReview) (*models.RescheduleRequest, error)
	CreateAddSession(ctx context.Context, req *models.AddSessionRequest) error
	FindAddSession(ctx context.Context, id string) (*models.AddSessionRequest, error)
	ListAddSessionByTutor(ctx context.Context, tutorID string) ([]models.AddSessionRequestDetail, error)
	ListPendingAddSession(ctx context.Context) ([]models.AddSessionRequestDetail, error)
	ReviewAddSession(ctx context.Context, id string, review models.RequestReview, session *models.Session) (*models.AddSessionRequest, error)
}

type requestSessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindOverlapping(ctx context.Context, tutorID string, start, end time.Time) ([]models.Session, error)
}

type bookingFanOut interface {
	FanOut(ctx context.Context, courseID string) (*models.FanOutResult, error)
}

// RequestService runs the tutor-proposes, admin-decides workflow for published courses.
type RequestService struct {
	requests    requestStore
	sessions    requestSessionReader
	courses     courseReader
	fanOut      bookingFanOut
	invalidator SlotInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         Clock
}

// RequestServiceOption configures the service.
type RequestServiceOption func(*RequestService)

// WithRequestClock overrides the review timestamp clock.
func WithRequestClock(clock Clock) RequestServiceOption {
	return func(s *RequestService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRequestSlotInvalidator sets the cache invalidation hook for approvals.
func WithRequestSlotInvalidator(invalidator SlotInvalidator) RequestServiceOption {
	return func(s *RequestService) {
		if invalidator != nil {
			s.invalidator = invalidator
		}
	}
}

// WithRequestMetrics attaches domain metrics.
func WithRequestMetrics(metrics *MetricsService) RequestServiceOption {
	return func(s *RequestService) {
		s.metrics = metrics
	}
}

// NewRequestService constructs the service.
func NewRequestService(requests requestStore, sessions requestSessionReader, courses courseReader, fanOut bookingFanOut, validate *validator.Validate, logger *zap.Logger, opts ...RequestServiceOption) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &RequestService{
		requests:    requests,
		sessions:    sessions,
		courses:     courses,
		fanOut:      fanOut,
		invalidator: noopInvalidator{},
		validator:   validate,
		logger:      logger,
		now:         systemClock,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// SubmitReschedule records a tutor's proposal to move a session on a live course.
func (s *RequestService) SubmitReschedule(ctx context.Context, tutorID string, payload models.CreateRescheduleRequest) (*models.RescheduleRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, validationError(err, "invalid reschedule request payload")
	}
	session, err := s.sessions.FindByID(ctx, payload.SessionID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if err != nil || session.TutorID != tutorID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if !session.Status.Cancellable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "session is "+string(session.Status))
	}
	course, err := s.courses.FindByID(ctx, session.CourseID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if err := s.requireLiveCourse(ctx, course); err != nil {
		return nil, err
	}
	if !payload.RequestedStartTime.Before(payload.RequestedEndTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "requestedStartTime must be before requestedEndTime")
	}

	req := &models.RescheduleRequest{
		SessionID:          session.ID,
		RequestedStartTime: payload.RequestedStartTime.UTC(),
		RequestedEndTime:   payload.RequestedEndTime.UTC(),
		Reason:             payload.Reason,
		RequestedByTutorID: tutorID,
		CreatedAt:          s.now(),
	}
	if err := s.requests.CreateReschedule(ctx, req); err != nil {
		return nil, appErrors.Internal(err, "failed to create reschedule request")
	}
	s.metrics.RecordRequestSubmitted(requestKindReschedule)
	s.logger.Info("reschedule requested", zap.String("request_id", req.ID), zap.String("session_id", req.SessionID), zap.String("tutor_id", tutorID))
	return req, nil
}

// SubmitAddSession records a tutor's proposal for an extra session on a live course.
func (s *RequestService) SubmitAddSession(ctx context.Context, tutorID string, payload models.CreateAddSessionRequest) (*models.AddSessionRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, validationError(err, "invalid add-session request payload")
	}
	course, err := s.courses.FindByID(ctx, payload.CourseID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if err != nil || course.TutorID != tutorID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if err := s.requireLiveCourse(ctx, course); err != nil {
		return nil, err
	}
	if !payload.StartTime.Before(payload.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "startTime must be before endTime")
	}

	req := &models.AddSessionRequest{
		CourseID:           course.ID,
		StartTime:          payload.StartTime.UTC(),
		EndTime:            payload.EndTime.UTC(),
		Title:              payload.Title,
		Description:        payload.Description,
		Reason:             payload.Reason,
		RequestedByTutorID: tutorID,
		CreatedAt:          s.now(),
	}
	if err := s.requests.CreateAddSession(ctx, req); err != nil {
		return nil, appErrors.Internal(err, "failed to create add-session request")
	}
	s.metrics.RecordRequestSubmitted(requestKindAddSession)
	s.logger.Info("add-session requested", zap.String("request_id", req.ID), zap.String("course_id", req.CourseID), zap.String("tutor_id", tutorID))
	return req, nil
}

// requireLiveCourse rejects courses that are not published or have no active students;
// those are edited directly instead.
func (s *RequestService) requireLiveCourse(ctx context.Context, course *models.Course) error {
	if course.Status != models.CourseStatusPublished {
		return appErrors.Clone(appErrors.ErrInvalidState, "requests are only accepted for published courses")
	}
	active, err := s.courses.HasActiveEnrollment(ctx, course.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to check enrollments")
	}
	if !active {
		return appErrors.Clone(appErrors.ErrInvalidState, "course has no active enrollment; edit the session directly")
	}
	return nil
}

// ListRescheduleForTutor returns the tutor's reschedule requests, newest first.
func (s *RequestService) ListRescheduleForTutor(ctx context.Context, tutorID string) ([]models.RescheduleRequestDetail, error) {
	list, err := s.requests.ListRescheduleByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list reschedule requests")
	}
	if list == nil {
		list = []models.RescheduleRequestDetail{}
	}
	return list, nil
}

// ListPendingReschedule returns reschedule requests awaiting review, oldest first.
func (s *RequestService) ListPendingReschedule(ctx context.Context) ([]models.RescheduleRequestDetail, error) {
	list, err := s.requests.ListPendingReschedule(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pending reschedule requests")
	}
	if list == nil {
		list = []models.RescheduleRequestDetail{}
	}
	return list, nil
}

// ListAddSessionForTutor returns the tutor's add-session requests, newest first.
func (s *RequestService) ListAddSessionForTutor(ctx context.Context, tutorID string) ([]models.AddSessionRequestDetail, error) {
	list, err := s.requests.ListAddSessionByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list add-session requests")
	}
	if list == nil {
		list = []models.AddSessionRequestDetail{}
	}
	return list, nil
}

// ListPendingAddSession returns add-session requests awaiting review, oldest first.
func (s *RequestService) ListPendingAddSession(ctx context.Context) ([]models.AddSessionRequestDetail, error) {
	list, err := s.requests.ListPendingAddSession(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pending add-session requests")
	}
	if list == nil {
		list = []models.AddSessionRequestDetail{}
	}
	return list, nil
}

// ReviewReschedule approves or rejects a pending reschedule. Approval overwrites the
// session's times without re-running conflict or availability checks.
func (s *RequestService) ReviewReschedule(ctx context.Context, requestID, adminID string, payload models.ReviewRequest) (*models.RescheduleRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, validationError(err, "invalid review payload")
	}
	review := models.RequestReview{Status: payload.Status, AdminID: adminID, Note: payload.AdminNote, Timestamp: s.now()}
	req, err := s.requests.ReviewReschedule(ctx, requestID, review)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found or already reviewed")
		}
		return nil, appErrors.Internal(err, "failed to review reschedule request")
	}

	s.metrics.RecordRequestReviewed(requestKindReschedule, string(req.Status))
	s.logger.Info("reschedule request reviewed",
		zap.String("request_id", req.ID),
		zap.String("session_id", req.SessionID),
		zap.String("status", string(req.Status)),
		zap.String("admin_id", adminID),
	)
	if req.Status == models.RequestStatusApproved {
		s.invalidator.InvalidateTutor(ctx, req.RequestedByTutorID)
		s.flagOverlap(ctx, requestKindReschedule, req.RequestedByTutorID, req.SessionID, req.RequestedStartTime, req.RequestedEndTime)
	}
	return req, nil
}

// ReviewAddSession approves or rejects a pending add-session request. Approval
// creates the session under the course's tutor and books every active student into it.
func (s *RequestService) ReviewAddSession(ctx context.Context, requestID, adminID string, payload models.ReviewRequest) (*models.AddSessionRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, validationError(err, "invalid review payload")
	}
	pending, err := s.requests.FindAddSession(ctx, requestID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load add-session request")
	}
	if err != nil || pending.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found or already reviewed")
	}

	var session *models.Session
	if payload.Status == models.RequestStatusApproved {
		course, err := s.courses.FindByID(ctx, pending.CourseID)
		if err != nil {
			if isNoRows(err) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return nil, appErrors.Internal(err, "failed to load course")
		}
		session = &models.Session{TutorID: course.TutorID, Status: models.SessionStatusScheduled}
	}

	review := models.RequestReview{Status: payload.Status, AdminID: adminID, Note: payload.AdminNote, Timestamp: s.now()}
	req, err := s.requests.ReviewAddSession(ctx, requestID, review, session)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found or already reviewed")
		}
		return nil, appErrors.Internal(err, "failed to review add-session request")
	}

	s.metrics.RecordRequestReviewed(requestKindAddSession, string(req.Status))
	s.logger.Info("add-session request reviewed",
		zap.String("request_id", req.ID),
		zap.String("course_id", req.CourseID),
		zap.String("status", string(req.Status)),
		zap.String("admin_id", adminID),
	)
	if req.Status != models.RequestStatusApproved || session == nil {
		return req, nil
	}

	s.metrics.RecordSessionCreated()
	s.invalidator.InvalidateTutor(ctx, session.TutorID)
	s.flagOverlap(ctx, requestKindAddSession, session.TutorID, session.ID, session.StartTime, session.EndTime)
	if _, err := s.fanOut.FanOut(ctx, req.CourseID); err != nil {
		s.logger.Error("fan-out after add-session approval failed",
			zap.String("request_id", req.ID), zap.String("session_id", session.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			"session created but booking fan-out failed; retry the course fan-out")
	}
	return req, nil
}

// flagOverlap reports approvals that leave the tutor double-booked.
func (s *RequestService) flagOverlap(ctx context.Context, kind, tutorID, sessionID string, start, end time.Time) {
	overlapping, err := s.sessions.FindOverlapping(ctx, tutorID, start, end)
	if err != nil {
		s.logger.Warn("overlap check after approval failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if !overlapsAny(overlapping, start, end, sessionID) {
		return
	}
	s.metrics.RecordApprovalOverlap(kind)
	s.logger.Warn("approved request overlaps another session",
		zap.String("kind", kind),
		zap.String("tutor_id", tutorID),
		zap.String("session_id", sessionID),
		zap.Time("start", start),
		zap.Time("end", end),
	)
}
