package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/roomtoken"
)

const defaultJoinWindow = 30 * time.Minute

type roomSessionStore interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	MarkInProgress(ctx context.Context, id string, at time.Time) (bool, error)
	AssignRoom(ctx context.Context, id, room string) (string, error)
}

type roomBookingFinder interface {
	FindByPair(ctx context.Context, sessionID, studentID string) (*models.Booking, error)
}

type roomCourseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type participantDirectory interface {
	FindTutor(ctx context.Context, tutorID string) (*models.Tutor, error)
	FindParticipant(ctx context.Context, userID string) (*models.Participant, error)
}

// RoomTokenMinter signs room tokens for a participant.
type RoomTokenMinter interface {
	Mint(grant roomtoken.Grant) (*roomtoken.Token, error)
}

// RoomConfig tunes the join window and token lifetime.
type RoomConfig struct {
	JoinWindow time.Duration
	TokenTTL   time.Duration
}

// RoomService decides whether a caller may join a session's live room now.
type RoomService struct {
	sessions  roomSessionStore
	bookings  roomBookingFinder
	directory participantDirectory
	courses   roomCourseFinder
	minter    RoomTokenMinter
	config    RoomConfig
	metrics   *MetricsService
	logger    *zap.Logger
	now       Clock
}

// RoomServiceOption configures the service.
type RoomServiceOption func(*RoomService)

// WithRoomClock overrides the clock used for the join window.
func WithRoomClock(clock Clock) RoomServiceOption {
	return func(s *RoomService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRoomMetrics attaches domain metrics.
func WithRoomMetrics(metrics *MetricsService) RoomServiceOption {
	return func(s *RoomService) {
		s.metrics = metrics
	}
}

// WithRoomCourses lets untitled sessions borrow their course title.
func WithRoomCourses(courses roomCourseFinder) RoomServiceOption {
	return func(s *RoomService) {
		s.courses = courses
	}
}

// NewRoomService constructs the service.
func NewRoomService(sessions roomSessionStore, bookings roomBookingFinder, directory participantDirectory, minter RoomTokenMinter, cfg RoomConfig, logger *zap.Logger, opts ...RoomServiceOption) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JoinWindow <= 0 {
		cfg.JoinWindow = defaultJoinWindow
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	svc := &RoomService{sessions: sessions, bookings: bookings, directory: directory, minter: minter, config: cfg, logger: logger, now: systemClock}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Authorize checks timing and membership, pins the room name, starts the class on
// the tutor's first join, and returns a signed token.
func (s *RoomService) Authorize(ctx context.Context, sessionID, callerID string) (*models.RoomAccess, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if session.Status == models.SessionStatusCancelled {
		s.metrics.RecordRoomDenied("cancelled")
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "session has been cancelled")
	}

	now := s.now()
	opensAt := session.StartTime.Add(-s.config.JoinWindow)
	if now.Before(opensAt) {
		s.metrics.RecordRoomDenied("too_early")
		minutes := int(math.Ceil(opensAt.Sub(now).Minutes()))
		return nil, appErrors.Clone(appErrors.ErrTooEarly,
			fmt.Sprintf("You can join this session closer to the start time (%d minutes remaining).", minutes))
	}
	if now.After(session.EndTime.Add(s.config.JoinWindow)) {
		s.metrics.RecordRoomDenied("too_late")
		return nil, appErrors.Clone(appErrors.ErrTooLate, "This session has already ended.")
	}

	role := models.RoomRoleStudent
	if callerID == session.TutorID {
		role = models.RoomRoleTutor
	} else {
		booking, err := s.bookings.FindByPair(ctx, sessionID, callerID)
		if err != nil && !isNoRows(err) {
			return nil, appErrors.Internal(err, "failed to load booking")
		}
		if err != nil || booking.Status != models.BookingStatusConfirmed {
			s.metrics.RecordRoomDenied("not_booked")
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not booked into this session")
		}
	}

	var (
		roomName    string
		displayName string
		title       *string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roomName, err = s.sessions.AssignRoom(gctx, sessionID, "session-"+sessionID)
		return err
	})
	g.Go(func() error {
		displayName = s.displayName(gctx, role, callerID)
		return nil
	})
	g.Go(func() error {
		title = s.sessionTitle(gctx, session)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Internal(err, "failed to assign room")
	}

	status := session.Status
	if role == models.RoomRoleTutor && status == models.SessionStatusScheduled && !now.Before(session.StartTime) {
		started, err := s.sessions.MarkInProgress(ctx, sessionID, now)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to start session")
		}
		status = models.SessionStatusInProgress
		if started {
			s.logger.Info("session started", zap.String("session_id", sessionID), zap.String("tutor_id", callerID))
		}
	}

	metadata, err := json.Marshal(map[string]string{"sessionId": sessionID, "role": string(role)})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode participant metadata")
	}
	token, err := s.minter.Mint(roomtoken.Grant{
		Room:     roomName,
		Identity: fmt.Sprintf("%s-%s", role, callerID),
		Name:     displayName,
		Metadata: string(metadata),
		TTL:      s.config.TokenTTL,
	})
	if err != nil {
		if errors.Is(err, roomtoken.ErrNotConfigured) {
			return nil, appErrors.Internal(err, "live room provider is not configured")
		}
		return nil, appErrors.Internal(err, "failed to mint room token")
	}

	s.metrics.RecordRoomJoin(string(role))
	s.logger.Info("room access granted",
		zap.String("session_id", sessionID),
		zap.String("caller_id", callerID),
		zap.String("role", string(role)),
		zap.String("room", roomName),
	)
	return &models.RoomAccess{
		Token:       token.Value,
		URL:         token.URL,
		RoomName:    roomName,
		Participant: models.RoomParticipant{Role: role, Name: displayName},
		Session: models.RoomSession{
			ID:        session.ID,
			Title:     title,
			StartTime: session.StartTime,
			EndTime:   session.EndTime,
			Status:    status,
		},
	}, nil
}

func (s *RoomService) sessionTitle(ctx context.Context, session *models.Session) *string {
	if session.Title != nil && *session.Title != "" {
		return session.Title
	}
	if s.courses == nil {
		return session.Title
	}
	course, err := s.courses.FindByID(ctx, session.CourseID)
	if err != nil {
		if !isNoRows(err) {
			s.logger.Warn("course lookup failed", zap.String("course_id", session.CourseID), zap.Error(err))
		}
		return session.Title
	}
	if course.Title == "" {
		return session.Title
	}
	return &course.Title
}

// displayName resolves the tutor's profile name or the student's name/email,
// falling back to the identity when the directory has nothing.
func (s *RoomService) displayName(ctx context.Context, role models.RoomRole, callerID string) string {
	fallback := fmt.Sprintf("%s-%s", role, callerID)
	if s.directory == nil {
		return fallback
	}
	if role == models.RoomRoleTutor {
		tutor, err := s.directory.FindTutor(ctx, callerID)
		if err == nil && tutor.Name != "" {
			return tutor.Name
		}
		if err != nil && !isNoRows(err) {
			s.logger.Warn("tutor lookup failed", zap.String("tutor_id", callerID), zap.Error(err))
		}
	}
	participant, err := s.directory.FindParticipant(ctx, callerID)
	if err != nil {
		if !isNoRows(err) {
			s.logger.Warn("participant lookup failed", zap.String("user_id", callerID), zap.Error(err))
		}
		return fallback
	}
	if name := participant.DisplayName(); name != "" {
		return name
	}
	return fallback
}
