package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

// Clock returns the current instant.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	HasActiveEnrollment(ctx context.Context, courseID string) (bool, error)
	IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	ListActiveStudentIDs(ctx context.Context, courseID string) ([]string, error)
}

type availabilityLister interface {
	ListActiveByTutor(ctx context.Context, tutorID string) ([]models.Availability, error)
}

type tutorLocator interface {
	FindTutor(ctx context.Context, tutorID string) (*models.Tutor, error)
}

type overlapFinder interface {
	FindOverlapping(ctx context.Context, tutorID string, start, end time.Time) ([]models.Session, error)
}

// SlotInvalidator drops cached slot suggestions for a tutor.
type SlotInvalidator interface {
	InvalidateTutor(ctx context.Context, tutorID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateTutor(context.Context, string) {}

// zoneResolver projects a tutor onto their configured IANA zone.
type zoneResolver struct {
	tutors   tutorLocator
	fallback string
	logger   *zap.Logger
}

func (z *zoneResolver) locate(ctx context.Context, tutorID string) (*time.Location, error) {
	name := ""
	if z.tutors != nil {
		tutor, err := z.tutors.FindTutor(ctx, tutorID)
		switch {
		case err == nil && tutor.Timezone != nil:
			name = *tutor.Timezone
		case err != nil && !isNoRows(err):
			return nil, appErrors.Internal(err, "failed to load tutor profile")
		}
	}
	loc, err := timewindow.LoadLocation(name, z.fallback)
	if err != nil {
		z.logger.Warn("unknown tutor timezone, using fallback",
			zap.String("tutor_id", tutorID), zap.String("timezone", name), zap.Error(err))
		if loc, err = timewindow.LoadLocation("", z.fallback); err != nil {
			return time.UTC, nil
		}
	}
	return loc, nil
}

// withinAvailability reports whether [start, end) projected into loc is contained
// by at least one window on the local day of start. The interval must start and
// end on the same local date.
func withinAvailability(windows []models.Availability, start, end time.Time, loc *time.Location) bool {
	day, _ := timewindow.LocalDayAndTime(start, loc)
	for _, w := range windows {
		if !w.IsAvailable || w.DayOfWeek != day {
			continue
		}
		if timewindow.Contains(w.StartTime, w.EndTime, start, end, loc) {
			return true
		}
	}
	return false
}

func overlapsAny(sessions []models.Session, start, end time.Time, skipID string) bool {
	for _, s := range sessions {
		if s.ID == skipID || s.Status == models.SessionStatusCancelled {
			continue
		}
		if timewindow.Overlaps(s.StartTime, s.EndTime, start, end) {
			return true
		}
	}
	return false
}

// isNoRows treats malformed ids like missing rows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsMalformedID(err)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
