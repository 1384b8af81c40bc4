package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/export"
)

type tutorSessionLister interface {
	ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error)
}

var calendarColumns = []string{"Date", "Day", "Start", "End", "Title", "Status", "Booked"}

// ExportService renders a tutor's sessions as a downloadable calendar.
type ExportService struct {
	sessions tutorSessionLister
	zones    *zoneResolver
	logger   *zap.Logger
	now      Clock
}

// NewExportService constructs the service.
func NewExportService(sessions tutorSessionLister, tutors tutorLocator, defaultTimezone string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		zones:    &zoneResolver{tutors: tutors, fallback: defaultTimezone, logger: logger},
		logger:   logger,
		now:      systemClock,
	}
}

// ExportTutorCalendar renders every session the tutor owns in their local time.
func (s *ExportService) ExportTutorCalendar(ctx context.Context, tutorID, rawFormat string) (*models.CalendarExport, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	sessions, err := s.sessions.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	loc, err := s.zones.locate(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		start := session.StartTime.In(loc)
		end := session.EndTime.In(loc)
		rows = append(rows, []string{
			start.Format("2006-01-02"),
			start.Weekday().String(),
			start.Format("15:04"),
			end.Format("15:04"),
			deref(session.Title),
			string(session.Status),
			strconv.Itoa(confirmedCount(session.Bookings)),
		})
	}

	generated := s.now().In(loc)
	body, err := export.Render(format, export.Table{
		Title:    "Tutor calendar",
		Subtitle: fmt.Sprintf("Times in %s, generated %s", loc.String(), generated.Format(time.RFC1123)),
		Columns:  calendarColumns,
		Rows:     rows,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render calendar")
	}

	s.logger.Info("calendar exported",
		zap.String("tutor_id", tutorID),
		zap.String("format", string(format)),
		zap.Int("sessions", len(sessions)),
	)
	return &models.CalendarExport{
		Filename:    fmt.Sprintf("tutor-calendar-%s.%s", generated.Format("20060102"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func confirmedCount(bookings []models.Booking) int {
	n := 0
	for _, b := range bookings {
		if b.Status == models.BookingStatusConfirmed {
			n++
		}
	}
	return n
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
