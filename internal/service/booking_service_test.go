package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
)

type bookingFixture struct {
	store   *fakeStore
	courses *fakeCourses
	svc     *BookingService
}

func newBookingFixture(t *testing.T, maxStudents *int) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		store:   newFakeStore(),
		courses: newFakeCourses(&models.Course{ID: "course-1", TutorID: "tutor-1", Status: models.CourseStatusPublished, MaxStudents: maxStudents}),
	}
	f.courses.enroll("course-1", "student-1", "student-2")
	f.svc = NewBookingService(bookingView{f.store}, f.store, f.courses, zap.NewNop(),
		WithBookingClock(fixedClock(monday)),
		WithBookingMetrics(NewMetricsService()),
	)
	return f
}

func (f *bookingFixture) session(status models.SessionStatus) *models.Session {
	return f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(9, 0), EndTime: at(10, 0), Status: status})
}

func TestBookingServiceBook(t *testing.T) {
	f := newBookingFixture(t, nil)
	session := f.session(models.SessionStatusScheduled)

	booking, err := f.svc.Book(context.Background(), session.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, monday, booking.BookedAt)

	_, err = f.svc.Book(context.Background(), session.ID, "student-1")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestBookingServiceBookCapacity(t *testing.T) {
	f := newBookingFixture(t, intPtr(1))
	session := f.session(models.SessionStatusScheduled)

	_, err := f.svc.Book(context.Background(), session.ID, "student-1")
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), session.ID, "student-2")
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
}

func TestBookingServiceBookRejections(t *testing.T) {
	f := newBookingFixture(t, nil)
	live := f.session(models.SessionStatusInProgress)
	cancelled := f.session(models.SessionStatusCancelled)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, "missing", "student-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Book(ctx, cancelled.ID, "student-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	_, err = f.svc.Book(ctx, live.ID, "outsider")
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	_, err = f.svc.Book(ctx, live.ID, "student-2")
	assert.NoError(t, err)
}

func TestBookingServiceCancelIsTerminal(t *testing.T) {
	f := newBookingFixture(t, nil)
	session := f.session(models.SessionStatusScheduled)
	ctx := context.Background()

	booking, err := f.svc.Book(ctx, session.ID, "student-1")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, booking.ID, "student-2")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	cancelled, err := f.svc.Cancel(ctx, booking.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.Cancel(ctx, booking.ID, "student-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	_, err = f.svc.Book(ctx, session.ID, "student-1")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = f.svc.Cancel(ctx, "missing", "student-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBookingServiceListForStudent(t *testing.T) {
	f := newBookingFixture(t, nil)
	session := f.session(models.SessionStatusScheduled)
	_, err := f.svc.Book(context.Background(), session.ID, "student-1")
	require.NoError(t, err)

	list, err := f.svc.ListForStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	none, err := f.svc.ListForStudent(context.Background(), "student-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
}

func TestBookingServiceFanOutIsIdempotent(t *testing.T) {
	f := newBookingFixture(t, nil)
	first := f.session(models.SessionStatusScheduled)
	f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(11, 0), EndTime: at(12, 0)})
	f.session(models.SessionStatusCancelled)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, first.ID, "student-1")
	require.NoError(t, err)

	result, err := f.svc.FanOut(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Created)

	again, err := f.svc.FanOut(ctx, "course-1")
	require.NoError(t, err)
	assert.Zero(t, again.Created)

	_, err = f.svc.FanOut(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBookingServiceFanOutMalformedCourseIDIsNotFound(t *testing.T) {
	f := newBookingFixture(t, nil)
	f.courses.err = &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	_, err := f.svc.FanOut(context.Background(), "abc")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
