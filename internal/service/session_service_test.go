package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

type sessionFixture struct {
	store        *fakeStore
	courses      *fakeCourses
	availability *fakeAvailability
	directory    *fakeDirectory
	invalidator  *recordingInvalidator
	svc          *SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		store:        newFakeStore(),
		courses:      newFakeCourses(&models.Course{ID: "course-1", TutorID: "tutor-1", Status: models.CourseStatusDraft}),
		availability: newFakeAvailability(),
		directory:    &fakeDirectory{tutors: map[string]*models.Tutor{"tutor-1": {ID: "tutor-1", Name: "Ada"}}},
		invalidator:  &recordingInvalidator{},
	}
	f.svc = NewSessionService(f.store, f.courses, f.availability, f.directory, "UTC", nil, zap.NewNop(),
		WithSessionClock(fixedClock(monday.Add(-48*time.Hour))),
		WithSessionSlotInvalidator(f.invalidator),
		WithSessionMetrics(NewMetricsService()),
	)
	return f
}

func createReq(start, end time.Time) models.CreateSessionRequest {
	return models.CreateSessionRequest{CourseID: "course-1", StartTime: start, EndTime: end, Title: strPtr("Algebra")}
}

func TestSessionServiceCreateHonoursAvailabilityAndConflicts(t *testing.T) {
	f := newSessionFixture(t)
	f.availability.add("tutor-1", timewindow.Monday, "09:00", "12:00")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "tutor-1", createReq(at(8, 0), at(9, 0)))
	assert.ErrorIs(t, err, appErrors.ErrOutsideAvailability)

	created, err := f.svc.Create(ctx, "tutor-1", createReq(at(9, 0), at(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusScheduled, created.Status)
	assert.Equal(t, "tutor-1", created.TutorID)
	assert.Equal(t, []string{"tutor-1"}, f.invalidator.tutors)

	_, err = f.svc.Create(ctx, "tutor-1", createReq(at(9, 30), at(10, 30)))
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	touching, err := f.svc.Create(ctx, "tutor-1", createReq(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, touching.ID)
}

func TestSessionServiceCreateWithoutWindowsIsUnconstrained(t *testing.T) {
	f := newSessionFixture(t)

	session, err := f.svc.Create(context.Background(), "tutor-1", createReq(at(2, 0), at(3, 0)))
	require.NoError(t, err)
	assert.Equal(t, at(2, 0), session.StartTime)
}

func TestSessionServiceCreateUsesTutorTimezone(t *testing.T) {
	f := newSessionFixture(t)
	f.directory.tutors["tutor-1"].Timezone = strPtr("Asia/Jakarta")
	f.availability.add("tutor-1", timewindow.Monday, "09:00", "12:00")

	// 02:00Z is 09:00 in Jakarta.
	_, err := f.svc.Create(context.Background(), "tutor-1", createReq(at(2, 0), at(3, 0)))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), "tutor-1", createReq(at(9, 0), at(10, 0)))
	assert.ErrorIs(t, err, appErrors.ErrOutsideAvailability)
}

func TestSessionServiceCreateRejections(t *testing.T) {
	cases := []struct {
		name    string
		tutorID string
		mutate  func(f *sessionFixture)
		req     models.CreateSessionRequest
		want    *appErrors.Error
	}{
		{name: "unknown course", tutorID: "tutor-1", req: models.CreateSessionRequest{CourseID: "missing", StartTime: at(9, 0), EndTime: at(10, 0)}, want: appErrors.ErrNotFound},
		{name: "foreign course", tutorID: "tutor-2", req: createReq(at(9, 0), at(10, 0)), want: appErrors.ErrNotFound},
		{name: "published course", tutorID: "tutor-1", mutate: func(f *sessionFixture) {
			f.courses.courses["course-1"].Status = models.CourseStatusPublished
		}, req: createReq(at(9, 0), at(10, 0)), want: appErrors.ErrInvalidState},
		{name: "inverted range", tutorID: "tutor-1", req: createReq(at(10, 0), at(9, 0)), want: appErrors.ErrInvalidRange},
		{name: "empty range", tutorID: "tutor-1", req: createReq(at(10, 0), at(10, 0)), want: appErrors.ErrInvalidRange},
		{name: "past start", tutorID: "tutor-1", req: createReq(monday.Add(-72*time.Hour), monday.Add(-71*time.Hour)), want: appErrors.ErrInvalidRange},
		{name: "missing course id", tutorID: "tutor-1", req: models.CreateSessionRequest{StartTime: at(9, 0), EndTime: at(10, 0)}, want: appErrors.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			if tc.mutate != nil {
				tc.mutate(f)
			}
			_, err := f.svc.Create(context.Background(), tc.tutorID, tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.store.sessions)
		})
	}
}

func TestSessionServiceDuplicate(t *testing.T) {
	f := newSessionFixture(t)
	source := f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(9, 0), EndTime: at(10, 0), Title: strPtr("Algebra"), Description: strPtr("Chapter 1")})
	_ = bookingView{f.store}.CreateGuarded(context.Background(), &models.Booking{SessionID: source.ID, StudentID: "student-1", Status: models.BookingStatusConfirmed}, nil)

	dup, err := f.svc.Duplicate(context.Background(), source.ID, "tutor-1", models.DuplicateSessionRequest{StartTime: at(13, 0), EndTime: at(14, 0)})
	require.NoError(t, err)
	assert.Equal(t, source.CourseID, dup.CourseID)
	assert.Equal(t, "Algebra", *dup.Title)
	assert.Equal(t, "Chapter 1", *dup.Description)

	details, err := f.svc.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Len(t, details[0].Bookings, 1)
	assert.Empty(t, details[1].Bookings)

	_, err = f.svc.Duplicate(context.Background(), source.ID, "tutor-2", models.DuplicateSessionRequest{StartTime: at(15, 0), EndTime: at(16, 0)})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Duplicate(context.Background(), "missing", "tutor-1", models.DuplicateSessionRequest{StartTime: at(15, 0), EndTime: at(16, 0)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionServiceCancelCascadesBookings(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	session := f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(9, 0), EndTime: at(10, 0)})
	bookings := bookingView{f.store}
	require.NoError(t, bookings.CreateGuarded(ctx, &models.Booking{SessionID: session.ID, StudentID: "student-1", Status: models.BookingStatusConfirmed}, nil))
	require.NoError(t, bookings.CreateGuarded(ctx, &models.Booking{SessionID: session.ID, StudentID: "student-2", Status: models.BookingStatusConfirmed}, nil))

	require.NoError(t, f.svc.Cancel(ctx, session.ID, "tutor-1"))

	details, err := f.svc.ListByTutor(ctx, "tutor-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, models.SessionStatusCancelled, details[0].Status)
	for _, b := range details[0].Bookings {
		assert.Equal(t, models.BookingStatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	}

	err = f.svc.Cancel(ctx, session.ID, "tutor-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	// A cancelled session frees its interval.
	_, err = f.svc.Create(ctx, "tutor-1", createReq(at(9, 0), at(10, 0)))
	assert.NoError(t, err)
}

func TestSessionServiceCancelGuards(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	session := f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(9, 0), EndTime: at(10, 0)})
	done := f.store.seedSession(models.Session{CourseID: "course-1", TutorID: "tutor-1", StartTime: at(11, 0), EndTime: at(12, 0), Status: models.SessionStatusCompleted})

	assert.ErrorIs(t, f.svc.Cancel(ctx, "missing", "tutor-1"), appErrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.Cancel(ctx, session.ID, "tutor-2"), appErrors.ErrForbidden)
	assert.ErrorIs(t, f.svc.Cancel(ctx, done.ID, "tutor-1"), appErrors.ErrInvalidState)

	f.courses.active["course-1"] = true
	assert.ErrorIs(t, f.svc.Cancel(ctx, session.ID, "tutor-1"), appErrors.ErrConflict)
	assert.Equal(t, models.SessionStatusScheduled, f.store.sessions[session.ID].Status)
}
