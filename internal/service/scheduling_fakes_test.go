package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/internal/repository"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

// monday is 2025-03-03, a Monday.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

type fakeCourses struct {
	courses  map[string]*models.Course
	active   map[string]bool
	enrolled map[string][]string
	err      error
}

func newFakeCourses(courses ...*models.Course) *fakeCourses {
	f := &fakeCourses{courses: map[string]*models.Course{}, active: map[string]bool{}, enrolled: map[string][]string{}}
	for _, c := range courses {
		f.courses[c.ID] = c
	}
	return f
}

func (f *fakeCourses) enroll(courseID string, students ...string) {
	f.enrolled[courseID] = append(f.enrolled[courseID], students...)
	f.active[courseID] = true
}

func (f *fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) HasActiveEnrollment(ctx context.Context, courseID string) (bool, error) {
	return f.active[courseID], nil
}

func (f *fakeCourses) IsStudentEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	for _, id := range f.enrolled[courseID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourses) ListActiveStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	return append([]string(nil), f.enrolled[courseID]...), nil
}

type fakeAvailability struct {
	windows map[string]*models.Availability
	seq     int
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{windows: map[string]*models.Availability{}}
}

func (f *fakeAvailability) add(tutorID string, day timewindow.DayOfWeek, start, end string) {
	_ = f.Create(context.Background(), &models.Availability{TutorID: tutorID, DayOfWeek: day, StartTime: start, EndTime: end, IsAvailable: true})
}

func (f *fakeAvailability) Create(ctx context.Context, window *models.Availability) error {
	f.seq++
	window.ID = fmt.Sprintf("window-%d", f.seq)
	cp := *window
	f.windows[window.ID] = &cp
	return nil
}

func (f *fakeAvailability) ListActiveByTutor(ctx context.Context, tutorID string) ([]models.Availability, error) {
	var out []models.Availability
	for _, w := range f.windows {
		if w.TutorID == tutorID && w.IsAvailable {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAvailability) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	w, ok := f.windows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (f *fakeAvailability) Delete(ctx context.Context, id string) error {
	delete(f.windows, id)
	return nil
}

type fakeDirectory struct {
	tutors       map[string]*models.Tutor
	participants map[string]*models.Participant
}

func (f *fakeDirectory) FindTutor(ctx context.Context, tutorID string) (*models.Tutor, error) {
	if f == nil || f.tutors[tutorID] == nil {
		return nil, sql.ErrNoRows
	}
	cp := *f.tutors[tutorID]
	return &cp, nil
}

func (f *fakeDirectory) FindParticipant(ctx context.Context, userID string) (*models.Participant, error) {
	if f == nil || f.participants[userID] == nil {
		return nil, sql.ErrNoRows
	}
	cp := *f.participants[userID]
	return &cp, nil
}

// fakeStore keeps sessions and bookings together so cancellation can cascade.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	bookings map[string]*models.Booking
	rooms    map[string]string
	started  int
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*models.Session{}, bookings: map[string]*models.Booking{}, rooms: map[string]string{}}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) seedSession(s models.Session) *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = f.nextID("session")
	}
	if s.Status == "" {
		s.Status = models.SessionStatusScheduled
	}
	f.sessions[s.ID] = &s
	return &s
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) FindOverlapping(ctx context.Context, tutorID string, start, end time.Time) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlapping(tutorID, start, end), nil
}

func (f *fakeStore) overlapping(tutorID string, start, end time.Time) []models.Session {
	var out []models.Session
	for _, s := range f.sessions {
		if s.TutorID == tutorID && s.Status != models.SessionStatusCancelled && timewindow.Overlaps(s.StartTime, s.EndTime, start, end) {
			out = append(out, *s)
		}
	}
	return out
}

func (f *fakeStore) CreateExclusive(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.overlapping(session.TutorID, session.StartTime, session.EndTime)) > 0 {
		return repository.ErrSessionOverlap
	}
	session.ID = f.nextID("session")
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeStore) details(match func(*models.Session) bool) []models.SessionDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SessionDetail
	for _, s := range f.sessions {
		if !match(s) {
			continue
		}
		detail := models.SessionDetail{Session: *s, Bookings: []models.Booking{}}
		for _, b := range f.bookings {
			if b.SessionID == s.ID {
				detail.Bookings = append(detail.Bookings, *b)
			}
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (f *fakeStore) ListByCourse(ctx context.Context, courseID string) ([]models.SessionDetail, error) {
	return f.details(func(s *models.Session) bool { return s.CourseID == courseID }), nil
}

func (f *fakeStore) ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error) {
	return f.details(func(s *models.Session) bool { return s.TutorID == tutorID }), nil
}

func (f *fakeStore) ListActiveIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, s := range f.sessions {
		if s.CourseID == courseID && s.Status != models.SessionStatusCancelled {
			ids = append(ids, s.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) Cancel(ctx context.Context, id string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || !s.Status.Cancellable() {
		return 0, sql.ErrNoRows
	}
	s.Status = models.SessionStatusCancelled
	var n int64
	for _, b := range f.bookings {
		if b.SessionID == id && b.Status == models.BookingStatusConfirmed {
			b.Status = models.BookingStatusCancelled
			ts := at
			b.CancelledAt = &ts
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkInProgress(ctx context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.SessionStatusScheduled {
		return false, nil
	}
	s.Status = models.SessionStatusInProgress
	f.started++
	return true, nil
}

func (f *fakeStore) AssignRoom(ctx context.Context, id, room string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.rooms[id]; ok {
		return existing, nil
	}
	f.rooms[id] = room
	return room, nil
}

func (f *fakeStore) CreateGuarded(ctx context.Context, booking *models.Booking, maxStudents *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[booking.SessionID]; !ok {
		return sql.ErrNoRows
	}
	confirmed := 0
	for _, b := range f.bookings {
		if b.SessionID != booking.SessionID {
			continue
		}
		if b.StudentID == booking.StudentID {
			return repository.ErrDuplicateBooking
		}
		if b.Status == models.BookingStatusConfirmed {
			confirmed++
		}
	}
	if maxStudents != nil && confirmed >= *maxStudents {
		return repository.ErrCapacityReached
	}
	booking.ID = f.nextID("booking")
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeStore) FindBookingByID(id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) FindByPair(ctx context.Context, sessionID, studentID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SessionID == sessionID && b.StudentID == studentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// bookingView exposes the booking half of fakeStore under the store's method names.
type bookingView struct{ *fakeStore }

func (v bookingView) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	return v.FindBookingByID(id)
}

func (v bookingView) Cancel(ctx context.Context, id string, at time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.bookings[id]
	if !ok || b.Status != models.BookingStatusConfirmed {
		return sql.ErrNoRows
	}
	b.Status = models.BookingStatusCancelled
	ts := at
	b.CancelledAt = &ts
	return nil
}

func (v bookingView) ListForStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range v.bookings {
		if b.StudentID == studentID {
			out = append(out, models.BookingDetail{Booking: *b})
		}
	}
	return out, nil
}

func (v bookingView) InsertMany(ctx context.Context, pairs []repository.BookingPair, at time.Time) (int64, error) {
	var created int64
	for _, p := range pairs {
		if _, err := v.FindByPair(ctx, p.SessionID, p.StudentID); err == nil {
			continue
		}
		v.mu.Lock()
		id := v.nextID("booking")
		v.bookings[id] = &models.Booking{ID: id, SessionID: p.SessionID, StudentID: p.StudentID, Status: models.BookingStatusConfirmed, BookedAt: at}
		v.mu.Unlock()
		created++
	}
	return created, nil
}

type recordingInvalidator struct {
	tutors []string
}

func (r *recordingInvalidator) InvalidateTutor(ctx context.Context, tutorID string) {
	r.tutors = append(r.tutors, tutorID)
}
