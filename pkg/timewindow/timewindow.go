// Package timewindow holds the interval arithmetic shared by availability
// matching, conflict detection and slot suggestion. Intervals are half-open
// [start, end): touching endpoints never overlap.
package timewindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDay is returned when a day-of-week value is not one of the closed enum members.
var ErrUnknownDay = errors.New("unknown day of week")

// ErrInvalidClock is returned for clock strings that are not zero-padded 24h "HH:mm".
var ErrInvalidClock = errors.New("clock time must be HH:mm")

// DayOfWeek is the persisted day enum for recurring availability.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var weekdayToDay = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// ParseDayOfWeek normalises and validates a day name.
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	if !day.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDay, raw)
	}
	return day, nil
}

// Valid reports whether d is a member of the enum.
func (d DayOfWeek) Valid() bool {
	for _, known := range weekdayToDay {
		if d == known {
			return true
		}
	}
	return false
}

// FromWeekday maps a time.Weekday onto the enum.
func FromWeekday(w time.Weekday) DayOfWeek {
	return weekdayToDay[w]
}

// ParseClock validates an "HH:mm" string.
func ParseClock(raw string) (string, error) {
	if len(raw) != 5 || raw[2] != ':' {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return t.Format("15:04"), nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// LocalDayAndTime projects an instant onto the civil day and minute-precision
// clock of loc. A nil loc means UTC.
func LocalDayAndTime(instant time.Time, loc *time.Location) (DayOfWeek, string) {
	if loc == nil {
		loc = time.UTC
	}
	local := instant.In(loc)
	return FromWeekday(local.Weekday()), local.Format("15:04")
}

// TimeLE compares zero-padded "HH:mm" strings; lexical order equals clock order.
func TimeLE(a, b string) bool {
	return a <= b
}

// Covers reports whether the window [winStart, winEnd] contains the local
// range [start, end].
func Covers(winStart, winEnd, start, end string) bool {
	return TimeLE(winStart, start) && TimeLE(end, winEnd)
}

// SameLocalDate reports whether a and b fall on the same civil date in loc.
// A nil loc means UTC.
func SameLocalDate(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Length returns the span of an "HH:mm" window, or zero when either clock is
// malformed or the window is inverted.
func Length(winStart, winEnd string) time.Duration {
	from, err := time.Parse("15:04", winStart)
	if err != nil {
		return 0
	}
	to, err := time.Parse("15:04", winEnd)
	if err != nil || to.Before(from) {
		return 0
	}
	return to.Sub(from)
}

// Contains reports whether the concrete interval [start, end) lies inside the
// window [winStart, winEnd] on a single civil day of loc. Intervals that cross
// local midnight or outlast the window are never contained.
func Contains(winStart, winEnd string, start, end time.Time, loc *time.Location) bool {
	if !start.Before(end) || !SameLocalDate(start, end, loc) {
		return false
	}
	if end.Sub(start) > Length(winStart, winEnd) {
		return false
	}
	_, localStart := LocalDayAndTime(start, loc)
	_, localEnd := LocalDayAndTime(end, loc)
	return Covers(winStart, winEnd, localStart, localEnd)
}

// LoadLocation resolves an IANA zone name, falling back to fallback (or UTC)
// when name is empty.
func LoadLocation(name, fallback string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Range is a concrete half-open interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Step walks [from, to) with the given stride and yields every window of the
// given duration that ends no later than to.
func Step(from, to time.Time, stride, duration time.Duration, yield func(Range) bool) {
	if stride <= 0 || duration <= 0 {
		return
	}
	for start := from; !start.Add(duration).After(to); start = start.Add(stride) {
		if !yield(Range{Start: start, End: start.Add(duration)}) {
			return
		}
	}
}
