package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, raw string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	return ts
}

func TestOverlapsHalfOpen(t *testing.T) {
	nine := mustTime(t, "2030-01-07T09:00:00Z")
	ten := mustTime(t, "2030-01-07T10:00:00Z")
	half := mustTime(t, "2030-01-07T09:30:00Z")
	eleven := mustTime(t, "2030-01-07T11:00:00Z")

	assert.True(t, Overlaps(nine, ten, half, eleven))
	assert.True(t, Overlaps(half, eleven, nine, ten))
	assert.False(t, Overlaps(nine, ten, ten, eleven), "touching endpoints must not overlap")
	assert.True(t, Overlaps(nine, eleven, half, ten), "containment overlaps")
}

func TestLocalDayAndTimeUsesZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2030-01-06 is a Sunday; 20:30 UTC is 03:30 Monday in Jakarta (UTC+7).
	day, clock := LocalDayAndTime(mustTime(t, "2030-01-06T20:30:00Z"), loc)
	assert.Equal(t, Monday, day)
	assert.Equal(t, "03:30", clock)

	day, clock = LocalDayAndTime(mustTime(t, "2030-01-06T20:30:00Z"), nil)
	assert.Equal(t, Sunday, day)
	assert.Equal(t, "20:30", clock)
}

func TestLocalDayAndTimeAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Same UTC clock lands on different local clocks before and after the March switch.
	_, winter := LocalDayAndTime(mustTime(t, "2030-03-04T14:00:00Z"), loc)
	_, summer := LocalDayAndTime(mustTime(t, "2030-03-11T14:00:00Z"), loc)
	assert.Equal(t, "09:00", winter)
	assert.Equal(t, "10:00", summer)
}

func TestTimeLEAndCovers(t *testing.T) {
	assert.True(t, TimeLE("09:00", "09:00"))
	assert.True(t, TimeLE("09:00", "10:30"))
	assert.False(t, TimeLE("10:30", "09:59"))

	assert.True(t, Covers("09:00", "12:00", "09:00", "12:00"))
	assert.False(t, Covers("09:00", "12:00", "08:00", "09:00"))
	assert.False(t, Covers("09:00", "12:00", "11:30", "12:30"))
}

func TestContainsRejectsMultiDayAndMidnightCrossing(t *testing.T) {
	monNine := mustTime(t, "2030-01-07T09:00:00Z")

	assert.True(t, Contains("09:00", "12:00", monNine, monNine.Add(3*time.Hour), nil))
	assert.False(t, Contains("09:00", "12:00", monNine, monNine.Add(25*time.Hour), nil),
		"Monday 09:00 to Tuesday 10:00 spans two civil days")

	monEleven := mustTime(t, "2030-01-07T23:00:00Z")
	assert.False(t, Contains("22:00", "23:59", monEleven, monEleven.Add(90*time.Minute), nil),
		"Monday 23:00 to Tuesday 00:30 crosses midnight")
	assert.False(t, Contains("09:00", "12:00", monNine, monNine, nil), "empty range")
}

func TestContainsUsesLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2030-01-06T17:00Z is Monday 00:00 in Jakarta, still Sunday in UTC.
	start := mustTime(t, "2030-01-06T17:00:00Z")
	assert.True(t, Contains("00:00", "02:00", start, start.Add(time.Hour), loc))
	assert.False(t, Contains("00:00", "02:00", start, start.Add(time.Hour), nil))
}

func TestSameLocalDateAndLength(t *testing.T) {
	a := mustTime(t, "2030-01-07T23:30:00Z")
	assert.True(t, SameLocalDate(a, a.Add(29*time.Minute), nil))
	assert.False(t, SameLocalDate(a, a.Add(30*time.Minute), nil))

	assert.Equal(t, 3*time.Hour, Length("09:00", "12:00"))
	assert.Equal(t, time.Duration(0), Length("12:00", "09:00"))
	assert.Equal(t, time.Duration(0), Length("9am", "12:00"))
}

func TestParseDayOfWeek(t *testing.T) {
	day, err := ParseDayOfWeek(" monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	_, err = ParseDayOfWeek("FUNDAY")
	require.ErrorIs(t, err, ErrUnknownDay)
}

func TestParseClock(t *testing.T) {
	clock, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", clock)

	for _, raw := range []string{"7:05", "24:00", "12:60", "1200", ""} {
		_, err := ParseClock(raw)
		assert.ErrorIs(t, err, ErrInvalidClock, raw)
	}
}

func TestStepYieldsWindowsThatFit(t *testing.T) {
	from := mustTime(t, "2030-01-07T09:00:00Z")
	to := mustTime(t, "2030-01-07T11:00:00Z")

	var starts []string
	Step(from, to, 30*time.Minute, time.Hour, func(r Range) bool {
		starts = append(starts, r.Start.Format("15:04"))
		return true
	})
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, starts)
}

func TestStepStopsWhenYieldReturnsFalse(t *testing.T) {
	from := mustTime(t, "2030-01-07T09:00:00Z")
	to := mustTime(t, "2030-01-07T18:00:00Z")

	count := 0
	Step(from, to, 30*time.Minute, time.Hour, func(Range) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}
