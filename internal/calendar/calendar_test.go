package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinelab/routined/internal/calendar"
)

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		date    string
		weekday string
	}{
		{"2026-01-04", "Sunday"},
		{"2026-01-05", "Monday"},
		{"2026-01-06", "Tuesday"},
		{"2026-01-07", "Wednesday"},
		{"2026-01-08", "Thursday"},
		{"2026-01-09", "Friday"},
		{"2026-01-10", "Saturday"},
	}
	for _, tc := range cases {
		got, err := calendar.WeekdayOf(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.weekday, got, tc.date)
	}
}

func TestWeekdayOfRejectsGarbage(t *testing.T) {
	_, err := calendar.WeekdayOf("not-a-date")
	assert.Error(t, err)
}

func TestDateStringRoundTrip(t *testing.T) {
	d, err := calendar.ParseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", calendar.DateString(d))
	assert.Equal(t, 1, calendar.WeekdayIndex(d)) // Monday
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"05:30", 5, 30},
		{"8:30", 8, 30}, // schedule tables omit leading zeros
		{"21:00", 21, 0},
		{"0:00", 0, 0},
	}
	for _, tc := range cases {
		h, m, err := calendar.ParseClock(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.hour, h, tc.in)
		assert.Equal(t, tc.minute, m, tc.in)
	}

	for _, bad := range []string{"", "830", "24:00", "12:60", "x:y"} {
		_, _, err := calendar.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestStartOfRange(t *testing.T) {
	assert.Equal(t, "8:30", calendar.StartOfRange("8:30-10:00"))
	assert.Equal(t, "13:00", calendar.StartOfRange("13:00"))
}

func TestValidWeekday(t *testing.T) {
	assert.True(t, calendar.ValidWeekday("Sunday"))
	assert.False(t, calendar.ValidWeekday("sunday"))
	assert.False(t, calendar.ValidWeekday("Someday"))
}

func TestWeekdayNameMatchesTime(t *testing.T) {
	d := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Wednesday", calendar.WeekdayName(d))
}
