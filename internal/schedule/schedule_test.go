package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustTime builds a local time for test fixtures; Mon 2026-03-02 is a handy
// anchor because the whole week stays in one month.
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Weekday
		ok   bool
	}{
		{"abbreviated", "Mon", time.Monday, true},
		{"full", "Monday", time.Monday, true},
		{"sunday abbreviated", "Sun", time.Sunday, true},
		{"sunday full", "Sunday", time.Sunday, true},
		{"lowercase rejected", "mon", 0, false},
		{"empty", "", 0, false},
		{"garbage", "Funday", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseWeekday(tc.in)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAbbrev(t *testing.T) {
	assert.Equal(t, "Sun", Abbrev(time.Sunday))
	assert.Equal(t, "Sat", Abbrev(time.Saturday))
}

func TestNextOccurrence(t *testing.T) {
	// Monday 10:00.
	now := mustTime(t, "2026-03-02 10:00")

	t.Run("later today", func(t *testing.T) {
		next, ok := NextOccurrence([]Entry{{Day: "Mon", Time: "15:00"}}, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-02 15:00"), next)
	})

	t.Run("same day but passed rolls a full week", func(t *testing.T) {
		next, ok := NextOccurrence([]Entry{{Day: "Mon", Time: "09:00"}}, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-09 09:00"), next)
	})

	t.Run("exact minute counts as passed", func(t *testing.T) {
		next, ok := NextOccurrence([]Entry{{Day: "Mon", Time: "10:00"}}, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-09 10:00"), next)
	})

	t.Run("wraps over the weekend", func(t *testing.T) {
		next, ok := NextOccurrence([]Entry{{Day: "Sun", Time: "08:00"}}, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-08 08:00"), next)
	})

	t.Run("picks nearest of several entries", func(t *testing.T) {
		entries := []Entry{
			{Day: "Fri", Time: "18:00"},
			{Day: "Wed", Time: "07:30"},
		}
		next, ok := NextOccurrence(entries, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-04 07:30"), next)
	})

	t.Run("first entry wins a same-day tie", func(t *testing.T) {
		entries := []Entry{
			{Day: "Wed", Time: "18:00"},
			{Day: "Wed", Time: "07:30"},
		}
		next, ok := NextOccurrence(entries, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-04 18:00"), next)
	})

	t.Run("malformed entries are skipped", func(t *testing.T) {
		entries := []Entry{
			{Day: "Funday", Time: "10:00"},
			{Day: "Tue", Time: "25:00"},
			{Day: "Tue", Time: "11:00"},
		}
		next, ok := NextOccurrence(entries, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-03 11:00"), next)
	})

	t.Run("empty schedule yields nothing", func(t *testing.T) {
		_, ok := NextOccurrence(nil, now)
		assert.False(t, ok)
	})

	t.Run("full day names are honored", func(t *testing.T) {
		next, ok := NextOccurrence([]Entry{{Day: "Tuesday", Time: "09:15"}}, now)
		require.True(t, ok)
		assert.Equal(t, mustTime(t, "2026-03-03 09:15"), next)
	})
}

func TestIsScheduledToday(t *testing.T) {
	monday := mustTime(t, "2026-03-02 10:00")
	assert.True(t, IsScheduledToday([]Entry{{Day: "Mon", Time: "15:00"}}, monday))
	assert.False(t, IsScheduledToday([]Entry{{Day: "Tue", Time: "15:00"}}, monday))
	assert.False(t, IsScheduledToday(nil, monday))
}

func TestTimesOn(t *testing.T) {
	entries := []Entry{
		{Day: "Mon", Time: "09:00"},
		{Day: "Wed", Time: "17:00"},
		{Day: "Mon", Time: "18:30"},
	}
	assert.Equal(t, []string{"09:00", "18:30"}, TimesOn(entries, time.Monday))
	assert.Nil(t, TimesOn(entries, time.Friday))
}

func TestAt(t *testing.T) {
	day := mustTime(t, "2026-03-02 10:00")

	at, ok := At(day, "07:45")
	require.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-03-02 07:45"), at)

	_, ok = At(day, "7:5")
	assert.False(t, ok)
	_, ok = At(day, "24:00")
	assert.False(t, ok)
}

func TestHoursBetween(t *testing.T) {
	from := mustTime(t, "2026-03-02 10:00")
	assert.InDelta(t, 2.5, HoursBetween(from, mustTime(t, "2026-03-02 12:30")), 1e-9)
	assert.InDelta(t, -1.0, HoursBetween(from, mustTime(t, "2026-03-02 09:00")), 1e-9)
}

func TestDaysSince(t *testing.T) {
	installed := mustTime(t, "2026-03-02 10:00")
	assert.Equal(t, 0, DaysSince(installed, mustTime(t, "2026-03-03 09:59")))
	assert.Equal(t, 1, DaysSince(installed, mustTime(t, "2026-03-03 10:00")))
	assert.Equal(t, 7, DaysSince(installed, mustTime(t, "2026-03-09 12:00")))
}

func TestFormatClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-02 15:00", "3:00 PM"},
		{"2026-03-02 09:05", "9:05 AM"},
		{"2026-03-02 00:30", "12:30 AM"},
		{"2026-03-02 12:00", "12:00 PM"},
		{"2026-03-02 23:59", "11:59 PM"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatClockTime(mustTime(t, tc.in)))
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid([]Entry{{Day: "Mon", Time: "15:00"}, {Day: "Thursday", Time: "08:30"}}))
	assert.True(t, IsValid(nil), "empty schedule is vacuously valid")
	assert.False(t, IsValid([]Entry{{Day: "Mon", Time: "15:00"}, {Day: "Xyz", Time: "08:30"}}))
	assert.False(t, IsValid([]Entry{{Day: "Mon", Time: "15:61"}}))
	assert.False(t, IsValid([]Entry{{Day: "Mon", Time: "3pm"}}))
}
