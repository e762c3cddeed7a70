// internal/schedule/schedule.go
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is a single weekly slot of a class schedule, e.g. {Day: "Mon", Time: "15:00"}.
// Day is stored in its three-letter form; Time is a 24-hour HH:MM clock string.
type Entry struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// weekdayNames maps both naming conventions found in stored schedules
// (abbreviated and full) onto time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"Sun": time.Sunday, "Sunday": time.Sunday,
	"Mon": time.Monday, "Monday": time.Monday,
	"Tue": time.Tuesday, "Tuesday": time.Tuesday,
	"Wed": time.Wednesday, "Wednesday": time.Wednesday,
	"Thu": time.Thursday, "Thursday": time.Thursday,
	"Fri": time.Friday, "Friday": time.Friday,
	"Sat": time.Saturday, "Saturday": time.Saturday,
}

var weekdayAbbrevs = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseWeekday resolves a stored day name to a time.Weekday. Both "Mon" and
// "Monday" are accepted; the canonical emitted form is the three-letter one.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[name]
	return d, ok
}

// Abbrev returns the canonical three-letter name for a weekday.
func Abbrev(d time.Weekday) string {
	return weekdayAbbrevs[int(d)%7]
}

// parseClock splits an "HH:MM" string into hour and minute, validating ranges.
func parseClock(clock string) (hour, minute int, ok bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// NextOccurrence returns the next concrete date-time at which any entry of the
// schedule occurs, relative to now. An entry whose weekday is today but whose
// time has already passed counts as seven days ahead. Malformed entries are
// ignored. The boolean is false when no entry yields an occurrence.
//
// When two entries land the same number of days ahead, the first one in input
// order wins (strict comparison below).
func NextOccurrence(entries []Entry, now time.Time) (time.Time, bool) {
	var (
		best      time.Time
		bestAhead = 8 // more than a week
		found     bool
	)

	nowMinutes := now.Hour()*60 + now.Minute()

	for _, e := range entries {
		day, ok := ParseWeekday(e.Day)
		if !ok {
			continue
		}
		hour, minute, ok := parseClock(e.Time)
		if !ok {
			continue
		}

		daysAhead := int(day) - int(now.Weekday())
		if daysAhead == 0 {
			if hour*60+minute <= nowMinutes {
				daysAhead = 7
			}
		} else if daysAhead < 0 {
			daysAhead += 7
		}

		if daysAhead < bestAhead {
			bestAhead = daysAhead
			d := now.AddDate(0, 0, daysAhead)
			best = time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
			found = true
		}
	}

	return best, found
}

// IsScheduledToday reports whether any entry falls on now's weekday.
func IsScheduledToday(entries []Entry, now time.Time) bool {
	for _, e := range entries {
		if day, ok := ParseWeekday(e.Day); ok && day == now.Weekday() {
			return true
		}
	}
	return false
}

// TimesOn returns the clock strings of all entries on the given weekday, in
// input order.
func TimesOn(entries []Entry, day time.Weekday) []string {
	var times []string
	for _, e := range entries {
		if d, ok := ParseWeekday(e.Day); ok && d == day {
			times = append(times, e.Time)
		}
	}
	return times
}

// At combines a calendar day with an "HH:MM" clock string.
func At(day time.Time, clock string) (time.Time, bool) {
	hour, minute, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), true
}

// HoursBetween returns the signed difference to minus from, in fractional hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// DaysSince returns the whole days elapsed between t and now, rounded down.
func DaysSince(t, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}

// FormatClockTime renders a time on a 12-hour clock, e.g. "3:00 PM".
func FormatClockTime(t time.Time) string {
	hours := t.Hour()
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, t.Minute(), ampm)
}

// IsValid reports whether every entry has a known weekday name and a
// well-formed 24-hour time. An empty schedule is vacuously valid; callers that
// require a schedule to exist must check length separately.
func IsValid(entries []Entry) bool {
	for _, e := range entries {
		if _, ok := ParseWeekday(e.Day); !ok {
			return false
		}
		if _, _, ok := parseClock(e.Time); !ok {
			return false
		}
	}
	return true
}
