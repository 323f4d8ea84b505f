// Package calendar provides pure date and clock-time helpers shared by the
// catalog and the matcher. All functions are total over valid inputs.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date form used in storage keys and
// occurrence keys (ISO date, no time component).
const DateLayout = "2006-01-02"

// DateString formats an instant as its calendar date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// WeekdayName returns the English weekday name (Sunday..Saturday) for an
// instant.
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// WeekdayIndex returns the weekday as 0=Sunday..6=Saturday.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday())
}

// WeekdayOf returns the weekday name for a YYYY-MM-DD date string.
func WeekdayOf(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return WeekdayName(t), nil
}

// ParseClock parses an HH:MM clock time. The hour may omit its leading
// zero ("8:30"), matching the schedule tables.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("parse clock %q: missing ':'", s)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return hour, minute, nil
}

// StartOfRange returns the start time of a "HH:MM-HH:MM" range. A plain
// clock time is returned unchanged.
func StartOfRange(spec string) string {
	start, _, _ := strings.Cut(spec, "-")
	return start
}

// ValidWeekday reports whether name is one of Sunday..Saturday.
func ValidWeekday(name string) bool {
	switch name {
	case "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday":
		return true
	}
	return false
}
