// Package calendar maps instants to the ISO week and weekday keys used by uptime records.
// Both helpers read the calendar fields of t in t's own location, so callers convert to the
// configured zone once and get a consistent day boundary for week and weekday.
package calendar

import (
	"fmt"
	"regexp"
	"time"
)

// Days lists weekday short names in ISO order, Monday first.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var weekPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// ISOWeek returns the ISO-8601 week identifier of t, e.g. "2024-W01".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Weekday returns the short name (Sun..Sat) of t's calendar day.
func Weekday(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// ValidWeek reports whether s has the YYYY-Www shape.
func ValidWeek(s string) bool {
	return weekPattern.MatchString(s)
}

// IsDay reports whether day is one of Days.
func IsDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}
