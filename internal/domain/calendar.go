package domain

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeEmail trims and lower-cases an email so it can be compared
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDate parses a YYYY-MM-DD calendar day into UTC midnight
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateFormat, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DateOf returns the calendar day of t as seen in t's location, as UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from one day to another (negative if to is earlier)
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// FormatDate renders a calendar day as YYYY-MM-DD
func FormatDate(d time.Time) string {
	return d.Format(DateFormat)
}
