package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
	minutesPerDay     = 24 * 60
)

var (
	// ErrInvalidTimeString is returned when a value is not a valid HH:MM time of day
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow is returned when arithmetic leaves the current day
	ErrTimeOverflow = errors.New("time string overflows the day")
)

// TimeString is a time of day in HH:MM form ("09:30").
// The zero value means "not set".
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeString takes the hour and minute of t.
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// NewTimeStringFromString parses "HH:MM" (a trailing ":SS" of zero is tolerated).
func NewTimeStringFromString(s string) (TimeString, error) {
	s = strings.TrimSpace(s)

	layout := timeLayout
	if len(s) == len(timeLayoutSeconds) {
		layout = timeLayoutSeconds
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if t.Second() != 0 {
		return TimeString{}, fmt.Errorf("%w: %q has seconds", ErrInvalidTimeString, s)
	}

	return NewTimeString(t), nil
}

// MustTimeString parses s and panics on error. Intended for constants and tests.
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// FromMinutes builds a TimeString from minutes since midnight.
func FromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return TimeString{}, ErrTimeOverflow
	}
	return TimeString{minutes: minutes, valid: true}, nil
}

// Minutes returns minutes since midnight.
func (t TimeString) Minutes() int {
	return t.minutes
}

// IsZero reports whether the value was never set.
func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate checks that the value is set and inside the day.
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	if t.minutes < 0 || t.minutes >= minutesPerDay {
		return ErrTimeOverflow
	}
	return nil
}

// AddMinutes returns t shifted by n minutes. Crossing midnight is an error.
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	return FromMinutes(t.minutes + n)
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

func (t TimeString) Equal(other TimeString) bool {
	return t.valid == other.valid && t.minutes == other.minutes
}

// String returns the HH:MM form, or "" for the zero value.
func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeString) UnmarshalText(data []byte) error {
	parsed, err := NewTimeStringFromString(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}

// Scan implements sql.Scanner. Postgres TIME columns arrive as "HH:MM:SS".
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	// "12:30:00.000000" -> "12:30:00"
	if idx := strings.IndexByte(s, '.'); idx > 0 {
		s = s[:idx]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
