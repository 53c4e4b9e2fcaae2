// Package clock holds the TimeOfDay value used by the weekly availability
// scheduler and the two text forms it crosses: the 12-hour display form typed
// by users ("7:00 AM") and the 24-hour "HH:MM" form used on the wire.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned (wrapped in a *ParseError) for any text that is
// not a well formed time of day.
var ErrInvalidFormat = errors.New("invalid time format")

// ParseError reports the rejected input.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidFormat, e.Input)
}

func (e *ParseError) Unwrap() error { return ErrInvalidFormat }

// Meridiem is the AM/PM half of a 12-hour clock reading.
type Meridiem int

const (
	AM Meridiem = iota
	PM
)

func (m Meridiem) String() string {
	if m == PM {
		return "PM"
	}
	return "AM"
}

// ParseMeridiem accepts "am"/"pm" in any case.
func ParseMeridiem(s string) (Meridiem, error) {
	switch strings.ToUpper(s) {
	case "AM":
		return AM, nil
	case "PM":
		return PM, nil
	}
	return AM, &ParseError{Input: s}
}

// TimeOfDay is an immutable 12-hour clock reading.
type TimeOfDay struct {
	hour     int
	minute   int
	meridiem Meridiem
}

// New builds a TimeOfDay, rejecting hour outside 1..12 or minute outside 0..59.
func New(hour, minute int, m Meridiem) (TimeOfDay, error) {
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 || (m != AM && m != PM) {
		return TimeOfDay{}, &ParseError{Input: fmt.Sprintf("%d:%02d %s", hour, minute, m)}
	}
	return TimeOfDay{hour: hour, minute: minute, meridiem: m}, nil
}

// MustNew is New for literals known to be valid.
func MustNew(hour, minute int, m Meridiem) TimeOfDay {
	t, err := New(hour, minute, m)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int          { return t.hour }
func (t TimeOfDay) Minute() int        { return t.minute }
func (t TimeOfDay) Meridiem() Meridiem { return t.meridiem }

// IsZero reports whether t is the zero value, which is not a valid reading.
func (t TimeOfDay) IsZero() bool { return t.hour == 0 }

// MinuteOfDay resolves t to 0..1439. 12 AM is 0, 12 PM is 720.
func (t TimeOfDay) MinuteOfDay() int {
	m := t.hour%12*60 + t.minute
	if t.meridiem == PM {
		m += 720
	}
	return m
}

// Before orders two readings by their resolved minute of day.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.MinuteOfDay() < u.MinuteOfDay()
}

// FromMinuteOfDay is the inverse of MinuteOfDay.
func FromMinuteOfDay(m int) (TimeOfDay, error) {
	if m < 0 || m >= 24*60 {
		return TimeOfDay{}, &ParseError{Input: strconv.Itoa(m)}
	}
	h24, minute := m/60, m%60
	mer := AM
	if h24 >= 12 {
		mer = PM
	}
	hour := h24 % 12
	if hour == 0 {
		hour = 12
	}
	return TimeOfDay{hour: hour, minute: minute, meridiem: mer}, nil
}

var displayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}) ([AaPp][Mm])$`)

// Parse reads "H:MM AM" or "HH:MM PM". Exactly one space separates the clock
// from the meridiem, which may be in any case.
func Parse(text string) (TimeOfDay, error) {
	parts := displayPattern.FindStringSubmatch(text)
	if parts == nil {
		return TimeOfDay{}, &ParseError{Input: text}
	}
	hour, _ := strconv.Atoi(parts[1])
	minute, _ := strconv.Atoi(parts[2])
	mer, _ := ParseMeridiem(parts[3])
	if hour < 1 || hour > 12 || minute > 59 {
		return TimeOfDay{}, &ParseError{Input: text}
	}
	return TimeOfDay{hour: hour, minute: minute, meridiem: mer}, nil
}

// ParseParts parses a clock entered separately from its period, as a time
// field next to an AM/PM picker produces.
func ParseParts(clockText, period string) (TimeOfDay, error) {
	return Parse(clockText + " " + period)
}

// Format renders t as "H:MM AM", the inverse of Parse.
func Format(t TimeOfDay) string {
	return fmt.Sprintf("%d:%02d %s", t.hour, t.minute, t.meridiem)
}

func (t TimeOfDay) String() string { return Format(t) }
