package schedule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/availability/internal/clock"
)

// ErrInvalidRange is returned when an end time does not follow its start.
var ErrInvalidRange = errors.New("invalid time range")

// RangeError is returned by Validate for a rejected start/end pair.
type RangeError struct {
	Day        Day
	Start, End clock.TimeOfDay
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s %s - %s", ErrInvalidRange, e.Day.Title(), e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// Interval is one recurring block of free time on a day of the week.
//
// Key is the local identity, assigned when the interval is created and never
// sent to the remote store except as an idempotency key. RemoteID is empty
// until the store has confirmed the create.
type Interval struct {
	Key      uuid.UUID
	Day      Day
	Start    clock.TimeOfDay
	End      clock.TimeOfDay
	RemoteID string
}

// Persisted reports whether the remote store has confirmed this interval.
func (iv Interval) Persisted() bool { return iv.RemoteID != "" }

// Validate decides whether start..end is an acceptable interval on day.
//
// AM/AM and PM/PM pairs must be strictly increasing. An AM start with a PM end
// is accepted without comparing minutes. A PM start with an AM end is always
// rejected.
func Validate(day Day, start, end clock.TimeOfDay) (Interval, error) {
	if !day.Valid() || start.IsZero() || end.IsZero() {
		return Interval{}, &RangeError{Day: day, Start: start, End: end}
	}

	ok := false
	switch {
	case start.Meridiem() == end.Meridiem():
		ok = start.MinuteOfDay() < end.MinuteOfDay()
	case start.Meridiem() == clock.AM && end.Meridiem() == clock.PM:
		ok = true
	}
	if !ok {
		return Interval{}, &RangeError{Day: day, Start: start, End: end}
	}

	return Interval{Key: uuid.New(), Day: day, Start: start, End: end}, nil
}
