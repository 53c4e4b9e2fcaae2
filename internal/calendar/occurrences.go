// Package calendar expands weekly availability into concrete occurrences and
// renders it as iCalendar.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Nixie-Tech-LLC/availability/internal/clock"
	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

const maxWindow = 366 * 24 * time.Hour

// Weekly is one recurring range ready for expansion.
type Weekly struct {
	ID    int
	Day   schedule.Day
	Start clock.TimeOfDay
	End   clock.TimeOfDay
}

// FromWire builds a Weekly from the stored day name and "HH:MM" times.
func FromWire(id int, day, start, end string) (Weekly, error) {
	d, err := schedule.ParseDay(day)
	if err != nil {
		return Weekly{}, err
	}
	s, err := clock.ParseWire(start)
	if err != nil {
		return Weekly{}, err
	}
	e, err := clock.ParseWire(end)
	if err != nil {
		return Weekly{}, err
	}
	return Weekly{ID: id, Day: d, Start: s, End: e}, nil
}

func (w Weekly) duration() time.Duration {
	return time.Duration(w.End.MinuteOfDay()-w.Start.MinuteOfDay()) * time.Minute
}

// Occurrence is one concrete instance of a Weekly range.
type Occurrence struct {
	ID    int
	Day   schedule.Day
	Start time.Time
	End   time.Time
}

var rruleDays = map[schedule.Day]rrule.Weekday{
	schedule.Monday:    rrule.MO,
	schedule.Tuesday:   rrule.TU,
	schedule.Wednesday: rrule.WE,
	schedule.Thursday:  rrule.TH,
	schedule.Friday:    rrule.FR,
	schedule.Saturday:  rrule.SA,
	schedule.Sunday:    rrule.SU,
}

func weeklyRule(day schedule.Day, dtstart time.Time) (*rrule.RRule, error) {
	wd, ok := rruleDays[day]
	if !ok {
		return nil, fmt.Errorf("unknown day %d", int(day))
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{wd},
		Dtstart:   dtstart,
	})
}

// Occurrences lists every occurrence whose start falls in [from, to), read as
// wall-clock times in loc, ordered by start then id.
func Occurrences(items []Weekly, from, to time.Time, loc *time.Location) ([]Occurrence, error) {
	if !to.After(from) {
		return nil, errors.New("to must be after from")
	}
	if to.Sub(from) > maxWindow {
		return nil, fmt.Errorf("window longer than %s", maxWindow)
	}
	if loc == nil {
		loc = time.UTC
	}
	from, to = from.In(loc), to.In(loc)

	out := make([]Occurrence, 0)
	for _, it := range items {
		m := it.Start.MinuteOfDay()
		dtstart := time.Date(from.Year(), from.Month(), from.Day(), m/60, m%60, 0, 0, loc).AddDate(0, 0, -7)
		rule, err := weeklyRule(it.Day, dtstart)
		if err != nil {
			return nil, err
		}
		for _, start := range rule.Between(from, to, true) {
			if !start.Before(to) {
				continue
			}
			out = append(out, Occurrence{ID: it.ID, Day: it.Day, Start: start, End: start.Add(it.duration())})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
