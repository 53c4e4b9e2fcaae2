package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// ExportICS renders items as an iCalendar feed with one weekly recurring
// VEVENT per range. Each event starts at the first occurrence on or after
// anchor, and the RRULE is expressed in UTC so BYDAY matches DTSTART.
func ExportICS(items []Weekly, anchor time.Time, loc *time.Location, domain string) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//availability//weekly schedule//EN")

	for _, it := range items {
		first, err := Occurrences([]Weekly{it}, anchor, anchor.Add(7*24*time.Hour), loc)
		if err != nil {
			return "", err
		}
		if len(first) == 0 {
			continue
		}
		start := first[0].Start.UTC()

		opt := rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleWeekday(start.Weekday())},
		}

		ev := cal.AddEvent(fmt.Sprintf("availability-%d@%s", it.ID, domain))
		ev.SetDtStampTime(anchor.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(first[0].End.UTC())
		ev.SetSummary(fmt.Sprintf("Available (%s)", it.Day.Title()))
		ev.AddRrule(opt.RRuleString())
	}
	return cal.Serialize(), nil
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	}
	return rrule.SU
}
