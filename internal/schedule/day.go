package schedule

import (
	"fmt"
	"strings"
)

// Day is a day of the week. The zero value is not a valid day.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Week lists the days in display order.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = map[Day]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
	Saturday:  "SATURDAY",
	Sunday:    "SUNDAY",
}

func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

// String returns the upper-case wire name, e.g. "MONDAY".
func (d Day) String() string {
	if n, ok := dayNames[d]; ok {
		return n
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// Title returns the display name, e.g. "Monday".
func (d Day) Title() string {
	n := d.String()
	if !d.Valid() {
		return n
	}
	return n[:1] + strings.ToLower(n[1:])
}

// ParseDay accepts a weekday name in any case.
func ParseDay(s string) (Day, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for d, n := range dayNames {
		if n == up {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", s)
}
