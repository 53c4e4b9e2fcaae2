package clock

import (
	"fmt"
	"regexp"
	"strconv"
)

var wirePattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// ParseWire reads the zero-padded 24-hour "HH:MM" form the availability
// resource stores.
func ParseWire(s string) (TimeOfDay, error) {
	parts := wirePattern.FindStringSubmatch(s)
	if parts == nil {
		return TimeOfDay{}, &ParseError{Input: s}
	}
	h, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	if h > 23 || m > 59 {
		return TimeOfDay{}, &ParseError{Input: s}
	}
	return FromMinuteOfDay(h*60 + m)
}

// FormatWire renders t as zero-padded 24-hour "HH:MM".
func FormatWire(t TimeOfDay) string {
	m := t.MinuteOfDay()
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
