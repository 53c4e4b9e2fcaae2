package schedule

import (
	"fmt"
	"strings"

	"github.com/Nixie-Tech-LLC/availability/internal/clock"
)

// Describe renders both endpoints in 12-hour form: "7:00 AM - 9:00 AM".
func Describe(iv Interval) string {
	return clock.Format(iv.Start) + " - " + clock.Format(iv.End)
}

// DescribeDay renders a day heading followed by its intervals, or "unavailable".
func DescribeDay(s *WeeklySchedule, day Day) string {
	list := s.IntervalsFor(day)
	if len(list) == 0 {
		return day.Title() + ": unavailable"
	}
	parts := make([]string, 0, len(list))
	for _, iv := range list {
		parts = append(parts, Describe(iv))
	}
	return fmt.Sprintf("%s: %s", day.Title(), strings.Join(parts, ", "))
}
