package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

func mustWeekly(t *testing.T, id int, day, start, end string) Weekly {
	t.Helper()
	w, err := FromWire(id, day, start, end)
	require.NoError(t, err)
	return w
}

func TestOccurrences(t *testing.T) {
	items := []Weekly{
		mustWeekly(t, 1, "MONDAY", "07:00", "09:00"),
		mustWeekly(t, 2, "WEDNESDAY", "11:30", "13:00"),
	}
	// Monday 2026-10-05 .. Monday 2026-10-19 (exclusive)
	from := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	occ, err := Occurrences(items, from, to, time.UTC)
	require.NoError(t, err)
	require.Len(t, occ, 4)

	assert.Equal(t, 1, occ[0].ID)
	assert.WithinDuration(t, time.Date(2026, 10, 5, 7, 0, 0, 0, time.UTC), occ[0].Start, 0)
	assert.WithinDuration(t, time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC), occ[0].End, 0)
	assert.Equal(t, 2, occ[1].ID)
	assert.WithinDuration(t, time.Date(2026, 10, 7, 11, 30, 0, 0, time.UTC), occ[1].Start, 0)
	assert.Equal(t, schedule.Wednesday, occ[1].Day)
	assert.WithinDuration(t, time.Date(2026, 10, 12, 7, 0, 0, 0, time.UTC), occ[2].Start, 0)
}

func TestOccurrencesWindowEdges(t *testing.T) {
	items := []Weekly{mustWeekly(t, 1, "MONDAY", "07:00", "09:00")}
	monday7 := time.Date(2026, 10, 5, 7, 0, 0, 0, time.UTC)

	occ, err := Occurrences(items, monday7, monday7.Add(time.Hour), time.UTC)
	require.NoError(t, err)
	assert.Len(t, occ, 1, "from is inclusive")

	occ, err = Occurrences(items, monday7.Add(-time.Hour), monday7, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, occ, "to is exclusive")

	_, err = Occurrences(items, monday7, monday7, time.UTC)
	assert.Error(t, err)
	_, err = Occurrences(items, monday7, monday7.AddDate(2, 0, 0), time.UTC)
	assert.Error(t, err)
}

func TestOccurrencesInLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	items := []Weekly{mustWeekly(t, 1, "SUNDAY", "22:00", "23:00")}
	from := time.Date(2026, 10, 4, 0, 0, 0, 0, loc)

	occ, err := Occurrences(items, from, from.AddDate(0, 0, 1), loc)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.WithinDuration(t, time.Date(2026, 10, 5, 3, 0, 0, 0, time.UTC), occ[0].Start, 0)
}

func TestFromWireRejects(t *testing.T) {
	_, err := FromWire(1, "FUNDAY", "07:00", "09:00")
	assert.Error(t, err)
	_, err = FromWire(1, "MONDAY", "7:00", "09:00")
	assert.Error(t, err)
}

func TestExportICS(t *testing.T) {
	items := []Weekly{
		mustWeekly(t, 1, "MONDAY", "07:00", "09:00"),
		mustWeekly(t, 2, "SATURDAY", "10:00", "12:00"),
	}
	anchor := time.Date(2026, 10, 7, 12, 0, 0, 0, time.UTC) // Wednesday

	out, err := ExportICS(items, anchor, time.UTC, "example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, "availability-1@example.com", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Date(2026, 10, 12, 7, 0, 0, 0, time.UTC), start, 0)
	rule := events[0].GetProperty(ical.ComponentPropertyRrule)
	require.NotNil(t, rule)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", rule.Value)

	start, err = events[1].GetStartAt()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Date(2026, 10, 10, 10, 0, 0, 0, time.UTC), start, 0)
}
