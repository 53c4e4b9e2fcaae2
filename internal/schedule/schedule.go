package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvariantViolation means a caller handed the model an interval that
	// should never have passed Validate.
	ErrInvariantViolation = errors.New("schedule invariant violation")
	ErrNotFound           = errors.New("interval not found")
)

// Ref addresses an interval within a day, either by its position in the day's
// sequence or by its remote id.
type Ref struct {
	position int
	remoteID string
}

// At refers to the interval at index i of the day.
func At(i int) Ref { return Ref{position: i} }

// ByRemoteID refers to the persisted interval with the given id.
func ByRemoteID(id string) Ref { return Ref{position: -1, remoteID: id} }

func (r Ref) String() string {
	if r.remoteID != "" {
		return "id " + r.remoteID
	}
	return fmt.Sprintf("#%d", r.position)
}

// WeeklySchedule holds one user's intervals for one editing session.
//
// Intervals without a RemoteID are pending creates. PendingDeletion holds the
// remote ids of intervals the user removed locally that the store has not yet
// confirmed deleted. It is not safe for concurrent use.
type WeeklySchedule struct {
	days            map[Day][]Interval
	pendingDeletion map[string]struct{}
}

func New() *WeeklySchedule {
	return &WeeklySchedule{
		days:            make(map[Day][]Interval),
		pendingDeletion: make(map[string]struct{}),
	}
}

// Add appends iv to day. The interval must already have passed Validate.
func (s *WeeklySchedule) Add(day Day, iv Interval) error {
	if err := checkInvariants(day, iv); err != nil {
		log.Error().Err(err).
			Str("day", day.String()).
			Str("start", iv.Start.String()).
			Str("end", iv.End.String()).
			Msg("rejected interval")
		return err
	}
	if iv.Key == uuid.Nil {
		iv.Key = uuid.New()
	}
	s.days[day] = append(s.days[day], iv)
	return nil
}

func checkInvariants(day Day, iv Interval) error {
	switch {
	case !day.Valid():
		return fmt.Errorf("%w: unknown day %d", ErrInvariantViolation, int(day))
	case iv.Day != day:
		return fmt.Errorf("%w: interval for %s added to %s", ErrInvariantViolation, iv.Day, day)
	case iv.Start.IsZero() || iv.End.IsZero():
		return fmt.Errorf("%w: missing endpoint", ErrInvariantViolation)
	case iv.Start.MinuteOfDay() >= iv.End.MinuteOfDay():
		return fmt.Errorf("%w: %s - %s is inverted", ErrInvariantViolation, iv.Start, iv.End)
	}
	return nil
}

// Remove takes the referenced interval out of day and returns it. A persisted
// interval's RemoteID moves to PendingDeletion.
func (s *WeeklySchedule) Remove(day Day, ref Ref) (Interval, error) {
	list := s.days[day]
	idx := -1
	if ref.remoteID != "" {
		for i, iv := range list {
			if iv.RemoteID == ref.remoteID {
				idx = i
				break
			}
		}
	} else if ref.position >= 0 && ref.position < len(list) {
		idx = ref.position
	}
	if idx < 0 {
		return Interval{}, fmt.Errorf("%w: %s on %s", ErrNotFound, ref, day.Title())
	}

	removed := list[idx]
	next := make([]Interval, 0, len(list)-1)
	next = append(next, list[:idx]...)
	next = append(next, list[idx+1:]...)
	s.days[day] = next

	if removed.Persisted() {
		s.pendingDeletion[removed.RemoteID] = struct{}{}
	}
	return removed, nil
}

// IntervalsFor returns a copy of day's intervals in insertion order.
func (s *WeeklySchedule) IntervalsFor(day Day) []Interval {
	list := s.days[day]
	out := make([]Interval, len(list))
	copy(out, list)
	return out
}

// Len counts intervals across the week.
func (s *WeeklySchedule) Len() int {
	n := 0
	for _, list := range s.days {
		n += len(list)
	}
	return n
}

// PendingCreates lists intervals not yet confirmed by the store, Monday first.
func (s *WeeklySchedule) PendingCreates() []Interval {
	var out []Interval
	for _, d := range Week {
		for _, iv := range s.days[d] {
			if !iv.Persisted() {
				out = append(out, iv)
			}
		}
	}
	return out
}

// PendingDeletes lists the PendingDeletion set, sorted.
func (s *WeeklySchedule) PendingDeletes() []string {
	out := make([]string, 0, len(s.pendingDeletion))
	for id := range s.pendingDeletion {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dirty reports whether anything awaits a commit.
func (s *WeeklySchedule) Dirty() bool {
	return len(s.pendingDeletion) > 0 || len(s.PendingCreates()) > 0
}

// MarkPersisted attaches remoteID to the interval with the given key. It
// reports false when the interval is gone, in which case the id is queued for
// deletion so the orphaned remote row is removed on the next commit.
func (s *WeeklySchedule) MarkPersisted(key uuid.UUID, remoteID string) (bool, error) {
	if remoteID == "" {
		return false, fmt.Errorf("%w: empty remote id", ErrInvariantViolation)
	}
	for d, list := range s.days {
		for i := range list {
			if list[i].Key != key {
				continue
			}
			if list[i].Persisted() && list[i].RemoteID != remoteID {
				return false, fmt.Errorf("%w: interval already persisted as %s", ErrInvariantViolation, list[i].RemoteID)
			}
			s.days[d][i].RemoteID = remoteID
			return true, nil
		}
	}
	s.pendingDeletion[remoteID] = struct{}{}
	return false, nil
}

// ConfirmDeleted clears remoteID from PendingDeletion.
func (s *WeeklySchedule) ConfirmDeleted(remoteID string) {
	delete(s.pendingDeletion, remoteID)
}
