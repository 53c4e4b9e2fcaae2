package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/availability/internal/clock"
	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

var (
	ErrCommitInProgress = errors.New("a commit is already in progress")
	ErrClosed           = errors.New("session closed")
)

// Session owns one WeeklySchedule for the lifetime of one editing screen.
// Remote completions that arrive after Close are dropped.
type Session struct {
	mu         sync.Mutex
	sched      *schedule.WeeklySchedule
	reconciler *Reconciler
	closed     bool
	committing bool
}

// Open hydrates a new session from the store. Rows that do not parse or
// validate are logged and left out.
func Open(ctx context.Context, store Store) (*Session, error) {
	rows, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	sched := schedule.New()
	for _, row := range rows {
		iv, err := fromRemote(string(row.ID), row.DayOfWeek, row.StartTime, row.EndTime)
		if err != nil {
			log.Warn().Err(err).Str("remote_id", string(row.ID)).Msg("skipping stored availability")
			continue
		}
		if err := sched.Add(iv.Day, iv); err != nil {
			log.Warn().Err(err).Str("remote_id", string(row.ID)).Msg("skipping stored availability")
		}
	}

	return &Session{sched: sched, reconciler: NewReconciler(store)}, nil
}

func fromRemote(id, day, start, end string) (schedule.Interval, error) {
	d, err := schedule.ParseDay(day)
	if err != nil {
		return schedule.Interval{}, err
	}
	s, err := clock.ParseWire(start)
	if err != nil {
		return schedule.Interval{}, err
	}
	e, err := clock.ParseWire(end)
	if err != nil {
		return schedule.Interval{}, err
	}
	iv, err := schedule.Validate(d, s, e)
	if err != nil {
		return schedule.Interval{}, err
	}
	iv.RemoteID = id
	return iv, nil
}

// Add parses start and end ("7:00 AM"), validates the pair and appends it to
// day as an uncommitted interval.
func (s *Session) Add(day schedule.Day, start, end string) (schedule.Interval, error) {
	st, err := clock.Parse(start)
	if err != nil {
		return schedule.Interval{}, err
	}
	en, err := clock.Parse(end)
	if err != nil {
		return schedule.Interval{}, err
	}
	return s.AddTimes(day, st, en)
}

// AddTimes validates already parsed endpoints and appends the interval.
func (s *Session) AddTimes(day schedule.Day, start, end clock.TimeOfDay) (schedule.Interval, error) {
	iv, err := schedule.Validate(day, start, end)
	if err != nil {
		return schedule.Interval{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return schedule.Interval{}, ErrClosed
	}
	if err := s.sched.Add(day, iv); err != nil {
		return schedule.Interval{}, err
	}
	return iv, nil
}

// Remove drops an interval locally. Persisted intervals are deleted remotely
// on the next Commit.
func (s *Session) Remove(day schedule.Day, ref schedule.Ref) (schedule.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return schedule.Interval{}, ErrClosed
	}
	return s.sched.Remove(day, ref)
}

// IntervalsFor returns day's intervals in insertion order.
func (s *Session) IntervalsFor(day schedule.Day) []schedule.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.IntervalsFor(day)
}

// PendingCreates lists intervals without a remote id.
func (s *Session) PendingCreates() []schedule.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.PendingCreates()
}

// PendingDeletes lists remote ids awaiting a confirmed delete.
func (s *Session) PendingDeletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.PendingDeletes()
}

// Describe renders every day of the week, one line each.
func (s *Session) Describe() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(schedule.Week))
	for _, d := range schedule.Week {
		out = append(out, schedule.DescribeDay(s.sched, d))
	}
	return out
}

// Commit sends every pending create and delete. Failed items stay pending so
// calling Commit again retries exactly those. The returned error joins the
// individual *SyncError values.
func (s *Session) Commit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}
	if s.committing {
		s.mu.Unlock()
		return Result{}, ErrCommitInProgress
	}
	s.committing = true
	creates := s.sched.PendingCreates()
	deletes := s.sched.PendingDeletes()
	s.mu.Unlock()

	res := s.reconciler.Commit(ctx, s, creates, deletes)

	s.mu.Lock()
	s.committing = false
	s.mu.Unlock()

	log.Info().
		Int("created", len(res.Created)).
		Int("deleted", len(res.Deleted)).
		Int("failed", len(res.Failures)).
		Msg("schedule commit finished")
	return res, res.Err()
}

// Persisted implements Target.
func (s *Session) Persisted(iv schedule.Interval, remoteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Debug().Str("remote_id", remoteID).Msg("dropping create completion for closed session")
		return
	}
	if _, err := s.sched.MarkPersisted(iv.Key, remoteID); err != nil {
		log.Error().Err(err).Str("remote_id", remoteID).Msg("could not attach remote id")
	}
}

// Deleted implements Target.
func (s *Session) Deleted(remoteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sched.ConfirmDeleted(remoteID)
}

// Close discards the schedule. Commits still in flight finish, but their
// results are not applied.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sched = schedule.New()
}
