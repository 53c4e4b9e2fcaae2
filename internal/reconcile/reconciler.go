// Package reconcile pushes local weekly schedule edits to the remote
// availability store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/availability/internal/clock"
	"github.com/Nixie-Tech-LLC/availability/internal/remote"
	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

// ErrSync matches every *SyncError.
var ErrSync = errors.New("sync failed")

type Op string

const (
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

// SyncError names the interval or remote id whose remote call failed.
type SyncError struct {
	Op       Op
	Interval schedule.Interval // set for creates
	RemoteID string            // set for deletes
	Err      error
}

func (e *SyncError) Error() string {
	if e.Op == OpCreate {
		return fmt.Sprintf("%s: create %s %s: %v", ErrSync, e.Interval.Day.Title(), schedule.Describe(e.Interval), e.Err)
	}
	return fmt.Sprintf("%s: delete %s: %v", ErrSync, e.RemoteID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func (e *SyncError) Is(target error) bool { return target == ErrSync }

// Store is the remote side of the availability resource.
type Store interface {
	List(ctx context.Context) ([]remote.Availability, error)
	Create(ctx context.Context, in remote.CreateAvailability, idempotencyKey string) (remote.Availability, error)
	Delete(ctx context.Context, id string) error
}

// Target receives the outcome of each remote call as it completes.
type Target interface {
	Persisted(iv schedule.Interval, remoteID string)
	Deleted(remoteID string)
}

// Result summarises one commit.
type Result struct {
	Created  []schedule.Interval
	Deleted  []string
	Failures []*SyncError
}

// OK reports whether every call in the batch succeeded.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// Err joins the failures, or returns nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Commit issues one create per pending interval and one delete per pending
// remote id, concurrently. Each call is independent: a failure leaves its item
// pending and does not stop the others. Nothing is retried here.
func (r *Reconciler) Commit(ctx context.Context, target Target, creates []schedule.Interval, deletes []string) Result {
	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)

	for _, iv := range creates {
		wg.Add(1)
		go func(iv schedule.Interval) {
			defer wg.Done()
			created, err := r.store.Create(ctx, remote.CreateAvailability{
				DayOfWeek: iv.Day.String(),
				StartTime: clock.FormatWire(iv.Start),
				EndTime:   clock.FormatWire(iv.End),
			}, iv.Key.String())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("day", iv.Day.String()).Str("interval", schedule.Describe(iv)).Msg("availability create failed")
				res.Failures = append(res.Failures, &SyncError{Op: OpCreate, Interval: iv, Err: err})
				return
			}
			target.Persisted(iv, string(created.ID))
			iv.RemoteID = string(created.ID)
			res.Created = append(res.Created, iv)
		}(iv)
	}

	for _, id := range deletes {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := r.store.Delete(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("remote_id", id).Msg("availability delete failed")
				res.Failures = append(res.Failures, &SyncError{Op: OpDelete, RemoteID: id, Err: err})
				return
			}
			target.Deleted(id)
			res.Deleted = append(res.Deleted, id)
		}(id)
	}

	wg.Wait()
	return res
}
