package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/Nixie-Tech-LLC/availability/internal/reconcile"
	"github.com/Nixie-Tech-LLC/availability/internal/schedule"
)

var errUsage = errors.New("invalid arguments")

var (
	dayColor     = color.New(color.Bold)
	idleColor    = color.New(color.FgHiBlack)
	pendingColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
)

type calendarSource interface {
	Calendar(ctx context.Context) ([]byte, error)
}

type commands struct {
	store    reconcile.Store
	calendar calendarSource
	out      io.Writer
}

func (c *commands) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "show":
		if len(args) != 0 {
			return errUsage
		}
		return c.show(ctx)
	case "add":
		return c.add(ctx, args)
	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		return c.remove(ctx, args[0], args[1])
	case "export":
		if len(args) != 0 {
			return errUsage
		}
		return c.export(ctx)
	}
	return fmt.Errorf("unknown command %q", name)
}

func (c *commands) show(ctx context.Context) error {
	s, err := reconcile.Open(ctx, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, day := range schedule.Week {
		ivs := s.IntervalsFor(day)
		if len(ivs) == 0 {
			dayColor.Fprintf(c.out, "%s: ", day.Title())
			idleColor.Fprintln(c.out, "unavailable")
			continue
		}
		dayColor.Fprintf(c.out, "%s:\n", day.Title())
		for i, iv := range ivs {
			fmt.Fprintf(c.out, "  #%d  %-20s id %s\n", i+1, schedule.Describe(iv), iv.RemoteID)
		}
	}
	return nil
}

// add accepts START and END either as single arguments ("7:00 AM") or split
// into clock and period (7:00 AM).
func (c *commands) add(ctx context.Context, args []string) error {
	var day, start, end string
	switch len(args) {
	case 3:
		day, start, end = args[0], args[1], args[2]
	case 5:
		day, start, end = args[0], args[1]+" "+args[2], args[3]+" "+args[4]
	default:
		return errUsage
	}

	d, err := schedule.ParseDay(day)
	if err != nil {
		return err
	}

	s, err := reconcile.Open(ctx, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Add(d, strings.ToUpper(start), strings.ToUpper(end)); err != nil {
		return err
	}
	return c.commit(ctx, s)
}

func (c *commands) remove(ctx context.Context, day, ref string) error {
	d, err := schedule.ParseDay(day)
	if err != nil {
		return err
	}
	r, err := parseRef(ref)
	if err != nil {
		return err
	}

	s, err := reconcile.Open(ctx, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Remove(d, r)
	if err != nil {
		return err
	}
	if !removed.Persisted() {
		return nil
	}
	return c.commit(ctx, s)
}

func (c *commands) commit(ctx context.Context, s *reconcile.Session) error {
	res, err := s.Commit(ctx)
	for _, iv := range res.Created {
		okColor.Fprintf(c.out, "saved   %s %s (id %s)\n", iv.Day.Title(), schedule.Describe(iv), iv.RemoteID)
	}
	for _, id := range res.Deleted {
		okColor.Fprintf(c.out, "removed id %s\n", id)
	}
	for _, f := range res.Failures {
		failColor.Fprintf(c.out, "failed  %v\n", f)
	}
	if err != nil {
		pendingColor.Fprintln(c.out, "nothing else was changed; run the command again to retry")
		return fmt.Errorf("%d change(s) not saved", len(res.Failures))
	}
	return nil
}

func (c *commands) export(ctx context.Context) error {
	body, err := c.calendar.Calendar(ctx)
	if err != nil {
		return err
	}
	_, err = c.out.Write(body)
	return err
}

// parseRef reads "#N" as a 1-based position and anything else as a remote id.
func parseRef(ref string) (schedule.Ref, error) {
	if pos, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.Atoi(pos)
		if err != nil || n < 1 {
			return schedule.Ref{}, fmt.Errorf("bad position %q", ref)
		}
		return schedule.At(n - 1), nil
	}
	if ref == "" {
		return schedule.Ref{}, errors.New("empty reference")
	}
	return schedule.ByRemoteID(ref), nil
}
