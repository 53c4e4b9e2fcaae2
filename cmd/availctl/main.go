// Command availctl views and edits a weekly availability schedule stored on
// an availability server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/availability/internal/remote"
)

const usage = `usage: availctl [-config path] [-debug] <command>

commands:
  show                   print the week, with ids and positions
  add DAY START END      add a range, e.g. add monday "7:00 AM" "9:30 AM"
  remove DAY REF         remove a range by remote id or by position (#1, #2, ...)
  export                 write the iCalendar feed to stdout
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fl := flag.NewFlagSet("availctl", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fl.String("config", defaultConfigPath(), "path to config file")
	debug := fl.Bool("debug", false, "log remote calls")
	if err := fl.Parse(args); err != nil {
		return 2
	}

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()

	if fl.NArg() == 0 {
		fl.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "availctl: %v\n", err)
		return 1
	}

	client := remote.New(cfg.BaseURL,
		remote.WithToken(cfg.Token),
		remote.WithResource(cfg.Resource),
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	cmd := &commands{store: client, calendar: client, out: stdout}
	if err := cmd.dispatch(ctx, fl.Arg(0), fl.Args()[1:]); err != nil {
		fmt.Fprintf(stderr, "availctl: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}
