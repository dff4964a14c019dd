// Package main is schedctl, a command-line client for the schedule store.
// It runs a full editing session against a server, so edits from the
// command line merge with concurrent edits exactly as browser edits do.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/google/uuid"

	"github.com/hwang1401/travel-planner/internal/client"
	"github.com/hwang1401/travel-planner/internal/domain"
	"github.com/hwang1401/travel-planner/internal/schedule"
)

const version = "0.1.0"

const usage = `Schedule control.

Days are addressed by their storage index, shown in brackets by show.

Usage:
    schedctl show [options] <trip_id>
    schedctl watch [options] <trip_id>
    schedctl add [options] <trip_id> <day> <time> <desc>
    schedctl rename-day [options] <trip_id> <day> <label>
    schedctl add-day [options] <trip_id> <label>
    schedctl delete-day [options] <trip_id> <day>

Options:
    -h --help                Show this screen.
    --version                Show version.
    --addr=<addr>            Store base URL [default: http://localhost:8080].
    --client=<client_id>     Client identity stamped on saves.
    --section=<section>      Section index to add to. Without it the item is
                             placed by its time.
    -v --verbose             Log session events to stderr.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if verbose, _ := opts.Bool("--verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "schedctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts docopt.Opts, logger *slog.Logger, out io.Writer) error {
	addr, _ := opts.String("--addr")
	store, err := client.New(addr, client.WithLogger(logger))
	if err != nil {
		return err
	}
	tripArg, _ := opts.String("<trip_id>")
	tripID, err := uuid.Parse(tripArg)
	if err != nil {
		return fmt.Errorf("invalid trip id %q: %w", tripArg, err)
	}

	if show, _ := opts.Bool("show"); show {
		snap, err := store.Load(ctx, tripID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d\n", snap.Version)
		printDays(out, schedule.Render(schedule.Normalize(snap.Data)))
		return nil
	}

	sessOpts := []schedule.Option{
		schedule.WithLogger(logger),
		schedule.WithNoticeHandler(func(n schedule.Notice) {
			if n.Err != nil {
				logger.Warn("session notice", "kind", string(n.Kind), "error", n.Err)
			}
		}),
	}
	if id, _ := opts.String("--client"); id != "" {
		sessOpts = append(sessOpts, schedule.WithClientID(id))
	}

	if watch, _ := opts.Bool("watch"); watch {
		return watchTrip(ctx, store, tripID, sessOpts, out)
	}

	sess := schedule.NewSession(store, tripID, sessOpts...)
	if err := sess.Open(ctx); err != nil {
		return err
	}
	editErr := edit(ctx, sess, opts)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sess.Close(closeCtx); err != nil && editErr == nil {
		editErr = err
	}
	if editErr != nil {
		return editErr
	}
	_, saved := sess.Versions()
	fmt.Fprintf(out, "saved version %d\n", saved)
	return nil
}

func edit(ctx context.Context, sess *schedule.Session, opts docopt.Opts) error {
	switch {
	case flag(opts, "add"):
		day, err := intArg(opts, "<day>")
		if err != nil {
			return err
		}
		at, _ := opts.String("<time>")
		desc, _ := opts.String("<desc>")
		item := domain.Item{Time: at, Desc: desc}
		if sectionArg, _ := opts.String("--section"); sectionArg != "" {
			section, err := strconv.Atoi(sectionArg)
			if err != nil {
				return fmt.Errorf("invalid section %q", sectionArg)
			}
			return sess.AddItem(ctx, day, section, item)
		}
		return sess.AddExtraItem(ctx, day, item)

	case flag(opts, "rename-day"):
		day, err := intArg(opts, "<day>")
		if err != nil {
			return err
		}
		label, _ := opts.String("<label>")
		return sess.RenameDay(ctx, day, label)

	case flag(opts, "add-day"):
		label, _ := opts.String("<label>")
		return sess.AddDay(ctx, domain.Day{Label: label})

	case flag(opts, "delete-day"):
		day, err := intArg(opts, "<day>")
		if err != nil {
			return err
		}
		return sess.DeleteDay(ctx, day)
	}
	return fmt.Errorf("unknown command")
}

// watchTrip prints the rendered schedule every time it changes until ctx is
// cancelled.
func watchTrip(ctx context.Context, store domain.Store, tripID uuid.UUID, sessOpts []schedule.Option, out io.Writer) error {
	changes := make(chan struct{}, 1)
	sessOpts = append(sessOpts, schedule.WithChangeHandler(func(domain.Document) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}))
	sess := schedule.NewSession(store, tripID, sessOpts...)
	if err := sess.Open(ctx); err != nil {
		return err
	}
	defer sess.Close(context.Background())

	printDays(out, sess.Render())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			received, _ := sess.Versions()
			fmt.Fprintf(out, "\n--- version %d ---\n", received)
			printDays(out, sess.Render())
		}
	}
}

func printDays(out io.Writer, days []schedule.RenderedDay) {
	for _, d := range days {
		fmt.Fprintf(out, "[%d] %s", d.Index, d.Label)
		if d.Date != "" {
			fmt.Fprintf(out, " (%s)", d.Date)
		}
		fmt.Fprintln(out)
		for _, s := range d.Sections {
			if s.Title != "" {
				fmt.Fprintf(out, "  %s\n", s.Title)
			}
			for _, it := range s.Items {
				mark := " "
				if it.Extra {
					mark = "+"
				}
				fmt.Fprintf(out, "   %s %-5s %s\n", mark, it.Time, it.Desc)
			}
		}
	}
}

func flag(opts docopt.Opts, name string) bool {
	v, _ := opts.Bool(name)
	return v
}

func intArg(opts docopt.Opts, name string) (int, error) {
	s, _ := opts.String(name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}
