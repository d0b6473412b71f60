package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/adapter/output"
	"github.com/jmylchreest/snackbar/internal/journal"
)

var historyOpts struct {
	// Filter options
	since  string
	event  string
	reason string
	search string
	limit  int

	// Output options
	format   string
	field    string
	template string
	index    bool

	follow bool
	clear  bool
}

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the snackbar lifecycle journal",
	Long: `Show the journal of appeared, disappeared and action events written by
snackbar and snackbard.

With an id argument (a ULID or unique prefix), outputs that entry only.

Examples:
  # Everything from the last hour
  snackbar history --since 1h

  # Snackbars the user undid
  snackbar history --event action

  # Snackbars replaced before their time was up
  snackbar history --reason overridden --format json

  # Message of one entry
  snackbar history 01J9Z --field message

  # Keep printing new events
  snackbar history --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Show events from the last duration (e.g., 1h, 7d, 1w)")
	historyCmd.Flags().StringVar(&historyOpts.event, "event", "",
		"Filter by event (appeared, disappeared, action)")
	historyCmd.Flags().StringVar(&historyOpts.reason, "reason", "",
		"Filter by disappear reason (timer, user, overridden)")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search in message and action")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of events to show, newest kept (0=unlimited)")

	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field of the entry given as argument (id, event, reason, message, action, request_id, time)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Custom Go template for plain output")
	historyCmd.Flags().BoolVar(&historyOpts.index, "index", false,
		"Prefix plain output with a 1-based index")

	historyCmd.Flags().BoolVar(&historyOpts.follow, "follow", false,
		"Keep running and print new events as they are written")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false,
		"Remove all events from the journal")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := cfg.JournalPath()
	out := cmd.OutOrStdout()

	if historyOpts.clear {
		return clearJournal(out, path)
	}

	format, err := output.ParseFormat(historyOpts.format)
	if err != nil {
		return err
	}
	filter, err := historyFilter()
	if err != nil {
		return err
	}

	entries, err := journal.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	logger.Debug("read journal", "path", path, "count", len(entries))

	if len(args) > 0 {
		return outputEntry(out, entries, args[0], format)
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	opts.ShowIndex = historyOpts.index
	formatter := output.NewFormatter(format, opts)

	if err := formatter.Format(out, journal.Filter(entries, filter)); err != nil {
		return err
	}

	if historyOpts.follow {
		return followJournal(cmd.Context(), out, path, filter, format, opts)
	}
	return nil
}

// historyFilter builds the filter from the command line flags.
func historyFilter() (journal.FilterOptions, error) {
	opts := journal.FilterOptions{
		Reason: historyOpts.reason,
		Search: historyOpts.search,
		Limit:  historyOpts.limit,
	}

	if historyOpts.since != "" {
		d, err := journal.ParseDuration(historyOpts.since)
		if err != nil {
			return opts, fmt.Errorf("invalid --since: %w", err)
		}
		opts.Since = d
	}

	if historyOpts.event != "" {
		e, err := journal.ParseEvent(historyOpts.event)
		if err != nil {
			return opts, err
		}
		opts.Event = e
	}

	return opts, nil
}

// outputEntry prints the entry matching id.
func outputEntry(w io.Writer, entries []journal.Entry, id string, format output.FormatType) error {
	e := journal.LookupByID(entries, id)
	if e == nil {
		return fmt.Errorf("no unique entry matches %q", id)
	}

	if historyOpts.field != "" {
		_, err := fmt.Fprintln(w, output.FormatField(e, historyOpts.field))
		return err
	}
	if format == output.FormatJSON {
		return output.NewJSONFormatter(output.DefaultFormatterOptions()).FormatSingle(w, e)
	}
	return output.NewFormatter(format, output.DefaultFormatterOptions()).Format(w, []journal.Entry{*e})
}

// followJournal prints entries appended to the journal until interrupted.
func followJournal(ctx context.Context, w io.Writer, path string, filter journal.FilterOptions,
	format output.FormatType, opts output.FormatterOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Arrays would never be closed while following
	opts.JSONLines = true
	opts.ShowIndex = false
	formatter := output.NewFormatter(format, opts)

	// Age and count limits only apply to the initial listing
	filter.Since = 0
	filter.Limit = 0

	entries := make(chan journal.Entry, 64)
	follower, err := journal.NewFollower(path, func(e journal.Entry) {
		select {
		case entries <- e:
		case <-ctx.Done():
		}
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to follow journal: %w", err)
	}
	if err := follower.Start(); err != nil {
		_ = follower.Stop()
		return fmt.Errorf("failed to follow journal: %w", err)
	}
	defer func() { _ = follower.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-entries:
			matched := journal.Filter([]journal.Entry{e}, filter)
			if len(matched) == 0 {
				continue
			}
			if err := formatter.Format(w, matched); err != nil {
				return err
			}
		}
	}
}

// clearJournal empties the journal at path.
func clearJournal(w io.Writer, path string) error {
	j, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Load()
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	if err := j.Clear(); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	_, err = fmt.Fprintf(w, "Cleared %d entries from %s (backup: %s.bak)\n", len(entries), j.Path(), j.Path())
	return err
}
