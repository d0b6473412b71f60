package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

var sendOpts struct {
	action  string
	id      uint32
	close   uint32
	stdin   bool
	timeout time.Duration
}

// notifier is the part of dbus.Client send needs.
type notifier interface {
	Notify(ctx context.Context, message, action string, replacesID uint32) (uint32, error)
	Close(ctx context.Context, id uint32) error
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Show a message on a running snackbard",
	Long: `Send a message to snackbard (or any org.freedesktop.Notifications
server) over the D-Bus session bus. The returned notification id is printed.

With --stdin, one request is read per line: plain text, or JSON such as
{"message": "Deleted: Shopping", "action": "UNDO", "id": 3}.

Examples:
  snackbar send "Saved"
  snackbar send "Deleted: Shopping" --action UNDO
  snackbar send --close 7
  printf 'one\ntwo\n' | snackbar send --stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.action, "action", "a", "",
		"Action label shown next to the message (e.g., UNDO)")
	sendCmd.Flags().Uint32Var(&sendOpts.id, "id", 0,
		"Notification id to replace (0=new)")
	sendCmd.Flags().Uint32Var(&sendOpts.close, "close", 0,
		"Close the notification with this id instead of sending")
	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read requests from stdin, one per line")
	sendCmd.Flags().DurationVar(&sendOpts.timeout, "timeout", 5*time.Second,
		"Timeout for each D-Bus call")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendOpts.close == 0 && !sendOpts.stdin && len(args) == 0 {
		return errors.New("specify a message, --stdin or --close")
	}

	client, err := dbus.NewClient(cfg.DBus.BusName)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case sendOpts.close != 0:
		return closeNotification(ctx, client, sendOpts.close)
	case sendOpts.stdin:
		return sendLines(ctx, client, os.Stdin, out)
	default:
		return sendOne(ctx, client, out, args[0], sendOpts.action, sendOpts.id)
	}
}

func closeNotification(ctx context.Context, n notifier, id uint32) error {
	ctx, cancel := context.WithTimeout(ctx, sendOpts.timeout)
	defer cancel()
	return n.Close(ctx, id)
}

func sendOne(ctx context.Context, n notifier, w io.Writer, message, action string, replacesID uint32) error {
	ctx, cancel := context.WithTimeout(ctx, sendOpts.timeout)
	defer cancel()

	id, err := n.Notify(ctx, message, action, replacesID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, id)
	return err
}

// sendLines sends every request read from r. Invalid lines are reported and
// skipped.
func sendLines(ctx context.Context, n notifier, r io.Reader, w io.Writer) error {
	adapter := input.NewStdinAdapterWithReader(r)
	return adapter.Each(ctx, func(req snackbar.Request) error {
		var replacesID uint32
		if id, ok := req.ID(); ok && id > 0 {
			replacesID = uint32(id)
		}
		return sendOne(ctx, n, w, req.Message(), req.Action(), replacesID)
	}, func(line int, err error) {
		logger.Warn("skipping invalid input line", "line", line, "error", err)
	})
}
