package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/httpapi"
)

var statusOpts struct {
	addr string
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the snackbar shown by snackbard in Waybar's custom module JSON
format. Requires the daemon's HTTP interface ([http] enabled = true).

  "custom/snackbar": {
    "exec": "snackbar status",
    "interval": 1,
    "return-type": "json"
  }

The output includes:
  - text: Message on screen, empty when hidden
  - alt, class: Visibility (hidden, appearing, visible, disappearing) or error
  - tooltip: Action label and the queued request, if any`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusOpts.addr, "addr", "",
		"snackbard HTTP address (default: [http] listen from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	addr := statusOpts.addr
	if addr == "" {
		addr = cfg.HTTP.Listen
	}

	st, err := fetchState(ctx, http.DefaultClient, "http://"+addr+"/state")
	if err != nil {
		logger.Debug("failed to fetch state", "addr", addr, "error", err)
		return outputStatus(cmd.OutOrStdout(), WaybarStatus{Alt: "error", Class: "error", Tooltip: "snackbard unreachable"})
	}
	return outputStatus(cmd.OutOrStdout(), statusFromState(st))
}

// fetchState reads GET /state from url.
func fetchState(ctx context.Context, client *http.Client, url string) (httpapi.StateResponse, error) {
	var st httpapi.StateResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return st, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return st, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("failed to decode state: %w", err)
	}
	return st, nil
}

// statusFromState creates a WaybarStatus from a state snapshot.
func statusFromState(st httpapi.StateResponse) WaybarStatus {
	status := WaybarStatus{
		Alt:   st.Visibility,
		Class: st.Visibility,
	}

	if st.Current == nil || st.Visibility == "hidden" {
		status.Tooltip = "No snackbar"
		return status
	}

	status.Text = st.Current.Message
	tooltip := st.Current.Message
	if st.Current.Action != "" {
		tooltip += " [" + st.Current.Action + "]"
	}
	if st.Pending != nil {
		tooltip += "\nNext: " + st.Pending.Message
	}
	status.Tooltip = tooltip
	return status
}

// outputStatus writes the status as JSON.
func outputStatus(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
