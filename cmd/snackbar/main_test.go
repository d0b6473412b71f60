package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/adapter/output"
	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/httpapi"
	"github.com/jmylchreest/snackbar/internal/journal"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/theme"
)

func init() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(i int) *int { return &i }

func TestHistoryFilter(t *testing.T) {
	t.Cleanup(func() { historyOpts.since, historyOpts.event, historyOpts.limit = "", "", 0 })

	historyOpts.since = "2d"
	historyOpts.event = "Action"
	historyOpts.limit = 5
	opts, err := historyFilter()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, opts.Since)
	assert.Equal(t, journal.EventAction, opts.Event)
	assert.Equal(t, 5, opts.Limit)

	historyOpts.event = "clicked"
	_, err = historyFilter()
	assert.Error(t, err)

	historyOpts.event = ""
	historyOpts.since = "soon"
	_, err = historyFilter()
	assert.Error(t, err)
}

func TestOutputEntry(t *testing.T) {
	t.Cleanup(func() { historyOpts.field = "" })

	e := journal.NewEntry(Source, journal.EventAppeared,
		snackbar.NewRequest("Deleted: Shopping", snackbar.WithID(3), snackbar.WithAction("UNDO")))
	entries := []journal.Entry{e}

	var buf bytes.Buffer
	historyOpts.field = "message"
	require.NoError(t, outputEntry(&buf, entries, e.ID, output.FormatPlain))
	assert.Equal(t, "Deleted: Shopping\n", buf.String())

	buf.Reset()
	historyOpts.field = ""
	require.NoError(t, outputEntry(&buf, entries, strings.ToLower(e.ID), output.FormatJSON))
	var decoded journal.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, e.ID, decoded.ID)

	assert.Error(t, outputEntry(&buf, entries, "ZZZZ", output.FormatPlain))
}

func TestClearJournal(t *testing.T) {
	path := t.TempDir() + "/journal.jsonl"
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(journal.NewEntry(Source, journal.EventAppeared, snackbar.NewRequest("A"))))
	require.NoError(t, j.Close())

	var buf bytes.Buffer
	require.NoError(t, clearJournal(&buf, path))
	assert.Contains(t, buf.String(), "Cleared 1 entries")

	entries, err := journal.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeNotifier struct {
	sent   []string
	closed []uint32
	nextID uint32
}

func (n *fakeNotifier) Notify(_ context.Context, message, action string, replacesID uint32) (uint32, error) {
	n.sent = append(n.sent, message+"|"+action)
	if replacesID != 0 {
		return replacesID, nil
	}
	n.nextID++
	return n.nextID, nil
}

func (n *fakeNotifier) Close(_ context.Context, id uint32) error {
	n.closed = append(n.closed, id)
	return nil
}

func TestSendLines(t *testing.T) {
	n := &fakeNotifier{}
	in := strings.NewReader("Saved\n\n{\"message\":\"Deleted: Shopping\",\"action\":\"UNDO\",\"id\":9}\n{bad\n")

	var out bytes.Buffer
	require.NoError(t, sendLines(context.Background(), n, in, &out))

	assert.Equal(t, []string{"Saved|", "Deleted: Shopping|UNDO"}, n.sent)
	assert.Equal(t, "1\n9\n", out.String())
}

func TestCloseNotification(t *testing.T) {
	n := &fakeNotifier{}
	require.NoError(t, closeNotification(context.Background(), n, 7))
	assert.Equal(t, []uint32{7}, n.closed)
}

func TestStatusFromState(t *testing.T) {
	tests := []struct {
		name  string
		state httpapi.StateResponse
		want  WaybarStatus
	}{
		{
			name:  "hidden",
			state: httpapi.StateResponse{Visibility: "hidden"},
			want:  WaybarStatus{Alt: "hidden", Class: "hidden", Tooltip: "No snackbar"},
		},
		{
			name: "visible with action and pending",
			state: httpapi.StateResponse{
				Visibility: "disappearing",
				Current:    &input.RequestSpec{Message: "Deleted: Shopping", Action: "UNDO", ID: intPtr(3)},
				Pending:    &input.RequestSpec{Message: "Saved"},
			},
			want: WaybarStatus{
				Text:    "Deleted: Shopping",
				Alt:     "disappearing",
				Class:   "disappearing",
				Tooltip: "Deleted: Shopping [UNDO]\nNext: Saved",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromState(tt.state))
		})
	}
}

type statePresenter struct {
	snackbar.Presenter
	state snackbar.State
}

func (p statePresenter) State(context.Context) (snackbar.State, error) { return p.state, nil }

func TestFetchState(t *testing.T) {
	req := snackbar.NewRequest("Saved")
	router := httpapi.NewRouter(httpapi.Options{
		Presenter: statePresenter{state: snackbar.State{Visibility: snackbar.Visible, Generation: 2, Current: &req}},
		Logger:    logger,
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	st, err := fetchState(context.Background(), srv.Client(), srv.URL+"/state")
	require.NoError(t, err)
	assert.Equal(t, "visible", st.Visibility)
	require.NotNil(t, st.Current)
	assert.Equal(t, "Saved", st.Current.Message)

	_, err = fetchState(context.Background(), srv.Client(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestWaybarOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputStatus(&buf, WaybarStatus{Text: "Saved", Class: "visible"}))
	assert.JSONEq(t, `{"text":"Saved","class":"visible"}`, buf.String())
}

func TestListThemes(t *testing.T) {
	dir := t.TempDir()
	infos, err := theme.ListAvailableThemes(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, listThemes(&buf, infos, dir, "minimal"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(infos))
	assert.Contains(t, buf.String(), "* minimal")
	assert.Contains(t, buf.String(), "Deleted: Shopping")
	assert.Contains(t, buf.String(), "bundled")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snackbar", "snackbar.toml")

	var buf bytes.Buffer
	require.NoError(t, initConfig(&buf, path, false))
	assert.Equal(t, "Wrote "+path+"\n", buf.String())

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), loaded)

	assert.ErrorContains(t, initConfig(&buf, path, false), "already exists")
	assert.NoError(t, initConfig(&buf, path, true))
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, "/tmp/snackbar.toml", config.DefaultConfig()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# /tmp/snackbar.toml\n"))
	assert.Contains(t, out, "[snackbar]")
	assert.Regexp(t, `visible_duration = .2s.`, out)
}
