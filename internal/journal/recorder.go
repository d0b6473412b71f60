package journal

import (
	"log/slog"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// appender is the part of Journal a Recorder writes to.
type appender interface {
	Append(e Entry) error
}

// Recorder is a snackbar.Delegate that journals every lifecycle event.
// Write failures are logged and never reach the state machine.
type Recorder struct {
	journal appender
	source  string
	logger  *slog.Logger
}

var _ snackbar.Delegate = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to j. source names the recording
// process in each entry.
func NewRecorder(j *Journal, source string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{journal: j, source: source, logger: logger}
}

func (r *Recorder) record(e Entry) {
	if err := r.journal.Append(e); err != nil {
		r.logger.Warn("failed to journal event", "event", e.Event, "message", e.Message, "error", err)
	}
}

// Appeared implements snackbar.Delegate.
func (r *Recorder) Appeared(req snackbar.Request) {
	r.record(NewEntry(r.source, EventAppeared, req))
}

// Disappeared implements snackbar.Delegate.
func (r *Recorder) Disappeared(req snackbar.Request, reason snackbar.Reason) {
	e := NewEntry(r.source, EventDisappeared, req)
	e.Reason = reason.String()
	r.record(e)
}

// ActionTriggered implements snackbar.Delegate.
func (r *Recorder) ActionTriggered(req snackbar.Request) {
	r.record(NewEntry(r.source, EventAction, req))
}
