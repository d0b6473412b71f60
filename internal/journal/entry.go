// Package journal records snackbar lifecycle events as JSONL and reads them
// back for the history command.
package journal

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Event is the kind of lifecycle event an Entry records.
type Event string

const (
	EventAppeared    Event = "appeared"
	EventDisappeared Event = "disappeared"
	EventAction      Event = "action"
)

// ParseEvent parses an event name.
func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToLower(strings.TrimSpace(s))); e {
	case EventAppeared, EventDisappeared, EventAction:
		return e, nil
	default:
		return "", fmt.Errorf("invalid event: %s (use appeared, disappeared, or action)", s)
	}
}

// Entry is one journal line.
type Entry struct {
	ID        string `json:"id" yaml:"id"`               // ULID
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // Unix milliseconds
	Source    string `json:"source" yaml:"source"`       // Process that recorded the entry
	Event     Event  `json:"event" yaml:"event"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"` // Disappeared only

	RequestID *int   `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Message   string `json:"message" yaml:"message"`
	Action    string `json:"action,omitempty" yaml:"action,omitempty"`
}

// NewEntry creates an Entry for req stamped with the current time.
func NewEntry(source string, event Event, req snackbar.Request) Entry {
	now := time.Now()
	e := Entry{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Timestamp: now.UnixMilli(),
		Source:    source,
		Event:     event,
		Message:   req.Message(),
		Action:    req.Action(),
	}
	if id, ok := req.ID(); ok {
		e.RequestID = &id
	}
	return e
}

// Time returns the entry timestamp.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Validate checks the required fields.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry has no id")
	}
	if _, err := ulid.ParseStrict(e.ID); err != nil {
		return fmt.Errorf("invalid entry id %q: %w", e.ID, err)
	}
	if _, err := ParseEvent(string(e.Event)); err != nil {
		return err
	}
	if e.Event == EventDisappeared {
		if _, err := snackbar.ParseReason(e.Reason); err != nil {
			return err
		}
	}
	return nil
}
