// Package input turns external request descriptions into snackbar requests.
package input

import (
	"strings"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// MaxMessageLen bounds the message of an external request.
const MaxMessageLen = 1024

// RequestSpec is the wire form of a show request, shared by the stdin
// adapter and the HTTP API.
type RequestSpec struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	ID      *int   `json:"id,omitempty"`
}

// Request validates s and builds the request.
func (s RequestSpec) Request() (snackbar.Request, error) {
	msg := sanitizeString(s.Message)
	if msg == "" {
		return snackbar.Request{}, &AdapterError{Source: "request", Message: "message is required"}
	}
	if len(msg) > MaxMessageLen {
		return snackbar.Request{}, &AdapterError{Source: "request", Message: "message is too long"}
	}

	var opts []snackbar.RequestOption
	if s.ID != nil {
		opts = append(opts, snackbar.WithID(*s.ID))
	}
	if action := sanitizeString(s.Action); action != "" {
		opts = append(opts, snackbar.WithAction(action))
	}
	return snackbar.NewRequest(msg, opts...), nil
}

// SpecFor returns the RequestSpec describing req.
func SpecFor(req snackbar.Request) RequestSpec {
	s := RequestSpec{
		Message: req.Message(),
		Action:  req.Action(),
	}
	if id, ok := req.ID(); ok {
		s.ID = &id
	}
	return s
}

// sanitizeString replaces control characters with spaces and trims.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// AdapterError represents an input-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
