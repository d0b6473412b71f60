package snackbar

import (
	"fmt"
	"strconv"
)

// Request is the payload of a single Show call. It is immutable once built.
type Request struct {
	id         int
	hasID      bool
	message    string
	action     string
	attachment any
	generation uint64 // Set when the request becomes current
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithID sets the caller supplied correlation id.
func WithID(id int) RequestOption {
	return func(r *Request) {
		r.id = id
		r.hasID = true
	}
}

// WithAction sets the label of the action control (e.g. "UNDO").
func WithAction(label string) RequestOption {
	return func(r *Request) {
		r.action = label
	}
}

// WithAttachment stores caller data that is handed back unchanged in
// delegate callbacks.
func WithAttachment(v any) RequestOption {
	return func(r *Request) {
		r.attachment = v
	}
}

// NewRequest builds a Request for message.
func NewRequest(message string, opts ...RequestOption) Request {
	r := Request{message: message}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ID returns the correlation id and whether one was set.
func (r Request) ID() (int, bool) {
	return r.id, r.hasID
}

// Message returns the text shown in the bar.
func (r Request) Message() string {
	return r.message
}

// Action returns the action label, empty when the request has none.
func (r Request) Action() string {
	return r.action
}

// HasAction reports whether the request carries an action control.
func (r Request) HasAction() bool {
	return r.action != ""
}

// Attachment returns the caller data attached to the request.
func (r Request) Attachment() any {
	return r.attachment
}

// Generation returns the generation the request was shown under, or 0 for a
// request that never became current.
func (r Request) Generation() uint64 {
	return r.generation
}

// Equal reports whether two requests share id, message and action.
// Attachments and generations are not compared.
func (r Request) Equal(o Request) bool {
	return r.hasID == o.hasID &&
		r.id == o.id &&
		r.message == o.message &&
		r.action == o.action
}

// String returns a compact description used in logs.
func (r Request) String() string {
	id := "-"
	if r.hasID {
		id = strconv.Itoa(r.id)
	}
	if r.action == "" {
		return fmt.Sprintf("#%s %q", id, r.message)
	}
	return fmt.Sprintf("#%s %q [%s]", id, r.message, r.action)
}
