package snackbar

import "fmt"

// Visibility is the presentation phase of a Bar.
type Visibility int

const (
	// Hidden means nothing is mounted and no request is current.
	Hidden Visibility = iota
	// Appearing means the entry animation is running.
	Appearing
	// Visible means the bar is settled and the auto-dismiss timer is armed.
	Visible
	// Disappearing means the exit animation is running.
	Disappearing
)

// String returns the string representation of Visibility.
func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Appearing:
		return "appearing"
	case Visible:
		return "visible"
	case Disappearing:
		return "disappearing"
	default:
		return "unknown"
	}
}

// Reason explains why a request left the screen.
type Reason int

const (
	// ReasonTimer means the visible duration elapsed.
	ReasonTimer Reason = iota
	// ReasonUserAction means the user activated the action or the host
	// dismissed the bar explicitly.
	ReasonUserAction
	// ReasonOverridden means a newer Show preempted the request.
	ReasonOverridden
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	switch r {
	case ReasonTimer:
		return "timer"
	case ReasonUserAction:
		return "user"
	case ReasonOverridden:
		return "overridden"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	reason, err := ParseReason(string(text))
	if err != nil {
		return err
	}
	*r = reason
	return nil
}

// ParseReason parses the names produced by Reason.String.
func ParseReason(s string) (Reason, error) {
	switch s {
	case "timer":
		return ReasonTimer, nil
	case "user":
		return ReasonUserAction, nil
	case "overridden":
		return ReasonOverridden, nil
	default:
		return 0, fmt.Errorf("unknown reason %q", s)
	}
}

// State is a snapshot of a Bar.
type State struct {
	Visibility Visibility
	Current    *Request // nil while Hidden
	Pending    *Request // request waiting for the current one to leave
	Generation uint64
}

// Holds reports whether dismissing the bar would remove the request with id:
// it is on its way in or settled, or it waits behind an exit.
func (s State) Holds(id int) bool {
	matches := func(r *Request) bool {
		if r == nil {
			return false
		}
		rid, ok := r.ID()
		return ok && rid == id
	}
	switch s.Visibility {
	case Appearing, Visible:
		return matches(s.Current)
	case Disappearing:
		return matches(s.Pending)
	default:
		return false
	}
}
