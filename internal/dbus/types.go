package dbus

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// CloseReason represents the reason for closing a notification.
// The values are fixed by the freedesktop.org notification protocol.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the notification protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps why a snackbar left the screen to the
// NotificationClosed reason.
func CloseReasonFor(r snackbar.Reason) CloseReason {
	switch r {
	case snackbar.ReasonTimer:
		return CloseReasonExpired
	case snackbar.ReasonUserAction:
		return CloseReasonDismissed
	case snackbar.ReasonOverridden:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Notification represents an incoming D-Bus Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // Ignored, the configured visible duration applies
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// Message joins summary and body into the single line a snackbar shows.
func (n *Notification) Message() string {
	summary := strings.TrimSpace(n.Summary)
	body := strings.TrimSpace(n.Body)
	switch {
	case summary == "":
		return body
	case body == "":
		return summary
	default:
		return summary + ": " + body
	}
}

// origin is attached to requests created from Notify so the signal
// delegate can tell them apart and knows which action key to report.
type origin struct {
	id        uint32
	seq       uint64 // Orders requests sharing an id through replaces_id
	actionKey string
}

// Request converts the notification into a snackbar request with the
// notification id. Only the first action is kept; its label becomes the
// action control.
func (n *Notification) Request(id uint32) snackbar.Request {
	return n.request(origin{id: id})
}

func (n *Notification) request(o origin) snackbar.Request {
	opts := []snackbar.RequestOption{snackbar.WithID(int(o.id))}
	if actions := n.ParsedActions(); len(actions) > 0 {
		label := actions[0].Label
		if label == "" {
			label = actions[0].Key
		}
		o.actionKey = actions[0].Key
		opts = append(opts, snackbar.WithAction(label))
	}
	opts = append(opts, snackbar.WithAttachment(o))
	return snackbar.NewRequest(n.Message(), opts...)
}

// originOf returns the D-Bus origin of req, if it came through Notify.
func originOf(req snackbar.Request) (origin, bool) {
	o, ok := req.Attachment().(origin)
	return o, ok
}

// ServerCapabilities lists the capabilities advertised by snackbard.
var ServerCapabilities = []string{
	"actions", // First action becomes the snackbar action
	"body",    // Body is appended to the summary
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "snackbard"
	Vendor      string // "snackbar"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "snackbard",
		Vendor:      "snackbar",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}
