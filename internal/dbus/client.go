package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running notification server, snackbard or any other
// org.freedesktop.Notifications implementation.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus. An empty busName uses DBusBusName.
func NewClient(busName string) (*Client, error) {
	if busName == "" {
		busName = DBusBusName
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(busName, DBusPath),
	}, nil
}

// NotifyArgs returns the Notify arguments for a snackbar message. A
// non-empty action label is sent as the "default" action.
func NotifyArgs(message, action string, replacesID uint32) []any {
	var actions []string
	if action != "" {
		actions = []string{"default", action}
	}
	return []any{
		"snackbar",
		replacesID,
		"",
		message,
		"",
		actions,
		map[string]dbus.Variant{},
		int32(-1),
	}
}

// Notify shows message and returns the notification id.
func (c *Client) Notify(ctx context.Context, message, action string, replacesID uint32) (uint32, error) {
	var id uint32
	call := c.obj.CallWithContext(ctx, DBusInterface+".Notify", 0, NotifyArgs(message, action, replacesID)...)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

// Close asks the server to close notification id.
func (c *Client) Close(ctx context.Context, id uint32) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("close notification: %w", err)
	}
	return nil
}
