package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the default bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// ErrNameTaken is returned by Start when another process owns the bus name.
var ErrNameTaken = errors.New("bus name already taken")

// NotifyHandler is called for every Notify call with the request built from
// it. A returned error is reported to the caller.
type NotifyHandler func(req snackbar.Request) error

// CloseHandler is called when CloseNotification names an active id.
type CloseHandler func(id uint32) error

// emitter is the part of *dbus.Conn used to send signals.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Server implements the org.freedesktop.Notifications D-Bus interface on
// top of a snackbar.
type Server struct {
	conn    *dbus.Conn
	emit    emitter
	busName string
	logger  *slog.Logger

	nextID atomic.Uint32

	notifyHandler NotifyHandler
	closeHandler  CloseHandler

	mu         sync.RWMutex
	activeIDs  map[uint32]uint64 // Id -> sequence of its newest request, until closed
	lastSeq    uint64
	serverInfo ServerInfo
	running    bool
}

// NewServer creates a Server claiming busName. An empty name uses
// DBusBusName.
func NewServer(busName string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if busName == "" {
		busName = DBusBusName
	}
	return &Server{
		busName:    busName,
		logger:     logger,
		activeIDs:  make(map[uint32]uint64),
		serverInfo: DefaultServerInfo(),
	}
}

// SetNotifyHandler sets the handler called when a notification is received.
func (s *Server) SetNotifyHandler(handler NotifyHandler) {
	s.notifyHandler = handler
}

// SetCloseHandler sets the handler called when CloseNotification is requested.
func (s *Server) SetCloseHandler(handler CloseHandler) {
	s.closeHandler = handler
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus and exports the notification service.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%s: %w", s.busName, ErrNameTaken)
	}

	s.mu.Lock()
	s.conn = conn
	s.emit = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "bus_name", s.busName, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(s.busName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared, leave it open
	}

	s.logger.Info("D-Bus server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, s.serverInfo.SpecVersion, nil
}

// Notify shows a notification as a snackbar.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &Notification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	id, err := s.notify(n)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

func (s *Server) notify(n *Notification) (uint32, error) {
	id := n.ReplacesID
	if id == 0 {
		id = s.nextID.Add(1)
	}

	s.logger.Debug("Notify called",
		"app_name", n.AppName,
		"replaces_id", n.ReplacesID,
		"summary", n.Summary,
		"id", id,
	)

	if n.Message() == "" {
		return 0, fmt.Errorf("notification has no summary or body")
	}

	// A replacement takes over the id; the request it preempts no longer
	// closes it.
	s.mu.Lock()
	s.lastSeq++
	o := origin{id: id, seq: s.lastSeq}
	prev, replaced := s.activeIDs[id]
	s.activeIDs[id] = o.seq
	s.mu.Unlock()

	if s.notifyHandler != nil {
		if err := s.notifyHandler(n.request(o)); err != nil {
			s.restore(o, prev, replaced)
			return 0, err
		}
	}
	return id, nil
}

// restore hands the id of a rejected request o back to the request it was
// meant to replace.
func (s *Server) restore(o origin, prev uint64, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIDs[o.id] != o.seq {
		return
	}
	if replaced {
		s.activeIDs[o.id] = prev
	} else {
		delete(s.activeIDs, o.id)
	}
}

// CloseNotification closes a notification by ID. The NotificationClosed
// signal follows once the snackbar has left the screen.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)

	if !s.IsActive(id) || s.closeHandler == nil {
		return nil
	}
	if err := s.closeHandler(id); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// release ends the tracking of id when o is its newest request. It reports
// false for a request that was replaced under the same id.
func (s *Server) release(o origin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq, ok := s.activeIDs[o.id]; !ok || seq != o.seq {
		return false
	}
	delete(s.activeIDs, o.id)
	return true
}

// IsActive returns true if the notification ID is currently active.
func (s *Server) IsActive(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.activeIDs[id]
	return ok
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
