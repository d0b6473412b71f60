package dbus

import (
	"fmt"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *Server) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	emit := s.emit
	s.mu.RUnlock()
	if emit == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := emit.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *Server) EmitActionInvoked(id uint32, actionKey string) error {
	s.mu.RLock()
	emit := s.emit
	s.mu.RUnlock()
	if emit == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := emit.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey); err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}

// Delegate returns a snackbar delegate that mirrors the lifecycle of
// requests received through Notify as D-Bus signals. Requests from other
// sources are ignored, and so is the exit of a request replaced through
// replaces_id: its id stays open for the replacement.
func (s *Server) Delegate() snackbar.Delegate {
	return signalDelegate{s: s}
}

type signalDelegate struct {
	s *Server
}

func (d signalDelegate) Appeared(snackbar.Request) {}

func (d signalDelegate) Disappeared(req snackbar.Request, reason snackbar.Reason) {
	o, ok := originOf(req)
	if !ok || !d.s.release(o) {
		return
	}
	if err := d.s.EmitNotificationClosed(o.id, CloseReasonFor(reason)); err != nil {
		d.s.logger.Warn("failed to emit NotificationClosed signal", "id", o.id, "error", err)
	}
}

func (d signalDelegate) ActionTriggered(req snackbar.Request) {
	o, ok := originOf(req)
	if !ok || o.actionKey == "" {
		return
	}
	if err := d.s.EmitActionInvoked(o.id, o.actionKey); err != nil {
		d.s.logger.Warn("failed to emit ActionInvoked signal", "id", o.id, "error", err)
	}
}
