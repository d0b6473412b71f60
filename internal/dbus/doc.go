// Package dbus exposes the snackbar on the session bus through the
// org.freedesktop.Notifications interface, so notify-send and friends can
// drive it, and provides the client used by "snackbar send".
package dbus
