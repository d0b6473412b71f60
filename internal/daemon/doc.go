// Package daemon provides the main orchestration for snackbard.
// It owns the snackbar and connects it to the D-Bus and HTTP control
// interfaces, the journal, metrics, the sound cue and configuration
// hot-reload.
package daemon
