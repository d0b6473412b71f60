package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jmylchreest/snackbar/internal/config"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Todo list
	Delete key.Binding
	Reset  key.Binding

	// Feed
	Copy  key.Binding
	Clear key.Binding

	// Snackbar
	Action  key.Binding
	Dismiss key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Action, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Delete, k.Reset, k.Copy, k.Clear},
		{k.Action, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "go to bottom"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset list"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy message"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear feed"),
		),
		Action: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "undo"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// KeyMapFromConfig returns the default key bindings with the snackbar keys
// taken from cfg.
func KeyMapFromConfig(cfg config.KeysConfig) KeyMap {
	k := DefaultKeyMap()
	if len(cfg.Action) > 0 {
		k.Action = key.NewBinding(
			key.WithKeys(cfg.Action...),
			key.WithHelp(strings.Join(cfg.Action, "/"), "undo"),
		)
	}
	if len(cfg.Dismiss) > 0 {
		k.Dismiss = key.NewBinding(
			key.WithKeys(cfg.Dismiss...),
			key.WithHelp(strings.Join(cfg.Dismiss, "/"), "dismiss"),
		)
	}
	return k
}
