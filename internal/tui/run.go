// Package tui provides the BubbleTea-based terminal user interface: the
// todo demo, the daemon feed, and the snackbar component both draw over.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// ErrProgramStopped is returned by Remote once the program has exited.
var ErrProgramStopped = errors.New("tui program stopped")

// RunOptions configures the TUI.
type RunOptions struct {
	Config    *config.Config
	Delegates []snackbar.Delegate
	Logger    *slog.Logger
	Todos     []string // Demo list content, nil = DefaultTodos

	// Watcher, when set, pushes reloaded configuration into the program.
	Watcher *config.Watcher
}

func newSnackbar(opts RunOptions) (*Snackbar, KeyMap) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	keys := KeyMapFromConfig(cfg.Keys)
	sb := NewSnackbar(SnackbarOptions{
		Config:    cfg,
		Keys:      &keys,
		Delegates: opts.Delegates,
		Logger:    opts.Logger,
	})
	return sb, keys
}

// Run starts the todo demo.
func Run(opts RunOptions) error {
	sb, keys := newSnackbar(opts)
	todos := opts.Todos
	if todos == nil {
		todos = DefaultTodos
	}

	m := NewTodoModel(sb, keys, todos)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	watchConfig(p, opts.Watcher)

	_, err := p.Run()
	return err
}

// NewFeedProgram creates the daemon feed program. The returned Remote drives
// its snackbar from other goroutines.
func NewFeedProgram(opts RunOptions, teaOpts ...tea.ProgramOption) (*tea.Program, *Remote) {
	sb, keys := newSnackbar(opts)
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := NewFeedModel(cfg, sb, keys)
	teaOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, teaOpts...)
	p := tea.NewProgram(m, teaOpts...)
	watchConfig(p, opts.Watcher)
	return p, NewRemote(p)
}

func watchConfig(p *tea.Program, w *config.Watcher) {
	if w == nil {
		return
	}
	w.OnReload(func(cfg *config.Config) {
		p.Send(ConfigMsg{Config: cfg})
	})
}

// sender is the part of tea.Program Remote needs.
type sender interface {
	Send(msg tea.Msg)
}

// Remote drives a snackbar inside a running program from any goroutine.
type Remote struct {
	p    sender
	done chan struct{}
}

var _ snackbar.Presenter = (*Remote)(nil)

// NewRemote creates a Remote for p.
func NewRemote(p *tea.Program) *Remote {
	return &Remote{p: p, done: make(chan struct{})}
}

// Close marks the program as stopped. Later calls fail with ErrProgramStopped.
func (r *Remote) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

func (r *Remote) send(msg tea.Msg) error {
	select {
	case <-r.done:
		return ErrProgramStopped
	default:
	}
	r.p.Send(msg)
	return nil
}

// Show queues req.
func (r *Remote) Show(req snackbar.Request) error {
	return r.send(ShowMsg{Request: req})
}

// DismissByUser activates the action control.
func (r *Remote) DismissByUser() error {
	return r.send(DismissMsg{ByUser: true})
}

// Dismiss hides the snackbar.
func (r *Remote) Dismiss() error {
	return r.send(DismissMsg{})
}

// DismissID hides the snackbar if it holds the request with id.
func (r *Remote) DismissID(id int) error {
	return r.send(dismissIDMsg{id: id})
}

// SetTiming replaces the animation and visible durations.
func (r *Remote) SetTiming(t snackbar.Timing) error {
	return r.send(timingMsg{timing: t})
}

// State returns a snapshot taken on the tea loop.
func (r *Remote) State(ctx context.Context) (snackbar.State, error) {
	reply := make(chan snackbar.State, 1)
	if err := r.send(stateQueryMsg{reply: reply}); err != nil {
		return snackbar.State{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return snackbar.State{}, ErrProgramStopped
	case <-ctx.Done():
		return snackbar.State{}, ctx.Err()
	}
}
