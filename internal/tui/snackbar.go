package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/display"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// AppearedMsg is sent when a request has finished its entry animation.
type AppearedMsg struct {
	Request snackbar.Request
}

// DisappearedMsg is sent when a request has left the screen.
type DisappearedMsg struct {
	Request snackbar.Request
	Reason  snackbar.Reason
}

// ActionTriggeredMsg is sent when the action of a request was activated.
type ActionTriggeredMsg struct {
	Request snackbar.Request
}

// ShowMsg asks the snackbar to show a request.
type ShowMsg struct {
	Request snackbar.Request
}

// DismissMsg asks the snackbar to hide. ByUser routes through the action
// control instead, like a click on the action label.
type DismissMsg struct {
	ByUser bool
}

// dismissIDMsg hides the snackbar if it holds the request with id.
type dismissIDMsg struct {
	id int
}

// ConfigMsg applies a reloaded configuration.
type ConfigMsg struct {
	Config *config.Config
}

// timingMsg replaces the timings only.
type timingMsg struct {
	timing snackbar.Timing
}

// stateQueryMsg asks for a state snapshot from outside the tea loop.
type stateQueryMsg struct {
	reply chan<- snackbar.State
}

// Snackbar embeds the snackbar state machine in a bubbletea program. The
// parent model forwards every message to Update, returns the command it
// gets back, and draws its own screen through View.
type Snackbar struct {
	bar    *snackbar.Bar
	view   *display.View
	driver *display.Driver
	keys   KeyMap

	// Delegate events not yet delivered as messages.
	events []tea.Msg
}

// SnackbarOptions configures a Snackbar.
type SnackbarOptions struct {
	Config    *config.Config
	Keys      *KeyMap
	Delegates []snackbar.Delegate // Called synchronously on the tea loop
	Logger    *slog.Logger
}

// NewSnackbar creates a Snackbar.
func NewSnackbar(opts SnackbarOptions) *Snackbar {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	keys := KeyMapFromConfig(cfg.Keys)
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	s := &Snackbar{
		view:   display.NewView(cfg.Layout, display.NewStyles(cfg.Style)),
		driver: display.NewDriver(cfg.Snackbar.FrameInterval.Duration()),
		keys:   keys,
	}

	delegates := append([]snackbar.Delegate{snackbar.DelegateFuncs{
		OnAppeared: func(req snackbar.Request) {
			s.events = append(s.events, AppearedMsg{Request: req})
		},
		OnDisappeared: func(req snackbar.Request, reason snackbar.Reason) {
			s.events = append(s.events, DisappearedMsg{Request: req, Reason: reason})
		},
		OnActionTriggered: func(req snackbar.Request) {
			s.events = append(s.events, ActionTriggeredMsg{Request: req})
		},
	}}, opts.Delegates...)

	s.bar = snackbar.New(
		snackbar.WeakHost(s.view),
		s.driver,
		s.driver,
		snackbar.WithDelegate(snackbar.Delegates(delegates...)),
		snackbar.WithTiming(cfg.Timing()),
		snackbar.WithLogger(opts.Logger),
	)
	return s
}

// Show presents req.
func (s *Snackbar) Show(req snackbar.Request) tea.Cmd {
	s.bar.Show(req)
	return s.flush()
}

// DismissByUser activates the action control.
func (s *Snackbar) DismissByUser() tea.Cmd {
	s.bar.DismissByUser()
	return s.flush()
}

// Dismiss hides the snackbar.
func (s *Snackbar) Dismiss() tea.Cmd {
	s.bar.Dismiss()
	return s.flush()
}

// State returns a snapshot of the state machine.
func (s *Snackbar) State() snackbar.State {
	return s.bar.State()
}

// Update handles msg. handled reports whether msg was consumed by the
// snackbar and should not be processed further by the parent.
func (s *Snackbar) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.view.SetBounds(msg.Width, msg.Height)
		return nil, false

	case ShowMsg:
		s.bar.Show(msg.Request)
		return s.flush(), true

	case DismissMsg:
		if msg.ByUser {
			s.bar.DismissByUser()
		} else {
			s.bar.Dismiss()
		}
		return s.flush(), true

	case dismissIDMsg:
		s.bar.DismissID(msg.id)
		return s.flush(), true

	case ConfigMsg:
		s.configure(msg.Config)
		return nil, true

	case timingMsg:
		s.bar.SetTiming(msg.timing)
		return nil, true

	case stateQueryMsg:
		msg.reply <- s.bar.State()
		return nil, true

	case tea.KeyMsg:
		if !s.interactive() {
			return nil, false
		}
		switch {
		case key.Matches(msg, s.keys.Action) && s.actionable():
			s.bar.DismissByUser()
			return s.flush(), true
		case key.Matches(msg, s.keys.Dismiss):
			s.bar.Dismiss()
			return s.flush(), true
		}
		return nil, false

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft &&
			s.view.HitAction(msg.X, msg.Y) {
			s.bar.DismissByUser()
			return s.flush(), true
		}
		return nil, false
	}

	if s.driver.Update(msg) {
		return s.flush(), true
	}
	return nil, false
}

// View draws the snackbar over base.
func (s *Snackbar) View(base string) string {
	return s.view.Overlay(base)
}

// interactive reports whether the bar is on screen and accepts input.
func (s *Snackbar) interactive() bool {
	v := s.bar.State().Visibility
	return v == snackbar.Appearing || v == snackbar.Visible
}

func (s *Snackbar) actionable() bool {
	cur := s.bar.State().Current
	return cur != nil && cur.HasAction()
}

func (s *Snackbar) configure(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.bar.SetTiming(cfg.Timing())
	s.view.Configure(cfg.Layout, display.NewStyles(cfg.Style))
	s.keys = KeyMapFromConfig(cfg.Keys)
}

// flush collects the driver commands and the pending delegate events. Events
// are delivered in the order the state machine produced them.
func (s *Snackbar) flush() tea.Cmd {
	cmds := []tea.Cmd{s.driver.Flush()}
	if len(s.events) > 0 {
		seq := make([]tea.Cmd, 0, len(s.events))
		for _, ev := range s.events {
			seq = append(seq, func() tea.Msg { return ev })
		}
		s.events = nil
		cmds = append(cmds, tea.Sequence(seq...))
	}
	return tea.Batch(cmds...)
}
