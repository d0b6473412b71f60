package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// maxFeedEvents bounds the feed history.
const maxFeedEvents = 500

// feedEvent is one line of the feed.
type feedEvent struct {
	at      time.Time
	kind    string
	request snackbar.Request
	reason  snackbar.Reason
}

// FeedModel shows the lifecycle events of a daemon-owned snackbar, with the
// snackbar itself drawn over it.
type FeedModel struct {
	cfg      *config.Config
	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	snackbar *Snackbar
	now      func() time.Time

	events []feedEvent

	width, height int
	ready         bool

	statusMsg string
	statusErr bool
}

// NewFeedModel creates a FeedModel presenting on sb.
func NewFeedModel(cfg *config.Config, sb *Snackbar, keys KeyMap) FeedModel {
	return FeedModel{
		cfg:      cfg,
		help:     help.New(),
		keys:     keys,
		snackbar: sb,
		now:      time.Now,
	}
}

type feedTickMsg struct{}

func feedTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return feedTickMsg{} })
}

// Init starts the relative time refresh.
func (m FeedModel) Init() tea.Cmd {
	return feedTick()
}

// Update handles messages and updates the model.
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.snackbar.Update(msg)
	if handled {
		return m, cmd
	}
	cmds := []tea.Cmd{cmd}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, max(1, msg.Height-3))
		m.viewport.YPosition = 1
		m.ready = true
		m.refresh()
		return m, tea.Batch(cmds...)

	case feedTickMsg:
		m.refresh()
		return m, tea.Batch(append(cmds, feedTick())...)

	case AppearedMsg:
		m.record(feedEvent{kind: "appeared", request: msg.Request})
		return m, tea.Batch(cmds...)

	case DisappearedMsg:
		m.record(feedEvent{kind: "disappeared", request: msg.Request, reason: msg.Reason})
		return m, tea.Batch(cmds...)

	case ActionTriggeredMsg:
		m.record(feedEvent{kind: "action", request: msg.Request})
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied to clipboard"}
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.events = nil
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			if len(m.events) == 0 {
				return m, nil
			}
			return m, m.copyToClipboard(m.events[len(m.events)-1].request.Message())
		}
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(append(cmds, vpCmd)...)
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

func (m *FeedModel) record(ev feedEvent) {
	ev.at = m.now()
	m.events = append(m.events, ev)
	if len(m.events) > maxFeedEvents {
		m.events = m.events[len(m.events)-maxFeedEvents:]
	}
	m.refresh()
	m.viewport.GotoBottom()
}

func (m *FeedModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEvents())
}

func (m FeedModel) renderEvents() string {
	if len(m.events) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Waiting for notifications...")
	}

	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	kindStyles := map[string]lipgloss.Style{
		"appeared":    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"disappeared": lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"action":      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	var b strings.Builder
	for i, ev := range m.events {
		if i > 0 {
			b.WriteString("\n")
		}
		kind := fmt.Sprintf("%-11s", ev.kind)
		line := kindStyles[ev.kind].Render(kind) + " " + ev.request.String()
		if ev.kind == "disappeared" {
			line += " (" + ev.reason.String() + ")"
		}
		b.WriteString(line + "  " + timeStyle.Render(humanize.RelTime(ev.at, m.now(), "ago", "from now")))
	}
	return b.String()
}

func (m FeedModel) header() string {
	st := m.snackbar.State()
	s := fmt.Sprintf("snackbard  %s  gen %d", st.Visibility, st.Generation)
	if st.Pending != nil {
		s += "  next " + st.Pending.String()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Render(s)
}

// copyToClipboard copies text to the system clipboard.
func (m FeedModel) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, m.cfg)}
	}
}

// View renders the model.
func (m FeedModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := m.help.ShortHelpView([]key.Binding{m.keys.Copy, m.keys.Clear, m.keys.Dismiss, m.keys.Quit})
	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		}
		footer = style.Render(m.statusMsg)
	}

	return m.snackbar.View(m.header() + "\n" + m.viewport.View() + "\n" + footer)
}
