package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// DefaultTodos is the initial content of the demo list.
var DefaultTodos = []string{"Walk the dog", "Take a shower", "Clean house", "Shopping"}

// todoItem is a list row.
type todoItem string

func (i todoItem) Title() string       { return string(i) }
func (i todoItem) Description() string { return "" }
func (i todoItem) FilterValue() string { return string(i) }

// TodoModel is a todo list where deleting a row can be undone from the
// snackbar.
type TodoModel struct {
	list     list.Model
	help     help.Model
	keys     KeyMap
	snackbar *Snackbar

	width, height int
	ready         bool
	showHelp      bool
}

// NewTodoModel creates a TodoModel presenting on sb.
func NewTodoModel(sb *Snackbar, keys KeyMap, items []string) TodoModel {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)

	l := list.New(todoItems(items), d, 0, 0)
	l.Title = "Todo"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return TodoModel{
		list:     l,
		help:     help.New(),
		keys:     keys,
		snackbar: sb,
	}
}

func todoItems(items []string) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = todoItem(it)
	}
	return out
}

// Items returns the current rows.
func (m TodoModel) Items() []string {
	items := m.list.Items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(todoItem); ok {
			out = append(out, string(ti))
		}
	}
	return out
}

// Init initializes the model.
func (m TodoModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m TodoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.snackbar.Update(msg)
	if handled {
		return m, cmd
	}
	cmds := []tea.Cmd{cmd}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		var keyCmd tea.Cmd
		m, keyCmd = m.handleKey(msg)
		return m, tea.Batch(append(cmds, keyCmd)...)

	case ActionTriggeredMsg:
		m.undo(msg.Request)
		return m, tea.Batch(cmds...)
	}

	var listCmd tea.Cmd
	m.list, listCmd = m.list.Update(msg)
	return m, tea.Batch(append(cmds, listCmd)...)
}

func (m TodoModel) handleKey(msg tea.KeyMsg) (TodoModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()

	case key.Matches(msg, m.keys.Reset):
		m.list.SetItems(todoItems(DefaultTodos))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// deleteSelected removes the selected row and offers to undo it.
func (m TodoModel) deleteSelected() (TodoModel, tea.Cmd) {
	item, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return m, nil
	}
	index := m.list.Index()
	m.list.RemoveItem(index)

	req := snackbar.NewRequest(
		fmt.Sprintf("Deleted: %s", item),
		snackbar.WithID(index),
		snackbar.WithAction("UNDO"),
		snackbar.WithAttachment(string(item)),
	)
	return m, m.snackbar.Show(req)
}

// undo reinserts the row a request was shown for.
func (m *TodoModel) undo(req snackbar.Request) {
	item, ok := req.Attachment().(string)
	if !ok {
		return
	}
	index, ok := req.ID()
	if !ok {
		return
	}
	index = max(0, min(index, len(m.list.Items())))
	m.list.InsertItem(index, todoItem(item))
	m.list.Select(index)
}

// View renders the model.
func (m TodoModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	s := m.list.View()
	if m.showHelp {
		s = lipgloss.JoinVertical(lipgloss.Left, s, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		s += "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return m.snackbar.View(s)
}
