package tui

import (
	"context"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

var cmdType = reflect.TypeOf((tea.Cmd)(nil))

// pump runs cmd and every command it leads to, feeding the resulting
// messages back into m until nothing is left.
func pump(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if msg == nil {
			continue
		}
		// Batches and sequences are slices of commands
		if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
			for i := 0; i < v.Len(); i++ {
				queue = append(queue, v.Index(i).Interface().(tea.Cmd))
			}
			continue
		}
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, next)
	}
	return m
}

func testConfig(visible time.Duration) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Snackbar.AnimationDuration = 0
	cfg.Snackbar.VisibleDuration = config.Duration(visible)
	return cfg
}

func sendKey(t *testing.T, m tea.Model, keys string) tea.Model {
	t.Helper()
	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return pump(t, m, cmd)
}

func newTodo(t *testing.T, visible time.Duration) (tea.Model, *Snackbar) {
	t.Helper()
	sb := NewSnackbar(SnackbarOptions{Config: testConfig(visible)})
	var m tea.Model = NewTodoModel(sb, DefaultKeyMap(), DefaultTodos)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, sb
}

func TestTodo_DeleteAndUndo(t *testing.T) {
	m, sb := newTodo(t, 0)

	for range 3 {
		m = sendKey(t, m, "j")
	}
	m = sendKey(t, m, "d")

	assert.Equal(t, []string{"Walk the dog", "Take a shower", "Clean house"}, m.(TodoModel).Items())
	st := sb.State()
	require.NotNil(t, st.Current)
	assert.Equal(t, snackbar.Visible, st.Visibility)
	assert.Equal(t, "Deleted: Shopping", st.Current.Message())
	id, ok := st.Current.ID()
	assert.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Contains(t, m.View(), "Deleted: Shopping")

	m = sendKey(t, m, "u")

	assert.Equal(t, DefaultTodos, m.(TodoModel).Items())
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
	assert.NotContains(t, m.View(), "Deleted: Shopping")
}

func TestTodo_TimerExpiresWithoutUndo(t *testing.T) {
	m, sb := newTodo(t, 10*time.Millisecond)

	m = sendKey(t, m, "d")

	assert.Equal(t, []string{"Take a shower", "Clean house", "Shopping"}, m.(TodoModel).Items())
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
	assert.Equal(t, uint64(2), sb.State().Generation)
}

func TestTodo_UndoKeyWithoutSnackbar(t *testing.T) {
	m, sb := newTodo(t, 0)

	m = sendKey(t, m, "u")

	assert.Equal(t, DefaultTodos, m.(TodoModel).Items())
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
	assert.Equal(t, uint64(0), sb.State().Generation)
}

func TestTodo_ClickAction(t *testing.T) {
	m, sb := newTodo(t, 0)
	m = sendKey(t, m, "d")
	require.Equal(t, snackbar.Visible, sb.State().Visibility)

	var cmd tea.Cmd
	m, cmd = m.Update(tea.MouseMsg{X: 74, Y: 22, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = pump(t, m, cmd)

	assert.Equal(t, DefaultTodos, m.(TodoModel).Items())
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
}

func TestTodo_SecondDeletePreemptsFirst(t *testing.T) {
	m, sb := newTodo(t, 0)

	m = sendKey(t, m, "d")
	m = sendKey(t, m, "d")

	st := sb.State()
	require.NotNil(t, st.Current)
	assert.Equal(t, "Deleted: Take a shower", st.Current.Message())

	m = sendKey(t, m, "u")
	assert.Equal(t, []string{"Take a shower", "Clean house", "Shopping"}, m.(TodoModel).Items())
}

func TestSnackbar_DismissKey(t *testing.T) {
	sb := NewSnackbar(SnackbarOptions{Config: testConfig(0)})
	var m tea.Model = NewTodoModel(sb, DefaultKeyMap(), DefaultTodos)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = pump(t, m, func() tea.Msg { return ShowMsg{Request: snackbar.NewRequest("Saved")} })
	require.Equal(t, snackbar.Visible, sb.State().Visibility)

	m = sendKey(t, m, "u")
	assert.Equal(t, snackbar.Visible, sb.State().Visibility, "no action label")

	sendKey(t, m, "x")
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
}

func TestSnackbar_DismissIDMsg(t *testing.T) {
	sb := NewSnackbar(SnackbarOptions{Config: testConfig(0)})
	var m tea.Model = NewTodoModel(sb, DefaultKeyMap(), DefaultTodos)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = pump(t, m, func() tea.Msg { return ShowMsg{Request: snackbar.NewRequest("Saved", snackbar.WithID(1))} })
	require.Equal(t, snackbar.Visible, sb.State().Visibility)

	m = pump(t, m, func() tea.Msg { return dismissIDMsg{id: 2} })
	assert.Equal(t, snackbar.Visible, sb.State().Visibility)

	pump(t, m, func() tea.Msg { return dismissIDMsg{id: 1} })
	assert.Equal(t, snackbar.Hidden, sb.State().Visibility)
}

func TestSnackbar_ExtraDelegates(t *testing.T) {
	var got []string
	d := snackbar.DelegateFuncs{
		OnAppeared: func(req snackbar.Request) { got = append(got, "appeared "+req.Message()) },
		OnDisappeared: func(req snackbar.Request, reason snackbar.Reason) {
			got = append(got, "disappeared "+req.Message()+" "+reason.String())
		},
	}
	sb := NewSnackbar(SnackbarOptions{Config: testConfig(5 * time.Millisecond), Delegates: []snackbar.Delegate{d}})
	var m tea.Model = NewTodoModel(sb, DefaultKeyMap(), DefaultTodos)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	pump(t, m, func() tea.Msg { return ShowMsg{Request: snackbar.NewRequest("A")} })

	assert.Equal(t, []string{"appeared A", "disappeared A timer"}, got)
}

func TestSnackbar_ConfigMsg(t *testing.T) {
	sb := NewSnackbar(SnackbarOptions{Config: testConfig(0)})

	cfg := testConfig(3 * time.Second)
	cfg.Keys.Dismiss = []string{"z"}
	_, handled := sb.Update(ConfigMsg{Config: cfg})

	assert.True(t, handled)
	assert.Equal(t, 3*time.Second, sb.bar.Timing().Visible)
	assert.Equal(t, []string{"z"}, sb.keys.Dismiss.Keys())
}

func TestFeed_RecordsEvents(t *testing.T) {
	cfg := testConfig(5 * time.Millisecond)
	sb := NewSnackbar(SnackbarOptions{Config: cfg})
	var m tea.Model = NewFeedModel(cfg, sb, DefaultKeyMap())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = pump(t, m, func() tea.Msg {
		return ShowMsg{Request: snackbar.NewRequest("Deleted: Shopping", snackbar.WithID(3), snackbar.WithAction("UNDO"))}
	})

	feed := m.(FeedModel)
	require.Len(t, feed.events, 2)
	assert.Equal(t, "appeared", feed.events[0].kind)
	assert.Equal(t, "disappeared", feed.events[1].kind)
	assert.Equal(t, snackbar.ReasonTimer, feed.events[1].reason)
	assert.Contains(t, feed.renderEvents(), `#3 "Deleted: Shopping" [UNDO]`)
	assert.Contains(t, feed.View(), "snackbard")

	m = sendKey(t, m, "C")
	assert.Empty(t, m.(FeedModel).events)
}

func TestKeyMapFromConfig(t *testing.T) {
	k := KeyMapFromConfig(config.KeysConfig{Action: []string{"enter"}})
	assert.Equal(t, []string{"enter"}, k.Action.Keys())
	assert.Equal(t, DefaultKeyMap().Dismiss.Keys(), k.Dismiss.Keys())
}

// fakeSender answers state queries and records everything else.
type fakeSender struct {
	msgs  []tea.Msg
	state snackbar.State
}

func (s *fakeSender) Send(msg tea.Msg) {
	if q, ok := msg.(stateQueryMsg); ok {
		q.reply <- s.state
		return
	}
	s.msgs = append(s.msgs, msg)
}

func TestRemote(t *testing.T) {
	fs := &fakeSender{state: snackbar.State{Visibility: snackbar.Visible, Generation: 4}}
	r := &Remote{p: fs, done: make(chan struct{})}

	req := snackbar.NewRequest("hello")
	require.NoError(t, r.Show(req))
	require.NoError(t, r.DismissByUser())
	require.NoError(t, r.Dismiss())
	require.NoError(t, r.DismissID(3))
	assert.Equal(t, []tea.Msg{ShowMsg{Request: req}, DismissMsg{ByUser: true}, DismissMsg{}, dismissIDMsg{id: 3}}, fs.msgs)

	st, err := r.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), st.Generation)

	r.Close()
	r.Close()
	assert.ErrorIs(t, r.Show(req), ErrProgramStopped)
	_, err = r.State(context.Background())
	assert.ErrorIs(t, err, ErrProgramStopped)
}
