package display

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func TestLayout_Compute(t *testing.T) {
	l := NewLayout(config.DefaultConfig().Layout)

	f := l.Compute(80, 24, "Deleted: Shopping", "UNDO")
	assert.Equal(t, 0, f.X)
	assert.Equal(t, 80, f.Width)
	assert.Equal(t, 3, f.Height)
	assert.Equal(t, 21, f.SettledY)
	assert.Equal(t, 24, f.HiddenY)
	assert.Equal(t, 4, f.ActionWidth)
	assert.Equal(t, 73, f.ActionX)
	assert.Equal(t, 67, f.MessageWidth)
}

func TestLayout_NoAction(t *testing.T) {
	l := NewLayout(config.DefaultConfig().Layout)

	f := l.Compute(80, 24, "Saved", "")
	assert.Equal(t, -1, f.ActionX)
	assert.Equal(t, 74, f.MessageWidth)
}

func TestLayout_Margins(t *testing.T) {
	cfg := config.DefaultConfig().Layout
	cfg.SideMargin = 2
	cfg.BottomMargin = 1

	f := NewLayout(cfg).Compute(80, 24, "Saved", "UNDO")
	assert.Equal(t, 2, f.X)
	assert.Equal(t, 76, f.Width)
	assert.Equal(t, 20, f.SettledY)
	assert.Equal(t, 2+76-3-4, f.ActionX)
}

func TestLayout_HeightChange(t *testing.T) {
	cfg := config.DefaultConfig().Layout
	msg := "one two three four five six"

	f := NewLayout(cfg).Compute(20, 24, msg, "")
	assert.Equal(t, 14, f.MessageWidth)
	assert.Equal(t, 4, f.Height, "two wrapped lines plus margins")
	assert.Equal(t, 20, f.SettledY)

	cfg.AllowHeightChange = false
	f = NewLayout(cfg).Compute(20, 24, msg, "")
	assert.Equal(t, 3, f.Height)
}

func TestFrame_Y(t *testing.T) {
	f := Frame{SettledY: 21, HiddenY: 24}

	assert.Equal(t, 24, f.Y(0))
	assert.Equal(t, 21, f.Y(1))
	assert.Equal(t, 22, f.Y(0.5))
	assert.Equal(t, 24, f.Y(-1))
	assert.Equal(t, 21, f.Y(2))
}

func newTestView() *View {
	cfg := config.DefaultConfig()
	v := NewView(cfg.Layout, NewStyles(cfg.Style))
	v.SetBounds(80, 24)
	return v
}

func blankScreen(width, height int) string {
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(".", width)
	}
	return strings.Join(lines, "\n")
}

func TestView_MountUpdatesInPlace(t *testing.T) {
	v := newTestView()
	msg, action := v.message, v.action

	v.Mount(snackbar.NewRequest("first", snackbar.WithAction("UNDO")))
	v.Mount(snackbar.NewRequest("second"))

	assert.Same(t, msg, v.message)
	assert.Same(t, action, v.action)
	assert.Equal(t, "second", v.message.text)
	assert.True(t, v.action.hidden)
	assert.Equal(t, -1, v.Frame().ActionX)
}

func TestView_Overlay(t *testing.T) {
	v := newTestView()
	base := blankScreen(80, 24)

	assert.Equal(t, base, v.Overlay(base), "unmounted view leaves screen alone")

	v.Mount(snackbar.NewRequest("Deleted: Shopping", snackbar.WithID(3), snackbar.WithAction("UNDO")))
	v.SetPosition(1)

	out := strings.Split(v.Overlay(base), "\n")
	require.Len(t, out, 24)

	for row := 0; row < 21; row++ {
		assert.Equal(t, strings.Repeat(".", 80), out[row])
	}
	bar := strings.Join(out[21:], "\n")
	assert.Contains(t, bar, "Deleted: Shopping")
	assert.Contains(t, bar, "UNDO")
	for _, line := range out[21:] {
		assert.Equal(t, 80, ansi.StringWidth(line))
	}
}

func TestView_OverlayOffscreen(t *testing.T) {
	v := newTestView()
	base := blankScreen(80, 24)

	v.Mount(snackbar.NewRequest("hello"))
	v.SetPosition(0)

	assert.Equal(t, base, v.Overlay(base))
}

func TestView_HitAction(t *testing.T) {
	v := newTestView()
	assert.False(t, v.HitAction(74, 22))

	v.Mount(snackbar.NewRequest("Deleted: Shopping", snackbar.WithAction("UNDO")))
	v.SetPosition(1)

	assert.True(t, v.HitAction(73, 22))
	assert.True(t, v.HitAction(76, 21))
	assert.False(t, v.HitAction(77, 22))
	assert.False(t, v.HitAction(73, 20))
	assert.False(t, v.HitAction(10, 22))

	v.Mount(snackbar.NewRequest("no action"))
	assert.False(t, v.HitAction(73, 22))

	v.Unmount()
	assert.False(t, v.Mounted())
	assert.False(t, v.HitAction(73, 22))
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDriver() (*Driver, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	d := NewDriver(10 * time.Millisecond)
	d.now = clock.now
	return d, clock
}

func TestDriver_Animate(t *testing.T) {
	d, clock := newTestDriver()

	var steps []float64
	done := false
	d.Animate(100*time.Millisecond, func(p float64) { steps = append(steps, p) }, func() { done = true })

	assert.Equal(t, 1, d.Pending())
	assert.NotNil(t, d.Flush())
	assert.Nil(t, d.Flush())

	clock.advance(50 * time.Millisecond)
	assert.True(t, d.Update(frameMsg{id: 1}))
	assert.Equal(t, []float64{0.5}, steps)
	assert.False(t, done)
	assert.NotNil(t, d.Flush(), "next frame queued")

	clock.advance(60 * time.Millisecond)
	d.Update(frameMsg{id: 1})
	assert.Equal(t, []float64{0.5, 1}, steps)
	assert.True(t, done)
	assert.Equal(t, 0, d.Pending())
	assert.Nil(t, d.Flush())

	// Finished animations ignore late frames
	assert.True(t, d.Update(frameMsg{id: 1}))
	assert.Len(t, steps, 2)
}

func TestDriver_AnimateZeroDuration(t *testing.T) {
	d, _ := newTestDriver()

	done := false
	d.Animate(0, func(float64) {}, func() { done = true })
	require.NotNil(t, d.Flush())

	d.Update(frameMsg{id: 1})
	assert.True(t, done)
}

func TestDriver_After(t *testing.T) {
	d, _ := newTestDriver()

	fired := 0
	d.After(time.Second, func() { fired++ })
	assert.NotNil(t, d.Flush())

	assert.True(t, d.Update(timerMsg{id: 1}))
	assert.True(t, d.Update(timerMsg{id: 1}))
	assert.Equal(t, 1, fired)
}

func TestDriver_IgnoresOtherMessages(t *testing.T) {
	d, _ := newTestDriver()
	assert.False(t, d.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.False(t, d.Update(tea.WindowSizeMsg{Width: 80, Height: 24}))
}

// runFrames delivers frames until no animation is left, advancing the clock
// past every animation.
func runFrames(d *Driver, clock *fakeClock) {
	for len(d.animations) > 0 {
		clock.advance(time.Second)
		for id := range d.animations {
			d.Update(frameMsg{id: id})
		}
	}
	d.Flush()
}

func TestDriver_DrivesBar(t *testing.T) {
	d, clock := newTestDriver()
	v := newTestView()

	var events []string
	bar := snackbar.New(snackbar.StaticHost(v), d, d, snackbar.WithDelegate(snackbar.DelegateFuncs{
		OnAppeared: func(req snackbar.Request) { events = append(events, "appeared "+req.Message()) },
		OnDisappeared: func(req snackbar.Request, reason snackbar.Reason) {
			events = append(events, "disappeared "+req.Message()+" "+reason.String())
		},
	}))

	bar.Show(snackbar.NewRequest("Deleted: Shopping", snackbar.WithID(3), snackbar.WithAction("UNDO")))
	assert.True(t, v.Mounted())
	assert.Equal(t, 0.0, v.Position())

	runFrames(d, clock)
	assert.Equal(t, snackbar.Visible, bar.State().Visibility)
	assert.Equal(t, 1.0, v.Position())
	require.Len(t, d.timers, 1)

	for id := range d.timers {
		d.Update(timerMsg{id: id})
	}
	runFrames(d, clock)

	assert.Equal(t, []string{"appeared Deleted: Shopping", "disappeared Deleted: Shopping timer"}, events)
	assert.Equal(t, snackbar.Hidden, bar.State().Visibility)
	assert.False(t, v.Mounted())
}

func TestDisplayError(t *testing.T) {
	cause := errors.New("not a tty")
	err := &DisplayError{Message: "no terminal", Cause: cause}

	assert.Equal(t, "no terminal: not a tty", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", (&DisplayError{Message: "plain"}).Error())
}
