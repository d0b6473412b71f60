package display

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// frameMsg advances the animation with the given id.
type frameMsg struct {
	id uint64
}

// timerMsg fires the scheduled callback with the given id.
type timerMsg struct {
	id uint64
}

type animation struct {
	start    time.Time
	duration time.Duration
	step     func(float64)
	done     func()
}

// Driver runs snackbar animations and timers on the bubbletea loop.
// Registered callbacks are resumed from Update, so a Bar using the Driver
// as its Animator and Scheduler is only ever touched from the tea loop.
//
// The commands produced by Animate and After are collected and must be
// returned from Update via Flush.
type Driver struct {
	frame time.Duration
	now   func() time.Time

	nextID     uint64
	animations map[uint64]*animation
	timers     map[uint64]func()
	cmds       []tea.Cmd
}

var (
	_ snackbar.Animator  = (*Driver)(nil)
	_ snackbar.Scheduler = (*Driver)(nil)
)

// NewDriver creates a Driver stepping animations every frame.
func NewDriver(frame time.Duration) *Driver {
	if frame <= 0 {
		frame = snackbar.DefaultFrameInterval
	}
	return &Driver{
		frame:      frame,
		now:        time.Now,
		animations: make(map[uint64]*animation),
		timers:     make(map[uint64]func()),
	}
}

// Animate implements snackbar.Animator.
func (d *Driver) Animate(dur time.Duration, step func(float64), done func()) {
	d.nextID++
	id := d.nextID
	d.animations[id] = &animation{
		start:    d.now(),
		duration: dur,
		step:     step,
		done:     done,
	}
	if dur <= 0 {
		d.cmds = append(d.cmds, func() tea.Msg { return frameMsg{id: id} })
		return
	}
	d.cmds = append(d.cmds, d.tick(id))
}

// After implements snackbar.Scheduler.
func (d *Driver) After(dur time.Duration, fn func()) {
	d.nextID++
	id := d.nextID
	d.timers[id] = fn
	d.cmds = append(d.cmds, tea.Tick(dur, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
}

func (d *Driver) tick(id uint64) tea.Cmd {
	return tea.Tick(d.frame, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// Update resumes the callback msg belongs to. It reports whether msg was a
// Driver message.
func (d *Driver) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case frameMsg:
		a, ok := d.animations[msg.id]
		if !ok {
			return true
		}
		p := 1.0
		if a.duration > 0 {
			p = float64(d.now().Sub(a.start)) / float64(a.duration)
		}
		if p >= 1 {
			delete(d.animations, msg.id)
			a.step(1)
			a.done()
			return true
		}
		a.step(p)
		d.cmds = append(d.cmds, d.tick(msg.id))
		return true

	case timerMsg:
		fn, ok := d.timers[msg.id]
		if !ok {
			return true
		}
		delete(d.timers, msg.id)
		fn()
		return true
	}
	return false
}

// Flush returns the commands queued since the last Flush.
func (d *Driver) Flush() tea.Cmd {
	if len(d.cmds) == 0 {
		return nil
	}
	cmds := d.cmds
	d.cmds = nil
	return tea.Batch(cmds...)
}

// Pending returns the number of animations and timers not yet finished.
func (d *Driver) Pending() int {
	return len(d.animations) + len(d.timers)
}
