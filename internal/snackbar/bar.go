package snackbar

import (
	"log/slog"
	"time"
)

// Default timings.
const (
	DefaultAnimationDuration = 400 * time.Millisecond
	DefaultVisibleDuration   = 2 * time.Second
)

// Timing controls how long a Bar animates and stays visible.
type Timing struct {
	Animation time.Duration
	Visible   time.Duration // 0 disables auto-dismiss
}

// DefaultTiming returns the default Timing.
func DefaultTiming() Timing {
	return Timing{
		Animation: DefaultAnimationDuration,
		Visible:   DefaultVisibleDuration,
	}
}

// Option configures a Bar.
type Option func(*Bar)

// WithDelegate registers the delegate.
func WithDelegate(d Delegate) Option {
	return func(b *Bar) {
		b.SetDelegate(d)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bar) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTiming sets the animation and visible durations.
func WithTiming(t Timing) Option {
	return func(b *Bar) {
		b.timing = t
	}
}

// Bar is the presentation state machine. It is not safe for concurrent use:
// every method, and every callback handed to its Animator and Scheduler,
// must run on one owning context.
type Bar struct {
	host     Host
	animator Animator
	sched    Scheduler
	delegate Delegate
	logger   *slog.Logger
	timing   Timing

	visibility Visibility
	current    *Request
	pending    *Request
	exitReason Reason
	generation uint64
}

// New creates a Bar presenting on host.
func New(host Host, animator Animator, sched Scheduler, opts ...Option) *Bar {
	b := &Bar{
		host:     host,
		animator: animator,
		sched:    sched,
		delegate: nopDelegate{},
		logger:   slog.Default(),
		timing:   DefaultTiming(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetDelegate replaces the delegate. Passing nil removes it.
func (b *Bar) SetDelegate(d Delegate) {
	if d == nil {
		d = nopDelegate{}
	}
	b.delegate = d
}

// SetTiming replaces the timings. In-flight animations and timers keep the
// durations they were started with.
func (b *Bar) SetTiming(t Timing) {
	b.timing = t
}

// Timing returns the current timings.
func (b *Bar) Timing() Timing {
	return b.timing
}

// State returns a snapshot of the Bar.
func (b *Bar) State() State {
	s := State{
		Visibility: b.visibility,
		Generation: b.generation,
	}
	if b.current != nil {
		cur := *b.current
		s.Current = &cur
	}
	if b.pending != nil {
		p := *b.pending
		s.Pending = &p
	}
	return s
}

// Show presents req, preempting whatever is currently on screen.
func (b *Bar) Show(req Request) {
	switch b.visibility {
	case Hidden:
		if _, ok := b.host.Surface(); !ok {
			b.logger.Debug("show ignored: no surface", "request", req.String())
			return
		}
		b.adopt(req)

	case Appearing, Visible:
		b.pending = &req
		b.beginExit(ReasonOverridden)

	case Disappearing:
		// The exit already in flight hands over to the newest request.
		if b.pending != nil {
			dropped := *b.pending
			b.logger.Debug("pending request superseded", "request", dropped.String())
			b.pending = &req
			b.delegate.Disappeared(dropped, ReasonOverridden)
			return
		}
		b.pending = &req
	}
}

// DismissByUser handles activation of the action control. It is a no-op
// unless the current request has an action label and is on its way in or
// settled.
func (b *Bar) DismissByUser() {
	if b.current == nil || !b.current.HasAction() {
		return
	}
	if b.visibility != Appearing && b.visibility != Visible {
		return
	}
	req := *b.current
	b.beginExit(ReasonUserAction)
	b.delegate.ActionTriggered(req)
}

// Dismiss hides the bar immediately with ReasonUserAction. A request waiting
// to be shown is dropped.
func (b *Bar) Dismiss() {
	switch b.visibility {
	case Hidden:
		return
	case Disappearing:
		if b.pending == nil {
			return
		}
		dropped := *b.pending
		b.pending = nil
		b.delegate.Disappeared(dropped, ReasonUserAction)
	default:
		b.beginExit(ReasonUserAction)
	}
}

// DismissID dismisses the bar if it holds the request with id. A request
// already leaving is left alone so a pending one is not dropped in its place.
func (b *Bar) DismissID(id int) {
	if !b.State().Holds(id) {
		return
	}
	b.Dismiss()
}

// adopt makes req current and starts its entry animation.
func (b *Bar) adopt(req Request) {
	surface, ok := b.host.Surface()
	if !ok {
		b.logger.Debug("surface released before show", "request", req.String())
		b.delegate.Disappeared(req, ReasonOverridden)
		return
	}

	b.generation++
	gen := b.generation
	req.generation = gen
	b.current = &req
	b.visibility = Appearing

	surface.Mount(req)
	surface.SetPosition(0)

	b.logger.Debug("snackbar appearing", "request", req.String(), "generation", gen)

	b.animator.Animate(b.timing.Animation,
		b.stepFunc(gen, false),
		func() { b.appeared(gen) },
	)
}

// appeared completes the entry animation of generation gen.
func (b *Bar) appeared(gen uint64) {
	if gen != b.generation || b.visibility != Appearing {
		return
	}
	b.visibility = Visible
	req := *b.current

	if visible := b.timing.Visible; visible > 0 {
		b.sched.After(visible, func() { b.expire(gen) })
	}

	b.logger.Debug("snackbar visible", "request", req.String(), "generation", gen)
	b.delegate.Appeared(req)
}

// expire is the auto-dismiss timer for generation gen.
func (b *Bar) expire(gen uint64) {
	if gen != b.generation || b.visibility != Visible {
		b.logger.Debug("stale timer ignored", "timer_generation", gen, "generation", b.generation)
		return
	}
	b.beginExit(ReasonTimer)
}

// beginExit supersedes the current generation and runs the exit animation.
func (b *Bar) beginExit(reason Reason) {
	b.generation++
	gen := b.generation
	b.visibility = Disappearing
	b.exitReason = reason

	b.logger.Debug("snackbar disappearing",
		"request", b.current.String(),
		"reason", reason.String(),
		"generation", gen,
	)

	b.animator.Animate(b.timing.Animation,
		b.stepFunc(gen, true),
		func() { b.disappeared(gen) },
	)
}

// disappeared completes the exit animation of generation gen.
func (b *Bar) disappeared(gen uint64) {
	if gen != b.generation || b.visibility != Disappearing {
		return
	}

	req := *b.current
	reason := b.exitReason
	next := b.pending

	b.current = nil
	b.pending = nil
	b.visibility = Hidden

	// The mounted view is reused when another request follows.
	if next == nil {
		if surface, ok := b.host.Surface(); ok {
			surface.Unmount()
		}
	}

	b.logger.Debug("snackbar hidden", "request", req.String(), "reason", reason.String())
	b.delegate.Disappeared(req, reason)

	if next == nil {
		return
	}
	if b.visibility != Hidden {
		// The delegate showed something newer from its callback.
		b.delegate.Disappeared(*next, ReasonOverridden)
		return
	}
	b.adopt(*next)
}

// stepFunc returns the animation step for generation gen.
func (b *Bar) stepFunc(gen uint64, exiting bool) func(float64) {
	return func(p float64) {
		if gen != b.generation {
			return
		}
		surface, ok := b.host.Surface()
		if !ok {
			return
		}
		if exiting {
			p = 1 - p
		}
		surface.SetPosition(clamp01(p))
	}
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
