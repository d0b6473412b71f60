package snackbar

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLoopStopped is returned when work is submitted to a stopped Loop.
var ErrLoopStopped = errors.New("snackbar loop stopped")

// DefaultFrameInterval is the animation step interval used by Loop.Animator
// when none is given.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is a single goroutine owning context. Tasks posted to it run one at
// a time in submission order.
type Loop struct {
	tasks chan func()
	done  chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewLoop creates a Loop with room for buffer queued tasks.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 64
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// Stop stops the loop. Queued tasks that have not started are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.done)
}

// Post queues fn. It blocks while the queue is full and returns
// ErrLoopStopped once the loop has stopped.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrLoopStopped
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scheduler returns a Scheduler whose callbacks run on the loop.
func (l *Loop) Scheduler() Scheduler {
	return loopScheduler{loop: l}
}

type loopScheduler struct {
	loop *Loop
}

func (s loopScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		_ = s.loop.Post(fn)
	})
}

// Animator returns an Animator stepping every frame on the loop.
func (l *Loop) Animator(frame time.Duration) Animator {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return loopAnimator{loop: l, frame: frame}
}

type loopAnimator struct {
	loop  *Loop
	frame time.Duration
}

func (a loopAnimator) Animate(d time.Duration, step func(float64), done func()) {
	// Posting happens off the loop goroutine so a full queue cannot
	// deadlock the caller.
	if d <= 0 {
		time.AfterFunc(0, func() {
			_ = a.loop.Post(func() {
				step(1)
				done()
			})
		})
		return
	}

	start := time.Now()
	var tick func()
	tick = func() {
		p := float64(time.Since(start)) / float64(d)
		if p >= 1 {
			step(1)
			done()
			return
		}
		step(p)
		time.AfterFunc(a.frame, func() { _ = a.loop.Post(tick) })
	}
	time.AfterFunc(a.frame, func() { _ = a.loop.Post(tick) })
}
