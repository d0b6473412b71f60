package snackbar

import "context"

// Presenter drives a bar owned by another goroutine. Controller implements
// it for a Loop owned bar.
type Presenter interface {
	Show(req Request) error
	DismissByUser() error
	Dismiss() error
	DismissID(id int) error
	SetTiming(t Timing) error
	State(ctx context.Context) (State, error)
}

var _ Presenter = (*Controller)(nil)

// Controller drives a Bar through its Loop so it can be used from any
// goroutine.
type Controller struct {
	loop *Loop
	bar  *Bar
}

// Serialize returns a Controller for bar. bar must only be touched through
// the returned Controller (or tasks posted to loop) from now on.
func Serialize(loop *Loop, bar *Bar) *Controller {
	return &Controller{loop: loop, bar: bar}
}

// Show queues bar.Show(req).
func (c *Controller) Show(req Request) error {
	return c.loop.Post(func() { c.bar.Show(req) })
}

// DismissByUser queues bar.DismissByUser().
func (c *Controller) DismissByUser() error {
	return c.loop.Post(c.bar.DismissByUser)
}

// Dismiss queues bar.Dismiss().
func (c *Controller) Dismiss() error {
	return c.loop.Post(c.bar.Dismiss)
}

// DismissID queues bar.DismissID(id).
func (c *Controller) DismissID(id int) error {
	return c.loop.Post(func() { c.bar.DismissID(id) })
}

// SetTiming queues bar.SetTiming(t).
func (c *Controller) SetTiming(t Timing) error {
	return c.loop.Post(func() { c.bar.SetTiming(t) })
}

// State returns a snapshot taken on the loop.
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	err := c.loop.Do(ctx, func() { s = c.bar.State() })
	return s, err
}
