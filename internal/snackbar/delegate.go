package snackbar

import "weak"

// Delegate observes the lifecycle of requests shown by a Bar.
// Callbacks run on the Bar's owning context.
type Delegate interface {
	// Appeared is called once a request is fully visible.
	Appeared(req Request)
	// Disappeared is called exactly once for every request accepted by Show.
	Disappeared(req Request, reason Reason)
	// ActionTriggered is called when the user activates the action control.
	ActionTriggered(req Request)
}

// DelegateFuncs adapts plain functions to a Delegate. Nil fields are skipped.
type DelegateFuncs struct {
	OnAppeared        func(req Request)
	OnDisappeared     func(req Request, reason Reason)
	OnActionTriggered func(req Request)
}

// Appeared implements Delegate.
func (f DelegateFuncs) Appeared(req Request) {
	if f.OnAppeared != nil {
		f.OnAppeared(req)
	}
}

// Disappeared implements Delegate.
func (f DelegateFuncs) Disappeared(req Request, reason Reason) {
	if f.OnDisappeared != nil {
		f.OnDisappeared(req, reason)
	}
}

// ActionTriggered implements Delegate.
func (f DelegateFuncs) ActionTriggered(req Request) {
	if f.OnActionTriggered != nil {
		f.OnActionTriggered(req)
	}
}

// Delegates fans events out to several observers in order. Nil entries are
// dropped.
func Delegates(ds ...Delegate) Delegate {
	out := make(multiDelegate, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

type multiDelegate []Delegate

func (m multiDelegate) Appeared(req Request) {
	for _, d := range m {
		d.Appeared(req)
	}
}

func (m multiDelegate) Disappeared(req Request, reason Reason) {
	for _, d := range m {
		d.Disappeared(req, reason)
	}
}

func (m multiDelegate) ActionTriggered(req Request) {
	for _, d := range m {
		d.ActionTriggered(req)
	}
}

// WeakDelegate wraps d without keeping it reachable. Once the referent has
// been collected the returned Delegate drops every event.
func WeakDelegate[T any, P interface {
	*T
	Delegate
}](d P) Delegate {
	return weakDelegate[T, P]{ptr: weak.Make((*T)(d))}
}

type weakDelegate[T any, P interface {
	*T
	Delegate
}] struct {
	ptr weak.Pointer[T]
}

func (w weakDelegate[T, P]) get() (Delegate, bool) {
	v := w.ptr.Value()
	if v == nil {
		return nil, false
	}
	return P(v), true
}

func (w weakDelegate[T, P]) Appeared(req Request) {
	if d, ok := w.get(); ok {
		d.Appeared(req)
	}
}

func (w weakDelegate[T, P]) Disappeared(req Request, reason Reason) {
	if d, ok := w.get(); ok {
		d.Disappeared(req, reason)
	}
}

func (w weakDelegate[T, P]) ActionTriggered(req Request) {
	if d, ok := w.get(); ok {
		d.ActionTriggered(req)
	}
}

// nopDelegate is used while no delegate is registered.
type nopDelegate struct{}

func (nopDelegate) Appeared(Request)            {}
func (nopDelegate) Disappeared(Request, Reason) {}
func (nopDelegate) ActionTriggered(Request)     {}
