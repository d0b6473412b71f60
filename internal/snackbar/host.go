package snackbar

import (
	"time"
	"weak"
)

// Surface is the mounted view of a Bar.
type Surface interface {
	// Mount attaches the view if needed and shows req. Mounting an already
	// mounted view updates its content in place.
	Mount(req Request)
	// SetPosition moves the view between off-screen (0) and settled (1).
	SetPosition(p float64)
	// Unmount detaches the view.
	Unmount()
}

// Host resolves the Surface a Bar presents on. It reports false once the
// surface has been released.
type Host interface {
	Surface() (Surface, bool)
}

// StaticHost returns a Host that always resolves to s. A nil s behaves as a
// released surface.
func StaticHost(s Surface) Host {
	return staticHost{s: s}
}

type staticHost struct {
	s Surface
}

func (h staticHost) Surface() (Surface, bool) {
	return h.s, h.s != nil
}

// WeakHost returns a Host that does not keep s alive.
func WeakHost[T any, P interface {
	*T
	Surface
}](s P) Host {
	return weakHost[T, P]{ptr: weak.Make((*T)(s))}
}

type weakHost[T any, P interface {
	*T
	Surface
}] struct {
	ptr weak.Pointer[T]
}

func (h weakHost[T, P]) Surface() (Surface, bool) {
	v := h.ptr.Value()
	if v == nil {
		return nil, false
	}
	return P(v), true
}

// Animator runs a visual transition. step receives progress in [0, 1] and
// done is called once when the transition ends. Both must be invoked on the
// owning context of the Bar.
type Animator interface {
	Animate(d time.Duration, step func(progress float64), done func())
}

// Scheduler defers fn by d. fn must be invoked on the owning context of the
// Bar. Implementations are not required to support cancellation.
type Scheduler interface {
	After(d time.Duration, fn func())
}
