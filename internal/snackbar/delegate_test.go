package snackbar

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelegates_FanOut(t *testing.T) {
	a := &eventLog{}
	b := &eventLog{}
	d := Delegates(a, nil, b)

	req := NewRequest("x")
	d.Appeared(req)
	d.ActionTriggered(req)
	d.Disappeared(req, ReasonTimer)

	want := []string{"appeared x", "action x", "disappeared x timer"}
	assert.Equal(t, want, a.events)
	assert.Equal(t, want, b.events)
}

func TestDelegateFuncs_NilFieldsSkipped(t *testing.T) {
	var d DelegateFuncs
	assert.NotPanics(t, func() {
		d.Appeared(NewRequest("x"))
		d.Disappeared(NewRequest("x"), ReasonTimer)
		d.ActionTriggered(NewRequest("x"))
	})
}

func TestWeakDelegate_ForwardsWhileAlive(t *testing.T) {
	log := &eventLog{}
	d := WeakDelegate(log)

	d.Appeared(NewRequest("x"))
	assert.Equal(t, []string{"appeared x"}, log.events)
	runtime.KeepAlive(log)
}

func TestWeakDelegate_DropsAfterCollection(t *testing.T) {
	d := WeakDelegate(&eventLog{})
	runtime.GC()

	assert.NotPanics(t, func() {
		d.Appeared(NewRequest("x"))
		d.Disappeared(NewRequest("x"), ReasonOverridden)
	})
}

func TestWeakHost(t *testing.T) {
	s := &fakeSurface{}
	h := WeakHost(s)

	got, ok := h.Surface()
	assert.True(t, ok)
	assert.Same(t, s, got)
	runtime.KeepAlive(s)
}
