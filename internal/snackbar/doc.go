// Package snackbar implements the presentation state machine of a
// transient notification bar.
//
// A Bar shows at most one Request at a time. A new Show preempts whatever
// is on screen: the current request leaves with ReasonOverridden before the
// new one enters. Every adoption bumps a generation counter, and every
// deferred callback (auto-dismiss timer, animation step, animation
// completion) carries the generation it was issued for. Callbacks whose
// generation is no longer current are ignored, so schedulers that cannot
// cancel in-flight work are safe to use.
//
// A Bar must only be driven from a single owning context. Loop provides one
// backed by a goroutine; the display package provides one backed by the
// bubbletea update loop.
package snackbar
