// Package display renders the snackbar in a terminal. A View is the
// snackbar.Surface drawn over a bubbletea screen and a Driver provides the
// Animator and Scheduler that resume the state machine from the tea loop.
package display
