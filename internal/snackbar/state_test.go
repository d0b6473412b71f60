package snackbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Holds(t *testing.T) {
	a := NewRequest("A", WithID(1))
	b := NewRequest("B", WithID(2))
	anon := NewRequest("C")

	tests := []struct {
		name  string
		state State
		id    int
		want  bool
	}{
		{"hidden", State{}, 1, false},
		{"appearing current", State{Visibility: Appearing, Current: &a}, 1, true},
		{"visible current", State{Visibility: Visible, Current: &a}, 1, true},
		{"visible other", State{Visibility: Visible, Current: &b}, 1, false},
		{"visible without id", State{Visibility: Visible, Current: &anon}, 0, false},
		{"leaving current", State{Visibility: Disappearing, Current: &a, Pending: &b}, 1, false},
		{"pending", State{Visibility: Disappearing, Current: &a, Pending: &b}, 2, true},
		{"leaving without pending", State{Visibility: Disappearing, Current: &a}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Holds(tt.id))
		})
	}
}
