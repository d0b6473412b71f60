package display

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/config"
)

// Frame is the computed geometry of the bar for one screen size, in cells.
type Frame struct {
	X, Width     int // Column and width of the bar
	Height       int // Rows, including element margins
	SettledY     int // Top row once fully shown
	HiddenY      int // Top row when off-screen (the first row below the screen)
	MessageWidth int // Columns available to the wrapped message
	ActionX      int // Column of the action label, -1 without action
	ActionWidth  int
}

// Y returns the top row of the bar at animation progress p.
func (f Frame) Y(p float64) int {
	p = max(0, min(1, p))
	return f.HiddenY + int(math.Round(float64(f.SettledY-f.HiddenY)*p))
}

// Layout computes frames from the layout configuration.
type Layout struct {
	cfg config.LayoutConfig
}

// NewLayout creates a Layout.
func NewLayout(cfg config.LayoutConfig) Layout {
	return Layout{cfg: cfg}
}

// Compute returns the frame for message and action on a width x height screen.
// action may be empty.
func (l Layout) Compute(width, height int, message, action string) Frame {
	f := Frame{
		X:       l.cfg.SideMargin,
		Width:   max(0, width-2*l.cfg.SideMargin),
		HiddenY: height,
		ActionX: -1,
	}

	inner := f.Width - 2*l.cfg.Spacing
	if action != "" {
		f.ActionWidth = lipgloss.Width(action)
		inner -= f.ActionWidth + l.cfg.Spacing
		f.ActionX = f.X + f.Width - l.cfg.Spacing - f.ActionWidth
	}
	f.MessageWidth = max(1, inner)

	f.Height = l.cfg.DefaultHeight
	if l.cfg.AllowHeightChange {
		lines := lipgloss.Height(wrap(message, f.MessageWidth))
		f.Height = max(f.Height, lines+2*l.cfg.ElementMargin)
	}

	f.SettledY = height - l.cfg.BottomMargin - f.Height
	return f
}

// wrap word-wraps s to width columns.
func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
