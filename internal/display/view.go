package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Styles holds the lipgloss styles of the bar.
type Styles struct {
	Bar     lipgloss.Style
	Message lipgloss.Style
	Action  lipgloss.Style
}

// NewStyles builds Styles from the style configuration.
func NewStyles(cfg config.StyleConfig) Styles {
	bg := lipgloss.Color(cfg.Background)
	return Styles{
		Bar: lipgloss.NewStyle().
			Background(bg),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.MessageColor)).
			Background(bg).
			Bold(cfg.MessageBold),
		Action: lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.ActionColor)).
			Background(bg).
			Bold(cfg.ActionBold),
	}
}

// label is a text element of the bar, updated in place on every mount.
type label struct {
	text   string
	hidden bool
}

func (l *label) set(text string) {
	l.text = text
	l.hidden = text == ""
}

// View draws the bar over a terminal screen. It implements snackbar.Surface
// and, like the Bar driving it, must only be used from the tea loop.
type View struct {
	layout  Layout
	spacing int
	styles  Styles

	message *label
	action  *label

	width, height int
	mounted       bool
	position      float64
	frame         Frame
}

var _ snackbar.Surface = (*View)(nil)

// NewView creates an unmounted View.
func NewView(cfg config.LayoutConfig, styles Styles) *View {
	return &View{
		layout:  NewLayout(cfg),
		spacing: cfg.Spacing,
		styles:  styles,
		message: &label{hidden: true},
		action:  &label{hidden: true},
	}
}

// Mount shows req in the bar, reusing the existing labels.
func (v *View) Mount(req snackbar.Request) {
	v.message.set(req.Message())
	v.action.set(req.Action())
	v.mounted = true
	v.reflow()
}

// SetPosition moves the bar. 0 is off-screen, 1 is settled.
func (v *View) SetPosition(p float64) {
	v.position = max(0, min(1, p))
}

// Unmount removes the bar from the screen.
func (v *View) Unmount() {
	v.mounted = false
	v.position = 0
}

// SetBounds updates the screen size.
func (v *View) SetBounds(width, height int) {
	v.width, v.height = width, height
	v.reflow()
}

// Configure applies new layout and style settings.
func (v *View) Configure(cfg config.LayoutConfig, styles Styles) {
	v.layout = NewLayout(cfg)
	v.spacing = cfg.Spacing
	v.styles = styles
	v.reflow()
}

// Mounted reports whether the bar is on screen.
func (v *View) Mounted() bool { return v.mounted }

// Position returns the current animation position.
func (v *View) Position() float64 { return v.position }

// Frame returns the geometry for the mounted content.
func (v *View) Frame() Frame { return v.frame }

func (v *View) reflow() {
	action := ""
	if !v.action.hidden {
		action = v.action.text
	}
	v.frame = v.layout.Compute(v.width, v.height, v.message.text, action)
}

// Render returns the bar block, or "" when unmounted.
func (v *View) Render() string {
	if !v.mounted || v.frame.Width == 0 {
		return ""
	}

	content := v.styles.Message.Width(v.frame.MessageWidth).Render(v.message.text)
	if !v.action.hidden {
		gap := v.styles.Bar.Render(strings.Repeat(" ", v.spacing))
		content = lipgloss.JoinHorizontal(lipgloss.Center, content, gap, v.styles.Action.Render(v.action.text))
	}

	return v.styles.Bar.
		Width(v.frame.Width).
		Height(v.frame.Height).
		MaxHeight(v.frame.Height).
		PaddingLeft(v.spacing).
		AlignVertical(lipgloss.Center).
		Render(content)
}

// Overlay draws the bar over base, a full screen render.
func (v *View) Overlay(base string) string {
	bar := v.Render()
	if bar == "" {
		return base
	}

	lines := strings.Split(base, "\n")
	for len(lines) < v.height {
		lines = append(lines, "")
	}

	top := v.frame.Y(v.position)
	for i, barLine := range strings.Split(bar, "\n") {
		row := top + i
		if row < 0 || row >= len(lines) || row >= v.height {
			continue
		}
		line := lines[row]
		left := ansi.Truncate(line, v.frame.X, "")
		if w := ansi.StringWidth(left); w < v.frame.X {
			left += strings.Repeat(" ", v.frame.X-w)
		}
		right := ansi.TruncateLeft(line, v.frame.X+v.frame.Width, "")
		lines[row] = left + barLine + right
	}
	return strings.Join(lines, "\n")
}

// HitAction reports whether the cell at x, y lies on the action label.
func (v *View) HitAction(x, y int) bool {
	if !v.mounted || v.action.hidden || v.frame.ActionX < 0 {
		return false
	}
	top := v.frame.Y(v.position)
	if y < top || y >= top+v.frame.Height {
		return false
	}
	return x >= v.frame.ActionX && x < v.frame.ActionX+v.frame.ActionWidth
}
