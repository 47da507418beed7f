// Package ui renders planner structures — list views, explorer views, and
// simulation timelines — as styled terminal output. All renderers are pure
// string producers; callers decide where the output goes.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")  // blue
	colorDone      = lipgloss.Color("42")  // green
	colorBacklog   = lipgloss.Color("214") // orange
	colorHighlight = lipgloss.Color("213") // magenta
	colorMuted     = lipgloss.Color("241") // gray
)

var (
	styleCategory = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleDone     = lipgloss.NewStyle().Foreground(colorDone)
	styleBacklog  = lipgloss.NewStyle().Foreground(colorBacklog)
	styleSelected = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	styleDimmed   = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader   = lipgloss.NewStyle().Bold(true).Underline(true)
	styleSlotName = lipgloss.NewStyle().Foreground(colorPrimary)
)

// Renderer carries shared rendering options.
type Renderer struct {
	// NoColor strips styling from all output.
	NoColor bool
}

func (r Renderer) render(style lipgloss.Style, s string) string {
	if r.NoColor {
		return s
	}
	return style.Render(s)
}
