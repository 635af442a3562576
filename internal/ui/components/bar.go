package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Bar represents a fixed-width percentage bar
type Bar struct {
	Width       int
	BarChar     string
	EmptyChar   string
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewBar creates a new percentage bar
func NewBar(width int) Bar {
	return Bar{
		Width:       width,
		BarChar:     "█",
		EmptyChar:   "░",
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// View renders the bar for a percentage in 0..100
func (b Bar) View(percent uint8) string {
	if percent > 100 {
		percent = 100
	}

	width := b.Width
	if width < 4 {
		width = 4
	}

	filled := width * int(percent) / 100
	empty := width - filled

	var sb strings.Builder
	sb.WriteString(b.FilledStyle.Render(strings.Repeat(b.BarChar, filled)))
	sb.WriteString(b.EmptyStyle.Render(strings.Repeat(b.EmptyChar, empty)))
	return sb.String()
}
