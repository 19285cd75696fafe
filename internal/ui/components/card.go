package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/ui/theme"
)

const (
	maxContentWidth = 60
	minContentWidth = 20
)

// ContentWidth is the width shared by the stacked boxes of a screen, so
// their borders line up.
func ContentWidth(frameWidth int) int {
	// frame border (2) + inner padding (4)
	return min(max(frameWidth-6, minContentWidth), maxContentWidth)
}

// Frame draws the double border around a whole screen and centers content
// in it.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card is a rounded box of content width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// Button is a one-line button; the selected one is filled.
func Button(label string, selected bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if !selected {
		return style.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
	}
	return style.
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Accent).
		BorderForeground(theme.Accent).
		Render("▸ " + label)
}
