package components

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/ui/theme"
)

// Choices is a horizontal row of numbered answer cards.
type Choices struct {
	Options  []string
	Selected int
}

// NewChoices returns a row with the first option selected.
func NewChoices(options []string) Choices {
	return Choices{Options: options}
}

// Move shifts the selection by delta, clamped to the row.
func (c Choices) Move(delta int) Choices {
	c.Selected = max(0, min(len(c.Options)-1, c.Selected+delta))
	return c
}

// Pick selects the option with 1-based number n. It reports false for
// numbers outside the row.
func (c Choices) Pick(n int) (Choices, bool) {
	if n < 1 || n > len(c.Options) {
		return c, false
	}
	c.Selected = n - 1
	return c, true
}

// Value returns the selected option.
func (c Choices) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the cards side by side.
func (c Choices) View() string {
	cards := make([]string, len(c.Options))
	for i, opt := range c.Options {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2).
			Foreground(theme.Text)
		if i == c.Selected {
			style = style.BorderForeground(theme.Primary).Foreground(theme.Primary).Bold(true)
		}
		cards[i] = style.Render(fmt.Sprintf("%d  %s", i+1, opt))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
