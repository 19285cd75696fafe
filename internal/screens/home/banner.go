package home

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/ui/components"
	"github.com/abhisek/wiggles/internal/ui/theme"
)

const bannerFull = `█ █ █ █ █▀▀ █▀▀ █   █▀▀ █▀▀
▀▄▀▄▀ █ █▄█ █▄█ █▄▄ ██▄ ▄██`

const bannerCompact = "W · I · G · G · L · E · S"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	title := bannerFull
	if compact {
		title = bannerCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders XP, plays and the last game in a box matching
// the content width.
func renderStatsBar(sum progress.Summary, now time.Time, cw int, compact bool) string {
	xpStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	playStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	last := "never played"
	if !sum.LastPlayed.IsZero() {
		last = humanize.RelTime(sum.LastPlayed, now, "ago", "from now")
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s",
			xpStyle.Render(fmt.Sprintf("★%s", humanize.Comma(int64(sum.TotalXP)))),
			playStyle.Render(fmt.Sprintf("▶%d", sum.Plays)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			xpStyle.Render(fmt.Sprintf("★ %s XP", humanize.Comma(int64(sum.TotalXP)))),
			playStyle.Render(fmt.Sprintf("▶ %d GAMES", sum.Plays)),
			dimStyle.Render(last),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderMenuCard renders the game menu in a card.
func renderMenuCard(menu components.Menu, cw int) string {
	return components.Card(menu.View(), cw)
}
