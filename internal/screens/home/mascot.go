package home

import (
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // played in the last day
	MascotSleepy                    // no game for three days
)

const mascotIdle = `  ◉ ◉
 ( ▽ )~∿~∿~∿~o`

const mascotCelebrating = ` \★ ★/
 ( ▿ )~∿~∿~∿~o ♪`

const mascotSleepy = `  - -   z
 ( ‿ )~~~~~~~o`

// mascotFor picks the mascot from when the last game was played.
func mascotFor(lastPlayed, now time.Time) MascotVariant {
	switch {
	case lastPlayed.IsZero():
		return MascotIdle
	case now.Sub(lastPlayed) < 24*time.Hour:
		return MascotCelebrating
	case now.Sub(lastPlayed) > 72*time.Hour:
		return MascotSleepy
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch variant {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Accent
	case MascotSleepy:
		art, fg = mascotSleepy, theme.TextDim
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
