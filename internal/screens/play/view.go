package play

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/games"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/ui/components"
	"github.com/abhisek/wiggles/internal/ui/theme"
	"github.com/abhisek/wiggles/internal/validate"
)

const (
	maxFieldCols = 60
	maxFieldRows = 18

	// beatFlash is how long the drum stays lit after each beat.
	beatFlash = 150 * time.Millisecond
)

func (s *PlayScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Could not start "+s.game.Name+": "+s.errMsg))
	}

	st := s.sess.State()
	center := func(text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render(st.Round.Prompt)))
	b.WriteString("\n")
	b.WriteString(center(s.statusLine(st)))
	b.WriteString("\n\n")

	// Prompt, status, flash and caption lines plus spacing.
	fieldRows := max(3, min(maxFieldRows, height-8))
	fieldCols := max(10, min(maxFieldCols, width-4))

	switch t := st.Round.Target.(type) {
	case round.ValueTarget:
		if swipeable(t) {
			b.WriteString(center(theme.Hint.Render("Swipe with the arrow keys")))
		} else {
			b.WriteString(center(s.choices.View()))
		}
	case round.TimingTarget:
		b.WriteString(center(s.lamp(st, t)))
	default:
		b.WriteString(center(s.field(st, fieldCols, fieldRows)))
	}
	b.WriteString("\n\n")

	b.WriteString(center(flash(st)))
	b.WriteString("\n")
	b.WriteString(center(theme.Caption.Render(s.captions.Text())))
	return b.String()
}

func (s *PlayScreen) statusLine(st round.SessionState) string {
	played := map[int]bool{}
	var order []int
	for _, rec := range st.History {
		if _, seen := played[rec.Index]; !seen {
			order = append(order, rec.Index)
		}
		played[rec.Index] = rec.Outcome == round.OutcomeHit
	}
	won := make([]bool, len(order))
	for i, idx := range order {
		won[i] = played[idx]
	}

	label := fmt.Sprintf("Round %d of %d   ★ %d   ", min(st.CurrentRound+1, st.TotalRounds), st.TotalRounds, st.Score)
	return theme.Subtitle.Render(label) + components.RoundTrack(st.TotalRounds, won)
}

func flash(st round.SessionState) string {
	switch st.Phase {
	case round.PhaseResolved:
		switch st.LastOutcome {
		case round.OutcomeHit:
			return theme.Correct.Render("Great job!")
		case round.OutcomeTooEarly:
			return theme.Incorrect.Render("Too early! Wait for it.")
		case round.OutcomeTooLate:
			return theme.Incorrect.Render("Too slow!")
		default:
			return theme.Incorrect.Render("Not quite.")
		}
	case round.PhasePresenting:
		if st.Attempt > 1 {
			return theme.Hint.Render("Try again!")
		}
		return theme.Hint.Render("Get ready...")
	case round.PhaseAwaitingResponse:
		return theme.Body.Render("Go!")
	}
	return ""
}

// lamp draws timing rounds: a drum that lights on each beat, or a single
// light that turns green at the cue.
func (s *PlayScreen) lamp(st round.SessionState, t round.TimingTarget) string {
	lit := false
	if st.Phase == round.PhaseAwaitingResponse {
		el := s.sess.Elapsed()
		if t.Beats <= 1 {
			lit = el >= t.Start
		} else {
			for k := range t.Beats {
				at := t.Start + time.Duration(k)*t.Period
				if el >= at && el < at+beatFlash {
					lit = true
					break
				}
			}
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 4).
		Bold(true)
	switch {
	case t.Beats <= 1 && lit:
		return style.BorderForeground(theme.Success).Foreground(theme.Success).Render("●  GO")
	case t.Beats <= 1:
		return style.BorderForeground(theme.Error).Foreground(theme.Error).Render("●  STOP")
	case lit:
		return style.BorderForeground(theme.Accent).Foreground(theme.Accent).Render("◉  BOOM")
	default:
		return style.BorderForeground(theme.Border).Foreground(theme.TextDim).Render("○  ....")
	}
}

// field draws spatial rounds on a cols x rows grid over the game canvas.
func (s *PlayScreen) field(st round.SessionState, cols, rows int) string {
	cellW := games.Canvas.Width / float64(cols)
	cellH := games.Canvas.Height / float64(rows)
	cellOf := func(p round.Point) (int, int) {
		c := int(p.X / cellW)
		r := int(p.Y / cellH)
		return max(0, min(cols-1, c)), max(0, min(rows-1, r))
	}

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = theme.Field.Render("·")
		}
	}
	fill := func(inside func(round.Point) bool, cell string) {
		for r := range rows {
			for c := range cols {
				p := round.Point{X: (float64(c) + 0.5) * cellW, Y: (float64(r) + 0.5) * cellH}
				if inside(p) {
					grid[r][c] = cell
				}
			}
		}
	}
	label := func(text string, at round.Point) {
		c, r := cellOf(at)
		c = max(0, c-len(text)/2)
		for i, ch := range text {
			if c+i < cols {
				grid[r][c+i] = theme.Body.Render(string(ch))
			}
		}
	}
	open := st.Phase == round.PhaseAwaitingResponse
	cursor := theme.Cursor.Render("✚")

	switch t := st.Round.Target.(type) {
	case round.PointTarget:
		mark := theme.Hint.Render("○")
		if open {
			mark = theme.Target.Render("●")
		}
		fill(func(p round.Point) bool { return validate.InRadius(p, t.Center, t.Radius) }, mark)
		c, r := cellOf(t.Center)
		grid[r][c] = mark
	case round.BoxTarget:
		boxes := make([]round.BoxTarget, 0, len(games.Bins)+1)
		known := false
		for _, bin := range games.Bins {
			boxes = append(boxes, bin.Box)
			known = known || bin.Box == t
		}
		if !known {
			boxes = append(boxes, t)
		}
		for _, box := range boxes {
			fill(func(p round.Point) bool { return validate.InBox(p, box) }, theme.Target.Render("▒"))
		}
		for _, bin := range games.Bins {
			label(bin.Label, round.Point{X: (bin.Box.Min.X + bin.Box.Max.X) / 2, Y: (bin.Box.Min.Y + bin.Box.Max.Y) / 2})
		}
	case round.OrientationTarget:
		fill(func(p round.Point) bool { return validate.InRadius(p, t.Center, t.Radius) }, theme.Target.Render("░"))
		c, r := cellOf(t.Center)
		grid[r][c] = theme.Target.Render(arrow(t.Rotation))
		cursor = theme.Cursor.Render(arrow(s.rotation))
	}

	c, r := cellOf(s.cursor)
	grid[r][c] = cursor

	lines := make([]string, rows)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(strings.Join(lines, "\n"))
}

// arrow shows a rotation in degrees, rounded to a quarter turn.
func arrow(deg float64) string {
	q := int(math.Round(deg/90)) % 4
	if q < 0 {
		q += 4
	}
	return []string{"↑", "→", "↓", "←"}[q]
}
