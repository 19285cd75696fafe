package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/notes"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/session"
	"github.com/abhisek/wiggles/internal/ui/components"
	"github.com/abhisek/wiggles/internal/ui/layout"
	"github.com/abhisek/wiggles/internal/ui/theme"
)

// Options are the optional collaborators of the summary screen.
type Options struct {
	// Notes writes the parent note. Without it no note is shown.
	Notes *notes.Service

	// Replay builds a fresh play screen for the same game.
	Replay func() screen.Screen
}

type deliveryMsg report.Delivery

type noteMsg notes.Note

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	completion session.Completion
	summary    session.Summary
	opts       Options

	delivering bool
	delivery   report.Delivery

	writing bool
	note    notes.Note
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(c session.Completion, opts Options) *SummaryScreen {
	return &SummaryScreen{
		completion: c,
		summary:    session.BuildSummary(c),
		opts:       opts,
		delivering: c.Delivery != nil,
		writing:    opts.Notes != nil,
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	var cmds []tea.Cmd
	if s.delivering {
		ch := s.completion.Delivery
		cmds = append(cmds, func() tea.Msg { return deliveryMsg(<-ch) })
	}
	if s.writing {
		ch := s.opts.Notes.Request(context.Background(), s.completion)
		cmds = append(cmds, func() tea.Msg { return noteMsg(<-ch) })
	}
	return tea.Batch(cmds...)
}

func (s *SummaryScreen) Title() string {
	return "Well Done"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.opts.Replay != nil {
		hints = append(hints, layout.KeyHint{Key: "P", Description: "Play again"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case deliveryMsg:
		s.delivering = false
		s.delivery = report.Delivery(msg)
	case noteMsg:
		s.writing = false
		s.note = notes.Note(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "p":
			if s.opts.Replay != nil {
				next := s.opts.Replay()
				return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(text string, style lipgloss.Style) string {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(style.Render(text))
	}

	var b strings.Builder
	b.WriteString(center(headline(sum.Result), theme.Title))
	b.WriteString("\n")
	b.WriteString(center(sum.GameName, theme.Subtitle))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Correct: %d of %d        Accuracy: %d%%        Time: %s",
		sum.Result.Correct, sum.Result.Total, sum.Result.AccuracyPct, clock(sum.Duration))
	b.WriteString(center(stats, theme.Body))
	b.WriteString("\n\n")

	won := make([]bool, len(sum.Rounds))
	for i, r := range sum.Rounds {
		won[i] = r.Outcome == round.OutcomeHit
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.RoundTrack(len(sum.Rounds), won)))
	b.WriteString("\n\n")

	if sum.FastestHit > 0 {
		b.WriteString(center(fmt.Sprintf("Fastest answer: %.1fs", sum.FastestHit.Seconds()), theme.Hint))
		b.WriteString("\n")
	}
	if sum.Misses > 0 {
		b.WriteString(center(fmt.Sprintf("Tries to practise: %d", sum.Misses), theme.Hint))
		b.WriteString("\n")
	}
	b.WriteString(center(s.xpLine(), lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)))
	b.WriteString("\n\n")

	switch {
	case s.writing:
		b.WriteString(center("Writing a note for grown-ups...", theme.Hint))
	case s.note.Text != "":
		card := lipgloss.NewStyle().
			Width(min(width-8, 64)).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Foreground(theme.Text).
			Render(s.note.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	}
	return b.String()
}

func (s *SummaryScreen) xpLine() string {
	res := s.summary.Result
	switch {
	case s.delivering:
		return fmt.Sprintf("★ +%d XP  (saving...)", res.XPAwarded)
	case s.completion.Delivery == nil, s.delivery.Err != nil:
		// A failed report is logged by the reporter and not shown.
		return fmt.Sprintf("★ +%d XP", res.XPAwarded)
	default:
		return fmt.Sprintf("★ +%d XP  ·  %d XP total", res.XPAwarded, s.delivery.Ack.TotalXP)
	}
}

func headline(r report.SessionResult) string {
	switch {
	case r.Total > 0 && r.Correct == r.Total:
		return "Perfect!"
	case r.AccuracyPct >= 70:
		return "Great playing!"
	case r.AccuracyPct >= 40:
		return "Nice try!"
	default:
		return "Good practice!"
	}
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
