package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/ui/layout"
	"github.com/abhisek/wiggles/internal/ui/theme"
)

const recentLimit = 50

// Source lists logged games, newest first.
type Source interface {
	Recent(ctx context.Context, limit int) ([]progress.GameEntry, error)
}

// NoteSource looks up the parent note of a session.
type NoteSource interface {
	Note(ctx context.Context, sessionID string) (string, bool, error)
}

type historyLoadedMsg struct {
	Entries []progress.GameEntry
	Err     error
}

type noteLoadedMsg struct {
	SessionID string
	Text      string
}

// HistoryScreen lists past games. Enter expands a game with its skills
// and parent note.
type HistoryScreen struct {
	source   Source
	notes    NoteSource
	catalog  *catalog.Catalog
	entries  []progress.GameEntry
	noteText map[string]string
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. notes and cat may be nil.
func New(source Source, notes NoteSource, cat *catalog.Catalog) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		notes:    notes,
		catalog:  cat,
		noteText: make(map[string]string),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		entries, err := s.source.Recent(context.Background(), recentLimit)
		return historyLoadedMsg{Entries: entries, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.entries = msg.Entries
		}
		s.loaded = true
		return s, nil

	case noteLoadedMsg:
		s.noteText[msg.SessionID] = msg.Text
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if len(s.entries) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			if s.expanded[s.selected] {
				return s, s.loadNote(s.entries[s.selected].SessionID)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadNote(sessionID string) tea.Cmd {
	if s.notes == nil {
		return nil
	}
	if _, ok := s.noteText[sessionID]; ok {
		return nil
	}
	return func() tea.Msg {
		text, _, err := s.notes.Note(context.Background(), sessionID)
		if err != nil {
			text = ""
		}
		return noteLoadedMsg{SessionID: sessionID, Text: text}
	}
}

func (s *HistoryScreen) gameName(gameType string) string {
	if s.catalog != nil {
		if g, ok := s.catalog.Get(gameType); ok {
			return g.Name
		}
	}
	return gameType
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No games yet. Pick one to play!")
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%-18s %-16s %d/%d  %3d%%  +%d XP",
			prefix, humanize.Time(e.LoggedAt), s.gameName(e.GameType),
			e.Correct, e.Total, e.Accuracy, e.XPAwarded)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if !s.expanded[i] {
			continue
		}
		if len(e.SkillTags) > 0 {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				dim.Render("    Skills: "+strings.Join(e.SkillTags, ", "))))
			b.WriteString("\n")
		}
		note, ok := s.noteText[e.SessionID]
		switch {
		case s.notes == nil:
		case !ok:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading note...")))
			b.WriteString("\n")
		case note == "":
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No note for this game")))
			b.WriteString("\n")
		default:
			wrapped := lipgloss.NewStyle().Width(min(width-8, 64)).Foreground(theme.Text).Render(note)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, wrapped))
			b.WriteString("\n")
		}
	}

	return b.String()
}
