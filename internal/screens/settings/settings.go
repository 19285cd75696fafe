// Package settings is the screen for the player's cue preferences.
package settings

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/ui/components"
	"github.com/abhisek/wiggles/internal/ui/layout"
	"github.com/abhisek/wiggles/internal/ui/theme"
)

const volumeStep = 0.1

type row int

const (
	rowSound row = iota
	rowSpeech
	rowHaptics
	rowVolume
	rowDone
	rowCount
)

// SettingsScreen toggles sound, speech and haptics and sets the volume.
// Every change is saved immediately.
type SettingsScreen struct {
	store    *feedback.SettingsStore
	selected row
	errMsg   string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen editing store.
func New(store *feedback.SettingsStore) *SettingsScreen {
	return &SettingsScreen{store: store}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Toggle"},
		{Key: "←→", Description: "Volume"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		s.selected = max(0, s.selected-1)
	case "down", "j":
		s.selected = min(rowCount-1, s.selected+1)
	case "left", "h":
		if s.selected == rowVolume {
			s.update(func(st *feedback.Settings) { st.Volume -= volumeStep })
		}
	case "right", "l":
		if s.selected == rowVolume {
			s.update(func(st *feedback.Settings) { st.Volume += volumeStep })
		}
	case "space", "enter":
		switch s.selected {
		case rowSound:
			s.update(func(st *feedback.Settings) { st.Sound = !st.Sound })
		case rowSpeech:
			s.update(func(st *feedback.Settings) { st.Speech = !st.Speech })
		case rowHaptics:
			s.update(func(st *feedback.Settings) { st.Haptics = !st.Haptics })
		case rowDone:
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SettingsScreen) update(fn func(*feedback.Settings)) {
	s.errMsg = ""
	if err := s.store.Update(fn); err != nil {
		s.errMsg = err.Error()
	}
}

func (s *SettingsScreen) View(width, height int) string {
	st := s.store.Get()
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(s.line(rowSound, "Sounds", onOff(st.Sound)))
	b.WriteString(s.line(rowSpeech, "Spoken prompts", onOff(st.Speech)))
	b.WriteString(s.line(rowHaptics, "Vibration", onOff(st.Haptics)))
	b.WriteString(s.line(rowVolume, "Volume", components.NewProgressBar("", st.Volume, true, 20).View()))

	sections := []string{
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(theme.Title.Render("Cue settings")),
		components.Card(b.String(), cw),
		lipgloss.PlaceHorizontal(cw, lipgloss.Center, components.Button("DONE", s.selected == rowDone, 16)),
	}
	if s.errMsg != "" {
		sections = append(sections, theme.Incorrect.Render("Could not save: "+s.errMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}

func (s *SettingsScreen) line(r row, label, value string) string {
	prefix, style := "  ", theme.Unselected
	if r == s.selected {
		prefix, style = "▸ ", theme.Selected
	}
	return fmt.Sprintf("%s  %s\n", style.Render(fmt.Sprintf("%s%-16s", prefix, label)), value)
}

func onOff(on bool) string {
	if on {
		return theme.Correct.Render("ON")
	}
	return theme.Hint.Render("OFF")
}
