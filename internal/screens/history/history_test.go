package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/router"
)

type fakeSource struct {
	entries []progress.GameEntry
	err     error
}

func (f fakeSource) Recent(context.Context, int) ([]progress.GameEntry, error) {
	return f.entries, f.err
}

type fakeNotes map[string]string

func (f fakeNotes) Note(_ context.Context, id string) (string, bool, error) {
	text, ok := f[id]
	return text, ok, nil
}

func entries() []progress.GameEntry {
	now := time.Now()
	return []progress.GameEntry{
		{SessionID: "a", GameType: "balloon-pop", Correct: 8, Total: 8, Accuracy: 100, XPAwarded: 80, SkillTags: []string{"visual-motor"}, LoggedAt: now.Add(-time.Hour)},
		{SessionID: "b", GameType: "sound-match", Correct: 3, Total: 5, Accuracy: 60, XPAwarded: 30, LoggedAt: now.Add(-48 * time.Hour)},
	}
}

func loaded(t *testing.T, s *HistoryScreen) *HistoryScreen {
	t.Helper()
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("history not loaded")
	}
	return s
}

func TestHistoryScreen_ListsGames(t *testing.T) {
	cat, err := catalog.Builtin("(devel)")
	if err != nil {
		t.Fatal(err)
	}
	s := loaded(t, New(fakeSource{entries: entries()}, nil, cat))

	view := s.View(100, 30)
	for _, want := range []string{"Balloon Pop", "8/8", "+80 XP", "1 hour ago", "2 days ago"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := loaded(t, New(fakeSource{}, nil, nil))
	if !strings.Contains(s.View(80, 24), "No games yet") {
		t.Error("expected empty message")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := loaded(t, New(fakeSource{err: errors.New("db locked")}, nil, nil))
	if !strings.Contains(s.View(80, 24), "db locked") {
		t.Error("expected error message")
	}
}

func TestHistoryScreen_ExpandShowsNote(t *testing.T) {
	s := loaded(t, New(fakeSource{entries: entries()}, fakeNotes{"b": "Great listening today."}, nil))

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Fatalf("selected = %d, want 1", s.selected)
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a note command")
	}
	if !strings.Contains(s.View(100, 30), "Loading note") {
		t.Error("expected loading placeholder")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "Great listening today.") {
		t.Error("expected note text")
	}

	// Collapsing and expanding again does not reload.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected cached note")
	}
}

func TestHistoryScreen_Esc(t *testing.T) {
	s := New(fakeSource{}, nil, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
