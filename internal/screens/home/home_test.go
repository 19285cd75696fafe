package home

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
)

type stubScreen struct {
	screen.Screen
	name string
}

func builtin(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Builtin("(devel)")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHomeScreen_ListsGames(t *testing.T) {
	c := builtin(t)
	h := New(Options{Catalog: c, Play: func(g catalog.Game) screen.Screen { return &stubScreen{name: g.ID} }})

	if got, want := h.gameCount(), len(c.Games()); got != want {
		t.Errorf("gameCount = %d, want %d", got, want)
	}
	if h.Selected() != c.Games()[0].Name {
		t.Errorf("Selected = %q, want first game", h.Selected())
	}
}

func TestHomeScreen_EnterPushesPlay(t *testing.T) {
	c := builtin(t)
	h := New(Options{Catalog: c, Play: func(g catalog.Game) screen.Screen { return &stubScreen{name: g.ID} }})

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", msg)
	}
	if got := msg.Screen.(*stubScreen).name; got != c.Games()[1].ID {
		t.Errorf("pushed %q, want %q", got, c.Games()[1].ID)
	}
}

func TestHomeScreen_DisabledWithoutBuilders(t *testing.T) {
	h := New(Options{Catalog: builtin(t)})
	if h.gameCount() != 0 {
		t.Errorf("gameCount = %d, want 0 without a play builder", h.gameCount())
	}
	// Only EXIT is selectable.
	if h.Selected() != "EXIT" {
		t.Errorf("Selected = %q, want EXIT", h.Selected())
	}
}

func TestHomeScreen_Stats(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	h := New(Options{Catalog: builtin(t), Now: func() time.Time { return now }})

	h.Update(StatsMsg{Summary: progress.Summary{TotalXP: 1250, Plays: 7, LastPlayed: now.Add(-2 * time.Hour)}})
	view := h.View(120, 40)
	for _, want := range []string{"1,250 XP", "7 GAMES", "2 hours ago"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// Errors keep the previous stats.
	h.Update(StatsMsg{Err: errors.New("offline")})
	if h.stats.TotalXP != 1250 {
		t.Errorf("TotalXP = %d, want 1250", h.stats.TotalXP)
	}
}

func TestMascotFor(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		last time.Time
		want MascotVariant
	}{
		{time.Time{}, MascotIdle},
		{now.Add(-time.Hour), MascotCelebrating},
		{now.Add(-48 * time.Hour), MascotIdle},
		{now.Add(-100 * time.Hour), MascotSleepy},
	}
	for _, tt := range tests {
		if got := mascotFor(tt.last, now); got != tt.want {
			t.Errorf("mascotFor(%v) = %d, want %d", tt.last, got, tt.want)
		}
	}
}

func TestHomeScreen_Title(t *testing.T) {
	if New(Options{}).Title() != "Home" {
		t.Error("unexpected title")
	}
}
