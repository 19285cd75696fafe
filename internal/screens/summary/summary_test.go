package summary

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/notes"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/session"
)

func testCompletion() session.Completion {
	return session.Completion{
		SessionID: "s-1",
		Game:      catalog.Game{ID: "balloon-pop", Name: "Balloon Pop", Discipline: catalog.Occupational},
		State: round.SessionState{
			Phase:       round.PhaseSessionComplete,
			TotalRounds: 3,
			Score:       2,
			History: []round.RoundRecord{
				{Index: 0, Attempt: 1, Outcome: round.OutcomeHit, ResponseAt: 900 * time.Millisecond},
				{Index: 1, Attempt: 1, Outcome: round.OutcomeMiss, ResponseAt: 1200 * time.Millisecond},
				{Index: 2, Attempt: 1, Outcome: round.OutcomeHit, ResponseAt: 700 * time.Millisecond},
			},
		},
		Result:   report.SessionResult{Correct: 2, Total: 3, AccuracyPct: 67, XPAwarded: 20},
		Duration: 75 * time.Second,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testCompletion(), Options{})
	if s.Title() != "Well Done" {
		t.Errorf("Title = %q, want %q", s.Title(), "Well Done")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testCompletion(), Options{})
	view := s.View(80, 24)
	for _, want := range []string{"Balloon Pop", "Correct: 2 of 3", "67%", "1:15", "+20 XP", "0.7s", "Tries to practise: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_Delivery(t *testing.T) {
	tests := []struct {
		name     string
		delivery report.Delivery
		want     string
	}{
		{"delivered", report.Delivery{Ack: report.Ack{TotalXP: 140}}, "140 XP total"},
		{"failed", report.Delivery{Err: errors.New("offline")}, "+20 XP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCompletion()
			ch := make(chan report.Delivery, 1)
			ch <- tt.delivery
			c.Delivery = ch

			s := New(c, Options{})
			if !strings.Contains(s.View(80, 24), "saving") {
				t.Error("expected pending delivery before the ack arrives")
			}
			cmd := s.Init()
			if cmd == nil {
				t.Fatal("expected a delivery command")
			}
			s.Update(cmd())
			view := s.View(80, 24)
			if !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
			for _, hidden := range []string{"saving", "not saved", "offline"} {
				if strings.Contains(view, hidden) {
					t.Errorf("view shows %q after delivery", hidden)
				}
			}
		})
	}
}

func TestSummaryScreen_Note(t *testing.T) {
	svc := notes.NewService(nil, nil, notes.DefaultConfig(), nil)
	s := New(testCompletion(), Options{Notes: svc})
	if !strings.Contains(s.View(80, 24), "Writing a note") {
		t.Error("expected note placeholder")
	}

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected a note command")
	}
	s.Update(cmd())
	if s.writing {
		t.Fatal("note still pending")
	}
	if s.note.Source != notes.SourceTemplate || s.note.Text == "" {
		t.Errorf("note = %+v, want template note", s.note)
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testCompletion(), Options{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg on Enter")
	}
}

type stubScreen struct{ screen.Screen }

func TestSummaryScreen_PlayAgain(t *testing.T) {
	next := &stubScreen{}
	s := New(testCompletion(), Options{Replay: func() screen.Screen { return next }})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'p', Text: "p"})
	if cmd == nil {
		t.Fatal("expected a command on P")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen != next {
		t.Errorf("got %#v, want ReplaceScreenMsg with the replay screen", msg)
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	if n := len(New(testCompletion(), Options{}).KeyHints()); n != 2 {
		t.Errorf("KeyHints length = %d, want 2", n)
	}
	withReplay := New(testCompletion(), Options{Replay: func() screen.Screen { return nil }})
	if n := len(withReplay.KeyHints()); n != 3 {
		t.Errorf("KeyHints length = %d, want 3", n)
	}
}
