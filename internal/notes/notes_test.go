package notes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/llm"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/session"
	"github.com/abhisek/wiggles/internal/store"
)

func completion(t *testing.T) session.Completion {
	t.Helper()
	c, err := catalog.Builtin("(devel)")
	require.NoError(t, err)
	g, ok := c.Get("number-sequence")
	require.True(t, ok)

	history := []round.RoundRecord{
		{Index: 0, Attempt: 1, Outcome: round.OutcomeHit, ResponseAt: 900 * time.Millisecond},
		{Index: 1, Attempt: 1, Outcome: round.OutcomeMiss, ResponseAt: 2 * time.Second},
		{Index: 1, Attempt: 2, Outcome: round.OutcomeHit, ResponseAt: 1200 * time.Millisecond},
		{Index: 2, Attempt: 1, Outcome: round.OutcomeMiss, TimedOut: true},
	}
	return session.Completion{
		SessionID: "s-1",
		Game:      g,
		State:     round.SessionState{SessionID: "s-1", Score: 2, CurrentRound: 3, History: history},
		Result:    report.SessionResult{Correct: 2, Total: 3, AccuracyPct: 67, XPAwarded: 30},
		Duration:  40 * time.Second,
	}
}

func memRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestInputFor(t *testing.T) {
	in := InputFor(completion(t))
	assert.Equal(t, 2, in.Correct)
	assert.Equal(t, 3, in.Total)
	assert.Equal(t, 1, in.Retried)
	assert.Equal(t, 1, in.TimedOut)
	assert.Equal(t, 900*time.Millisecond, in.FastestHit)
	assert.Equal(t, catalog.Occupational, in.Discipline)
}

func TestWriteWithModel(t *testing.T) {
	repo := memRepo(t)
	mock := llm.NewMock(llm.MockResponse{Content: json.RawMessage(`{"note":"  Lovely counting today.  "}`)})
	svc := NewService(mock, repo, DefaultConfig(), nil)

	n := svc.Write(context.Background(), completion(t))
	assert.Equal(t, Note{SessionID: "s-1", Text: "Lovely counting today.", Source: SourceLLM}, n)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, NoteSchema, calls[0].Schema)
	assert.Contains(t, calls[0].Prompt, "Correct: 2 of 3 (67%)")
	assert.Contains(t, calls[0].Prompt, "Rounds that needed another try: 1")

	rec, err := repo.Note(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, rec.Source)
	assert.Equal(t, "Lovely counting today.", rec.Text)
}

func TestWriteFallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{"no provider", nil},
		{"provider error", llm.NewMock(llm.MockResponse{Err: errors.New("boom")})},
		{"schema violation", llm.NewMock(llm.MockResponse{Content: json.RawMessage(`{"text":"hi"}`)})},
		{"empty note", llm.NewMock(llm.MockResponse{Content: json.RawMessage(`{"note":"   "}`)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memRepo(t)
			c := completion(t)
			n := NewService(tt.provider, repo, DefaultConfig(), nil).Write(context.Background(), c)
			assert.Equal(t, SourceTemplate, n.Source)
			assert.Equal(t, Template(InputFor(c)), n.Text)

			rec, err := repo.Note(context.Background(), "s-1")
			require.NoError(t, err)
			assert.Equal(t, SourceTemplate, rec.Source)
		})
	}
}

func TestRequestIsAsync(t *testing.T) {
	mock := llm.NewMock(llm.MockResponse{Content: json.RawMessage(`{"note":"Nice."}`)})
	svc := NewService(mock, nil, DefaultConfig(), nil)

	select {
	case n := <-svc.Request(context.Background(), completion(t)):
		assert.Equal(t, "Nice.", n.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("note not delivered")
	}
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			"perfect",
			Input{GameName: "Balloon Pop", Correct: 5, Total: 5, Accuracy: 100, FastestHit: 612 * time.Millisecond},
			"A perfect round of Balloon Pop: 5 out of 5! The quickest correct answer took 610ms.",
		},
		{
			"early responses",
			Input{GameName: "Stop Signal", Correct: 3, Total: 5, Accuracy: 60, Early: 2},
			"Good effort on Stop Signal: 3 out of 5 correct. Practising waiting for the signal will help.",
		},
		{
			"retries",
			Input{GameName: "Shape Parking", Correct: 4, Total: 5, Accuracy: 80, Retried: 1},
			"Great work on Shape Parking, with 4 out of 5 correct. 1 round needed another try.",
		},
		{
			"timeouts",
			Input{GameName: "Dot Track", Correct: 1, Total: 5, Accuracy: 20, TimedOut: 3},
			"Dot Track was tricky today (1 out of 5), and sticking with it is what counts. A few rounds went unanswered, so shorter sessions may help.",
		},
		{
			"nothing played",
			Input{GameName: "Sound Match"},
			"Sound Match was started but no rounds were played.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Template(tt.in))
		})
	}
}
