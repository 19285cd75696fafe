package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/games"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/store"
)

var epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func game(t *testing.T, id string) catalog.Game {
	t.Helper()
	c, err := catalog.Builtin("(devel)")
	require.NoError(t, err)
	g, ok := c.Get(id)
	require.True(t, ok, id)
	return g
}

type fixture struct {
	clock    *round.ManualClock
	store    *store.Store
	reporter *report.Reporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	r := report.NewReporter(progress.NewLocal(s.EventRepo()))
	t.Cleanup(func() {
		r.Close(context.Background())
		s.Close()
	})
	return &fixture{clock: round.NewManualClock(epoch), store: s, reporter: r}
}

// autoPlayer answers every open window; hit decides each answer.
func autoPlayer(sess **Session, hit func(round.SessionState) bool) round.Listener {
	return round.ListenerFunc(func(t round.Transition) {
		if t.To == round.PhaseAwaitingResponse {
			(*sess).Submit(games.Respond(t.State.Round, hit(t.State)))
		}
	})
}

func (f *fixture) run(t *testing.T, s *Session) {
	t.Helper()
	s.Start()
	for i := 0; i < 1000; i++ {
		select {
		case <-s.Done():
			return
		default:
			f.clock.Advance(100 * time.Millisecond)
		}
	}
	t.Fatal("session did not finish")
}

func TestPerfectSessionReportsAndJournals(t *testing.T) {
	f := newFixture(t)
	g := game(t, "balloon-pop")
	ctx := context.Background()

	var completions atomic.Int32
	var s *Session
	s, err := New(g, Deps{
		Repo:       f.store.EventRepo(),
		Reporter:   f.reporter,
		Scheduler:  f.clock,
		Listener:   autoPlayer(&s, func(round.SessionState) bool { return true }),
		OnComplete: func(Completion) { completions.Add(1) },
		Seed:       5,
	})
	require.NoError(t, err)
	f.run(t, s)

	c, ok := s.Completion()
	require.True(t, ok)
	assert.Equal(t, report.SessionResult{Correct: g.Rounds, Total: g.Rounds, AccuracyPct: 100, XPAwarded: g.Rounds * g.XPPerCorrect}, c.Result)
	assert.Equal(t, int32(1), completions.Load())

	select {
	case d := <-c.Delivery:
		require.NoError(t, d.Err)
		assert.Equal(t, g.Rounds*g.XPPerCorrect, d.Ack.TotalXP)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
	}

	repo := f.store.EventRepo()
	events, err := repo.SessionEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionComplete, events[0].Action)
	assert.Equal(t, ActionStart, events[1].Action)
	assert.Equal(t, g.Rounds, events[0].Score)
	assert.Positive(t, events[0].DurationMs)

	rounds, err := repo.RoundEvents(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, g.Rounds)

	res, err := repo.GameResult(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string(g.SkillTags), []string(res.SkillTags))
}

func TestRetryGameJournalsEveryAttempt(t *testing.T) {
	f := newFixture(t)
	g := game(t, "number-sequence") // retry on miss, 3 attempts

	var s *Session
	s, err := New(g, Deps{
		Repo:      f.store.EventRepo(),
		Scheduler: f.clock,
		// Miss the first attempt of every round, then hit.
		Listener: autoPlayer(&s, func(st round.SessionState) bool { return st.Attempt > 1 }),
		Seed:     9,
	})
	require.NoError(t, err)
	f.run(t, s)

	c, ok := s.Completion()
	require.True(t, ok)
	assert.Equal(t, g.Rounds, c.Result.Correct)
	assert.Nil(t, c.Delivery)

	rounds, err := f.store.EventRepo().RoundEvents(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 2*g.Rounds)

	sum := BuildSummary(c)
	require.Len(t, sum.Rounds, g.Rounds)
	for _, r := range sum.Rounds {
		assert.Equal(t, 2, r.Attempts)
		assert.Equal(t, round.OutcomeHit, r.Outcome)
	}
	assert.Positive(t, sum.FastestHit)
	assert.Equal(t, g.Rounds, sum.Misses, "one missed first attempt per round")
}

func TestCancelDuringPresenting(t *testing.T) {
	f := newFixture(t)
	g := game(t, "shape-parking")

	s, err := New(g, Deps{Repo: f.store.EventRepo(), Reporter: f.reporter, Scheduler: f.clock})
	require.NoError(t, err)
	s.Start()
	require.Equal(t, round.PhasePresenting, s.State().Phase)

	s.Cancel()
	f.clock.Advance(time.Minute)

	assert.Equal(t, round.PhaseTornDown, s.State().Phase)
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after cancel")
	}
	_, ok := s.Completion()
	assert.False(t, ok)

	events, err := f.store.EventRepo().SessionEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionCancel, events[0].Action)

	_, err = f.store.EventRepo().GameResult(context.Background(), s.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCancelAfterCompleteIsNotJournaled(t *testing.T) {
	f := newFixture(t)
	g := game(t, "bigger-size")

	var s *Session
	s, err := New(g, Deps{
		Repo:      f.store.EventRepo(),
		Scheduler: f.clock,
		Listener:  autoPlayer(&s, func(round.SessionState) bool { return false }),
	})
	require.NoError(t, err)
	f.run(t, s)
	s.Cancel()

	events, err := f.store.EventRepo().SessionEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionComplete, events[0].Action)
	assert.Equal(t, 0, events[0].Score)
}

func TestReplayBuildsFreshSession(t *testing.T) {
	f := newFixture(t)
	g := game(t, "balloon-pop")

	s, err := New(g, Deps{Scheduler: f.clock, Repo: f.store.EventRepo()})
	require.NoError(t, err)
	s.Start()

	next, err := s.Replay()
	require.NoError(t, err)
	assert.Equal(t, round.PhaseTornDown, s.State().Phase)

	events, err := f.store.EventRepo().SessionEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ActionReplay, events[0].Action)
	assert.Equal(t, ActionCancel, events[1].Action)
	assert.Equal(t, s.ID, events[0].SessionID)
	assert.NotEqual(t, s.ID, next.ID)
	assert.Equal(t, round.PhaseIdle, next.State().Phase)

	next.Start()
	st := next.State()
	assert.Equal(t, 0, st.Score)
	assert.Equal(t, 0, st.CurrentRound)
	assert.Equal(t, round.PhasePresenting, st.Phase)
}

func TestCuesFollowSession(t *testing.T) {
	f := newFixture(t)
	g := game(t, "sound-match")

	var spoken atomic.Int32
	captions := feedback.NewCaptions(func(text string) {
		if text != "" {
			spoken.Add(1)
		}
	})
	var s *Session
	s, err := New(g, Deps{
		Scheduler: f.clock,
		Cues:      &feedback.DirectorConfig{Speaker: captions, Buzzer: feedback.NopBuzzer{}},
		Listener:  autoPlayer(&s, func(round.SessionState) bool { return true }),
	})
	require.NoError(t, err)
	f.run(t, s)
	s.Cancel()
	s.WaitCues()

	c, ok := s.Completion()
	require.True(t, ok)
	// sound-match completes after 5 hits.
	assert.Equal(t, 5, c.Result.Total)
	assert.Positive(t, spoken.Load())
}
