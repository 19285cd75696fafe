package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wiggles/internal/round"
)

func completed(score, total int) round.SessionState {
	s := round.NewSessionState("s", total)
	s.Score = score
	s.CurrentRound = total
	s.Phase = round.PhaseSessionComplete
	return s
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name  string
		state round.SessionState
		xp    int
		want  SessionResult
	}{
		{"perfect", completed(5, 5), 10, SessionResult{Correct: 5, Total: 5, AccuracyPct: 100, XPAwarded: 50}},
		{"three of eight", completed(3, 8), 15, SessionResult{Correct: 3, Total: 8, AccuracyPct: 38, XPAwarded: 45}},
		{"none", completed(0, 6), 20, SessionResult{Correct: 0, Total: 6, AccuracyPct: 0, XPAwarded: 0}},
		{"two of three", completed(2, 3), 10, SessionResult{Correct: 2, Total: 3, AccuracyPct: 67, XPAwarded: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Finalize(tt.state, tt.xp))
		})
	}
}

func TestFinalize_EarlyCompletionCountsPlayedRounds(t *testing.T) {
	s := completed(4, 12)
	s.CurrentRound = 4
	got := Finalize(s, 10)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 100, got.AccuracyPct)
}

func TestAccuracy_Bounds(t *testing.T) {
	assert.Equal(t, 0, Accuracy(0, 0))
	for total := 1; total <= 12; total++ {
		for correct := 0; correct <= total; correct++ {
			a := Accuracy(correct, total)
			require.GreaterOrEqual(t, a, 0)
			require.LessOrEqual(t, a, 100)
			if correct == total {
				require.Equal(t, 100, a)
			}
		}
	}
	assert.Equal(t, 50, Accuracy(1, 2))
	assert.Equal(t, 13, Accuracy(1, 8))
}

func TestFinalize_XPProportional(t *testing.T) {
	for xp := 10; xp <= 20; xp++ {
		for c := 0; c <= 8; c++ {
			got := Finalize(completed(c, 8), xp)
			require.Equal(t, c*xp, got.XPAwarded)
		}
	}
}

type fakeService struct {
	mu    sync.Mutex
	logs  []GameLog
	err   error
	delay time.Duration
}

func (f *fakeService) LogGameAndAward(ctx context.Context, log GameLog) (Ack, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Ack{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Ack{}, f.err
	}
	f.logs = append(f.logs, log)
	return Ack{LoggedAt: time.Unix(1700000000, 0), TotalXP: 100 + log.XPAwarded}, nil
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

func wait(t *testing.T, ch <-chan Delivery) Delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
		return Delivery{}
	}
}

func TestReporter_DeliversOnce(t *testing.T) {
	svc := &fakeService{}
	r := NewReporter(svc)
	defer r.Close(context.Background())

	rep := Report{
		SessionID:    "abc",
		GameType:     "balloon-pop",
		State:        completed(5, 5),
		XPPerCorrect: 10,
		SkillTags:    []string{"visual-motor"},
	}
	result, ch := r.Submit(context.Background(), rep)
	assert.Equal(t, 100, result.AccuracyPct)

	d := wait(t, ch)
	require.NoError(t, d.Err)
	assert.Equal(t, 150, d.Ack.TotalXP)
	assert.Equal(t, GameLog{
		SessionID: "abc",
		GameType:  "balloon-pop",
		Correct:   5,
		Total:     5,
		Accuracy:  100,
		XPAwarded: 50,
		SkillTags: []string{"visual-motor"},
	}, d.Log)

	_, dup := r.Submit(context.Background(), rep)
	assert.ErrorIs(t, wait(t, dup).Err, ErrDuplicate)
	assert.Equal(t, 1, svc.count())
}

func TestReporter_FailureIsLoggedNotSurfaced(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := &fakeService{err: errors.New("service down")}
	r := NewReporter(svc, WithLogger(logger))

	result, ch := r.Submit(context.Background(), Report{SessionID: "x", GameType: "dot-track", State: completed(3, 8), XPPerCorrect: 10})
	assert.Equal(t, 38, result.AccuracyPct, "result must not depend on delivery")

	d := wait(t, ch)
	assert.EqualError(t, d.Err, "service down")
	require.NoError(t, r.Close(context.Background()))
	assert.Contains(t, buf.String(), "progress report failed")
}

func TestReporter_CallerCancellationDoesNotAbortDelivery(t *testing.T) {
	svc := &fakeService{delay: 20 * time.Millisecond}
	r := NewReporter(svc)
	defer r.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	_, ch := r.Submit(ctx, Report{SessionID: "c", State: completed(1, 1), XPPerCorrect: 10})
	cancel()

	require.NoError(t, wait(t, ch).Err)
}

func TestReporter_Timeout(t *testing.T) {
	svc := &fakeService{delay: time.Second}
	r := NewReporter(svc, WithTimeout(10*time.Millisecond))
	defer r.Close(context.Background())

	_, ch := r.Submit(context.Background(), Report{SessionID: "t", State: completed(1, 1)})
	assert.ErrorIs(t, wait(t, ch).Err, context.DeadlineExceeded)
}

func TestReporter_PanicIsContained(t *testing.T) {
	svc := ProgressServiceFunc(func(context.Context, GameLog) (Ack, error) { panic("boom") })
	r := NewReporter(svc)
	defer r.Close(context.Background())

	_, ch := r.Submit(context.Background(), Report{SessionID: "p", State: completed(1, 1)})
	assert.ErrorContains(t, wait(t, ch).Err, "boom")
}

func TestReporter_CloseDrainsAndRejects(t *testing.T) {
	var calls atomic.Int32
	svc := ProgressServiceFunc(func(context.Context, GameLog) (Ack, error) {
		calls.Add(1)
		return Ack{}, nil
	})
	r := NewReporter(svc)

	var chans []<-chan Delivery
	for _, id := range []string{"a", "b", "c"} {
		_, ch := r.Submit(context.Background(), Report{SessionID: id, State: completed(1, 2)})
		chans = append(chans, ch)
	}
	require.NoError(t, r.Close(context.Background()))
	assert.EqualValues(t, 3, calls.Load())
	for _, ch := range chans {
		assert.NoError(t, wait(t, ch).Err)
	}

	_, late := r.Submit(context.Background(), Report{SessionID: "d", State: completed(1, 2)})
	assert.ErrorIs(t, wait(t, late).Err, ErrClosed)
	assert.NoError(t, r.Close(context.Background()), "second close")
}
