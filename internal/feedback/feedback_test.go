package feedback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wiggles/internal/round"
)

type recordingDevice struct {
	mu     sync.Mutex
	sounds []Cue
	spoken []string
	buzzes int

	block bool // Speak waits for ctx to end
	fail  error
	panic bool
}

func (r *recordingDevice) Play(_ context.Context, cue Cue, _ float64) error {
	if r.panic {
		panic("speaker blew up")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, cue)
	return r.fail
}

func (r *recordingDevice) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, text)
	r.mu.Unlock()
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.fail
}

func (r *recordingDevice) Buzz(context.Context, time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buzzes++
	return nil
}

func (r *recordingDevice) snapshot() ([]Cue, []string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.sounds...), append([]string(nil), r.spoken...), r.buzzes
}

func newDirector(dev *recordingDevice, settings *SettingsStore) *Director {
	return NewDirector(DirectorConfig{
		Sounder:     dev,
		Speaker:     dev,
		Buzzer:      dev,
		Settings:    settings,
		Instruction: "Pop the balloons.",
	})
}

func presenting(from round.Phase, prompt string) round.Transition {
	st := round.SessionState{Phase: round.PhasePresenting, Round: round.RoundConfig{Prompt: prompt}}
	return round.Transition{From: from, To: round.PhasePresenting, State: st}
}

func resolved(o round.Outcome) round.Transition {
	return round.Transition{From: round.PhaseAwaitingResponse, To: round.PhaseResolved, Outcome: o}
}

func TestDirectorFirstRoundSpeaksInstruction(t *testing.T) {
	dev := &recordingDevice{}
	d := newDirector(dev, nil)

	d.OnTransition(presenting(round.PhaseIdle, "Round one"))
	d.Wait()
	d.OnTransition(presenting(round.PhaseResolved, "Round two"))
	d.Wait()

	sounds, spoken, _ := dev.snapshot()
	assert.Equal(t, []Cue{CueRoundStart, CueRoundStart}, sounds)
	assert.Equal(t, []string{"Pop the balloons.", "Round one", "Round two"}, spoken)
}

func TestDirectorOutcomeCues(t *testing.T) {
	tests := []struct {
		outcome round.Outcome
		cue     Cue
		buzzes  int
	}{
		{round.OutcomeHit, CueHit, 1},
		{round.OutcomeMiss, CueMiss, 0},
		{round.OutcomeTooEarly, CueTooEarly, 0},
		{round.OutcomeTooLate, CueTooLate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			dev := &recordingDevice{}
			d := newDirector(dev, nil)
			d.OnTransition(resolved(tt.outcome))
			d.Wait()

			sounds, _, buzzes := dev.snapshot()
			assert.Equal(t, []Cue{tt.cue}, sounds)
			assert.Equal(t, tt.buzzes, buzzes)
		})
	}
}

func TestDirectorCompletion(t *testing.T) {
	dev := &recordingDevice{}
	d := newDirector(dev, nil)
	d.OnTransition(round.Transition{
		From:  round.PhaseResolved,
		To:    round.PhaseSessionComplete,
		State: round.SessionState{Score: 3, CurrentRound: 5, TotalRounds: 5},
	})
	d.Wait()

	sounds, spoken, _ := dev.snapshot()
	assert.Equal(t, []Cue{CueFanfare}, sounds)
	assert.Equal(t, []string{"All done! You got 3 out of 5."}, spoken)
}

func TestDirectorRespectsSettings(t *testing.T) {
	settings := NewSettingsStore(nil)
	require.NoError(t, settings.Update(func(s *Settings) {
		s.Sound = false
		s.Haptics = false
	}))

	dev := &recordingDevice{}
	d := newDirector(dev, settings)
	d.OnTransition(presenting(round.PhaseIdle, "Go"))
	d.OnTransition(resolved(round.OutcomeHit))
	d.Wait()

	sounds, spoken, buzzes := dev.snapshot()
	assert.Empty(t, sounds)
	assert.Equal(t, 0, buzzes)
	assert.NotEmpty(t, spoken)
}

func TestDirectorTeardownCancelsSpeech(t *testing.T) {
	dev := &recordingDevice{block: true}
	d := newDirector(dev, nil)
	d.OnTransition(presenting(round.PhaseIdle, "Wait for it"))

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	d.OnTransition(round.Transition{From: round.PhasePresenting, To: round.PhaseTornDown})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("speech was not cancelled by teardown")
	}

	// Nothing plays after teardown.
	d.OnTransition(resolved(round.OutcomeHit))
	d.Wait()
	sounds, _, _ := dev.snapshot()
	assert.Equal(t, []Cue{CueRoundStart}, sounds)
}

func TestDirectorNextRoundCancelsPreviousSpeech(t *testing.T) {
	dev := &recordingDevice{block: true}
	d := newDirector(dev, nil)
	d.OnTransition(presenting(round.PhaseIdle, "first"))
	first := d.currentRound()

	d.OnTransition(presenting(round.PhaseResolved, "second"))
	assert.Error(t, first.Err())
	assert.NoError(t, d.currentRound().Err())
	d.Stop()
	d.Wait()
}

func TestDirectorContainsDeviceFailures(t *testing.T) {
	for _, dev := range []*recordingDevice{{panic: true}, {fail: errors.New("no audio device")}} {
		d := newDirector(dev, nil)
		assert.NotPanics(t, func() {
			d.OnTransition(resolved(round.OutcomeMiss))
			d.Wait()
		})
	}
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)
	ctx := context.Background()

	require.NoError(t, b.Play(ctx, CueHit, 1))
	require.NoError(t, b.Play(ctx, CueRoundStart, 1))
	require.NoError(t, b.Play(ctx, CueFanfare, 0.5))
	require.NoError(t, b.Play(ctx, CueMiss, 0))
	assert.Equal(t, "\a\a\a", buf.String())
}

func TestCaptions(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	c := NewCaptions(func(s string) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	c.perWord = time.Millisecond

	require.NoError(t, c.Speak(context.Background(), "hello there"))
	assert.Equal(t, "hello there", c.Text())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.perWord = time.Hour
	assert.ErrorIs(t, c.Speak(ctx, "never finished"), context.Canceled)
	assert.Equal(t, "", c.Text())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hello there", "never finished", ""}, seen)
}

func TestSettingsPersistWithGdata(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")
	app := fmt.Sprintf("wiggles_test_%d", time.Now().UnixNano())

	m, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	s := NewSettingsStore(m)
	require.NoError(t, s.Load())
	assert.Equal(t, DefaultSettings(), s.Get())

	require.NoError(t, s.Update(func(st *Settings) {
		st.Speech = false
		st.Volume = 3
	}))

	reopened := NewSettingsStore(m)
	require.NoError(t, reopened.Load())
	got := reopened.Get()
	assert.False(t, got.Speech)
	assert.Equal(t, 1.0, got.Volume)
}

func TestSettingsInMemory(t *testing.T) {
	s := NewSettingsStore(nil)
	require.NoError(t, s.Update(func(st *Settings) { st.Volume = -1 }))
	assert.Equal(t, 0.0, s.Get().Volume)
	require.NoError(t, s.Load())
	assert.Equal(t, DefaultSettings(), s.Get())
}
