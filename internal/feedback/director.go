package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/wiggles/internal/round"
)

// HitBuzz is the haptic pulse played on a hit.
const HitBuzz = 80 * time.Millisecond

// DirectorConfig wires a Director. Nil devices are skipped.
type DirectorConfig struct {
	Sounder  Sounder
	Speaker  Speaker
	Buzzer   Buzzer
	Settings *SettingsStore

	// Instruction is spoken when the first round is presented.
	Instruction string

	Logger *slog.Logger
}

// Director turns round transitions into cue requests. It implements
// round.Listener. Every request runs on its own goroutine; a teardown
// cancels requests still in flight.
type Director struct {
	cfg    DirectorConfig
	logger *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	roundCtx    context.Context
	roundCancel context.CancelFunc
	wg          sync.WaitGroup
}

// NewDirector creates a Director.
func NewDirector(cfg DirectorConfig) *Director {
	if cfg.Settings == nil {
		cfg.Settings = NewSettingsStore(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	roundCtx, roundCancel := context.WithCancel(ctx)
	return &Director{
		cfg:         cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		roundCtx:    roundCtx,
		roundCancel: roundCancel,
	}
}

func (d *Director) OnTransition(t round.Transition) {
	s := d.cfg.Settings.Get()

	switch t.To {
	case round.PhasePresenting:
		ctx := d.nextRound()
		d.sound(ctx, s, CueRoundStart)
		var lines []string
		if t.From == round.PhaseIdle && d.cfg.Instruction != "" {
			lines = append(lines, d.cfg.Instruction)
		}
		if t.State.Round.Prompt != "" {
			lines = append(lines, t.State.Round.Prompt)
		}
		d.speak(ctx, s, lines...)

	case round.PhaseResolved:
		ctx := d.currentRound()
		d.sound(ctx, s, outcomeCue(t.Outcome))
		if t.Outcome == round.OutcomeHit && s.Haptics && d.cfg.Buzzer != nil {
			d.run(ctx, "haptic", func(ctx context.Context) error {
				return d.cfg.Buzzer.Buzz(ctx, HitBuzz)
			})
		}

	case round.PhaseSessionComplete:
		d.mu.Lock()
		ctx := d.ctx
		d.mu.Unlock()
		d.sound(ctx, s, CueFanfare)
		d.speak(ctx, s, fmt.Sprintf("All done! You got %d out of %d.", t.State.Score, t.State.CurrentRound))

	case round.PhaseTornDown:
		d.Stop()
	}
}

// Stop cancels every cue still playing. Later transitions play nothing.
func (d *Director) Stop() {
	d.mu.Lock()
	d.cancel()
	d.mu.Unlock()
}

// Wait blocks until every started cue request has returned.
func (d *Director) Wait() {
	d.wg.Wait()
}

func (d *Director) nextRound() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roundCancel()
	d.roundCtx, d.roundCancel = context.WithCancel(d.ctx)
	return d.roundCtx
}

func (d *Director) currentRound() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roundCtx
}

func (d *Director) sound(ctx context.Context, s Settings, cue Cue) {
	if !s.Sound || d.cfg.Sounder == nil || cue == "" {
		return
	}
	d.run(ctx, "sound", func(ctx context.Context) error {
		return d.cfg.Sounder.Play(ctx, cue, s.Volume)
	})
}

// speak reads lines in order on one goroutine.
func (d *Director) speak(ctx context.Context, s Settings, lines ...string) {
	if !s.Speech || d.cfg.Speaker == nil || len(lines) == 0 {
		return
	}
	d.run(ctx, "speech", func(ctx context.Context) error {
		for _, line := range lines {
			if err := d.cfg.Speaker.Speak(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Director) run(ctx context.Context, device string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("cue panicked", "device", device, "panic", r)
			}
		}()
		err := fn(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			d.logger.Debug("cue cancelled", "device", device)
		default:
			d.logger.Warn("cue failed", "device", device, "err", err)
		}
	}()
}

func outcomeCue(o round.Outcome) Cue {
	switch o {
	case round.OutcomeHit:
		return CueHit
	case round.OutcomeMiss:
		return CueMiss
	case round.OutcomeTooEarly:
		return CueTooEarly
	case round.OutcomeTooLate:
		return CueTooLate
	default:
		return ""
	}
}
