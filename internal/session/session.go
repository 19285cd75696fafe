// Package session composes a playable game session: the round controller,
// the shared validator, cue playback, the event journal and the progress
// report sent at completion.
package session

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/games"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/store"
	"github.com/abhisek/wiggles/internal/validate"
)

// Deps are the collaborators shared by every session. All are optional.
type Deps struct {
	// Repo receives the session journal.
	Repo store.EventRepo

	// Reporter sends the result to the progress service at completion.
	Reporter *report.Reporter

	// Scheduler defaults to the wall clock.
	Scheduler round.Scheduler

	// Cues configures the cue director. The instruction is taken from
	// the game.
	Cues *feedback.DirectorConfig

	// Listener receives every transition after the session's own
	// listeners (presentation).
	Listener round.Listener

	// OnComplete is called once when the session completes.
	OnComplete func(Completion)

	// Seed fixes the round generator. Zero derives it from the session ID.
	Seed uint64

	Logger *slog.Logger
}

// Completion is handed to Deps.OnComplete.
type Completion struct {
	SessionID string
	Game      catalog.Game
	State     round.SessionState
	Result    report.SessionResult
	Duration  time.Duration

	// Delivery yields the progress service outcome. It is nil without a
	// Reporter.
	Delivery <-chan report.Delivery
}

// Session is one play-through of a game.
type Session struct {
	ID   string
	Game catalog.Game

	deps     Deps
	logger   *slog.Logger
	ctrl     *round.Controller
	gen      round.Generator
	director *feedback.Director
	journal  *journal
	started  time.Time

	once       sync.Once
	mu         sync.Mutex
	completion *Completion
	done       chan struct{}
	closeDone  sync.Once
}

// New prepares a session for game. Call Start to present the first round.
func New(game catalog.Game, deps Deps) (*Session, error) {
	id := uuid.New()
	seed := deps.Seed
	if seed == 0 {
		seed = binary.LittleEndian.Uint64(id[:8])
	}
	gen, err := games.NewGenerator(game, seed)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		ID:     id.String(),
		Game:   game,
		deps:   deps,
		logger: logger.With("session_id", id.String(), "game", game.ID),
		gen:    gen,
		done:   make(chan struct{}),
	}

	if deps.Cues != nil {
		cfg := *deps.Cues
		cfg.Instruction = game.Instruction
		if cfg.Logger == nil {
			cfg.Logger = s.logger
		}
		s.director = feedback.NewDirector(cfg)
	}

	var journaling round.Listener
	if deps.Repo != nil {
		s.journal = newJournal(deps.Repo, s)
		journaling = s.journal
	}
	var cues round.Listener
	if s.director != nil {
		cues = s.director
	}

	s.ctrl = round.NewController(round.Config{
		SessionID: s.ID,
		Policy:    game.Policy(),
		Validator: validate.Validator,
		Scheduler: deps.Scheduler,
		Listener: round.Listeners(
			journaling,
			cues,
			round.ListenerFunc(s.onTransition),
			deps.Listener,
		),
	})
	return s, nil
}

// Start begins the first round.
func (s *Session) Start() {
	s.started = s.now()
	s.logger.Info("session started", "rounds", s.Game.Rounds)
	s.ctrl.StartSession(s.Game.Rounds, s.gen)
}

// Respond submits a player action stamped with the controller clock.
func (s *Session) Respond(kind round.EventKind, payload round.Payload) bool {
	return s.ctrl.Respond(kind, payload)
}

// Submit submits a pre-stamped player action.
func (s *Session) Submit(ev round.ResponseEvent) bool {
	return s.ctrl.SubmitResponse(ev)
}

// State returns a snapshot of the session state.
func (s *Session) State() round.SessionState {
	return s.ctrl.State()
}

// Elapsed returns the time since the current response window opened.
func (s *Session) Elapsed() time.Duration {
	return s.ctrl.Elapsed()
}

// Cancel tears the session down: timers stop and cues in flight are cut
// off. Cancelling a finished session only releases its cues.
func (s *Session) Cancel() {
	s.ctrl.Cancel()
	if s.director != nil {
		s.director.Stop()
	}
	s.finish()
}

// Replay cancels this session and returns a fresh one for the same game.
// The new session is not started.
func (s *Session) Replay() (*Session, error) {
	s.Cancel()
	if s.journal != nil {
		s.journal.session(context.Background(), ActionReplay, s.State())
	}
	deps := s.deps
	deps.Seed = 0
	return New(s.Game, deps)
}

// Done is closed when the session completes or is cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Completion returns the completion record once the session has completed.
func (s *Session) Completion() (Completion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completion == nil {
		return Completion{}, false
	}
	return *s.completion, true
}

// WaitCues blocks until every cue request started so far has returned.
func (s *Session) WaitCues() {
	if s.director != nil {
		s.director.Wait()
	}
}

func (s *Session) onTransition(t round.Transition) {
	if t.To == round.PhaseSessionComplete {
		s.once.Do(func() { s.complete(t.State) })
	}
}

func (s *Session) complete(state round.SessionState) {
	c := Completion{
		SessionID: s.ID,
		Game:      s.Game,
		State:     state,
		Result:    report.Finalize(state, s.Game.XPPerCorrect),
		Duration:  s.now().Sub(s.started),
	}
	if s.deps.Reporter != nil {
		c.Result, c.Delivery = s.deps.Reporter.Submit(context.Background(), report.Report{
			SessionID:    s.ID,
			GameType:     s.Game.ID,
			State:        state,
			XPPerCorrect: s.Game.XPPerCorrect,
			SkillTags:    s.Game.SkillTags,
		})
	}

	s.mu.Lock()
	s.completion = &c
	s.mu.Unlock()

	s.logger.Info("session complete",
		"correct", c.Result.Correct,
		"total", c.Result.Total,
		"accuracy", c.Result.AccuracyPct,
		"xp", c.Result.XPAwarded)

	if s.deps.OnComplete != nil {
		s.deps.OnComplete(c)
	}
	s.finish()
}

func (s *Session) finish() {
	s.closeDone.Do(func() { close(s.done) })
}

func (s *Session) now() time.Time {
	if s.deps.Scheduler != nil {
		return s.deps.Scheduler.Now()
	}
	return time.Now()
}
