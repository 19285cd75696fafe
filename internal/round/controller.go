package round

import (
	"sync"
	"time"
)

// Generator produces the configuration of the next round. The controller
// overwrites the returned Index with the session's current round index.
type Generator interface {
	Next(state SessionState) RoundConfig
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(state SessionState) RoundConfig

func (f GeneratorFunc) Next(state SessionState) RoundConfig { return f(state) }

// Validator classifies a response against the active round. It must be pure.
type Validator interface {
	Classify(cfg RoundConfig, ev ResponseEvent) Outcome
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(cfg RoundConfig, ev ResponseEvent) Outcome

func (f ValidatorFunc) Classify(cfg RoundConfig, ev ResponseEvent) Outcome { return f(cfg, ev) }

// Transition describes one phase change. State is a snapshot taken right
// after the change.
type Transition struct {
	From    Phase
	To      Phase
	State   SessionState
	Outcome Outcome
}

// Listener observes phase transitions (presentation, cues, journal).
type Listener interface {
	OnTransition(t Transition)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(t Transition)

func (f ListenerFunc) OnTransition(t Transition) { f(t) }

type multiListener []Listener

func (m multiListener) OnTransition(t Transition) {
	for _, l := range m {
		l.OnTransition(t)
	}
}

// Listeners fans a transition out to every non-nil listener in order.
func Listeners(ls ...Listener) Listener {
	out := make(multiListener, 0, len(ls))
	for _, l := range ls {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Config wires a Controller.
type Config struct {
	SessionID string
	Policy    Policy
	Validator Validator

	// Scheduler defaults to WallClock.
	Scheduler Scheduler

	// Listener may be nil.
	Listener Listener
}

// Controller drives a SessionState through the round lifecycle. It is safe
// for concurrent use. Listeners are invoked outside the internal lock, in
// transition order, and may call back into the controller.
type Controller struct {
	mu        sync.Mutex
	state     SessionState
	policy    Policy
	gen       Generator
	validator Validator
	sched     Scheduler
	listener  Listener

	// epoch invalidates timer callbacks scheduled before the last
	// resolution, re-presentation or cancel.
	epoch    uint64
	timers   []Timer
	openedAt time.Time

	outbox      []Transition
	dispatching bool
}

// NewController creates an idle controller.
func NewController(cfg Config) *Controller {
	sched := cfg.Scheduler
	if sched == nil {
		sched = WallClock{}
	}
	return &Controller{
		state:     NewSessionState(cfg.SessionID, 0),
		policy:    cfg.Policy,
		validator: cfg.Validator,
		sched:     sched,
		listener:  cfg.Listener,
	}
}

// StartSession initializes the session and begins the first round. It only
// has an effect on an idle controller; replay uses a new controller.
// totalRounds must be >= 1.
func (c *Controller) StartSession(totalRounds int, gen Generator) {
	c.mu.Lock()
	if c.state.Phase != PhaseIdle || c.gen != nil {
		c.mu.Unlock()
		return
	}
	c.gen = gen
	c.state = NewSessionState(c.state.SessionID, totalRounds)
	c.beginRoundLocked()
	c.mu.Unlock()
	c.flush()
}

// SubmitResponse classifies ev against the active round. It is honored only
// while the response window is open; otherwise it is ignored and returns
// false.
func (c *Controller) SubmitResponse(ev ResponseEvent) bool {
	c.mu.Lock()
	ok := c.submitLocked(ev)
	c.mu.Unlock()
	c.flush()
	return ok
}

// Respond builds a response stamped with the time elapsed since the window
// opened and submits it.
func (c *Controller) Respond(kind EventKind, payload Payload) bool {
	c.mu.Lock()
	ev := ResponseEvent{Kind: kind, Payload: payload, At: c.elapsedLocked()}
	ok := c.submitLocked(ev)
	c.mu.Unlock()
	c.flush()
	return ok
}

// Cancel tears the session down from any phase. No timer scheduled before
// the call will change the state afterwards.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state.Phase == PhaseTornDown {
		c.mu.Unlock()
		return
	}
	c.stopTimersLocked()
	from := c.state.Phase
	c.state = c.state.TearDown()
	c.emitLocked(from, OutcomeNone)
	c.mu.Unlock()
	c.flush()
}

// State returns a snapshot of the session state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Policy returns the controller's policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Elapsed returns the time since the response window opened, or zero when
// no window is open.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

func (c *Controller) elapsedLocked() time.Duration {
	if c.state.Phase != PhaseAwaitingResponse {
		return 0
	}
	return c.sched.Now().Sub(c.openedAt)
}

func (c *Controller) beginRoundLocked() {
	cfg := c.gen.Next(c.state.Clone())
	cfg.Index = c.state.CurrentRound
	c.presentLocked(cfg)
}

func (c *Controller) presentLocked(cfg RoundConfig) {
	from := c.state.Phase
	next, ok := c.state.Present(cfg)
	if !ok {
		return
	}
	c.stopTimersLocked()
	c.state = next
	c.emitLocked(from, OutcomeNone)

	if c.policy.LeadTime <= 0 {
		c.openLocked()
		return
	}
	c.scheduleLocked(c.policy.LeadTime, c.openLocked)
}

func (c *Controller) openLocked() {
	next, ok := c.state.Await()
	if !ok {
		return
	}
	c.state = next
	c.openedAt = c.sched.Now()
	c.emitLocked(PhasePresenting, OutcomeNone)

	switch {
	case c.state.Round.Window != nil:
		closeAt := c.state.Round.Window.CloseAt
		c.scheduleLocked(closeAt, func() { c.timeoutLocked(OutcomeTooLate) })
	case c.policy.ResponseTimeout > 0:
		c.scheduleLocked(c.policy.ResponseTimeout, func() { c.timeoutLocked(OutcomeMiss) })
	}
}

// timeoutLocked is the onTimeout transition.
func (c *Controller) timeoutLocked(outcome Outcome) {
	if c.state.Phase != PhaseAwaitingResponse {
		return
	}
	c.resolveLocked(outcome, 0, true)
}

func (c *Controller) submitLocked(ev ResponseEvent) bool {
	if c.state.Phase != PhaseAwaitingResponse {
		return false
	}
	var outcome Outcome
	if w := c.state.Round.Window; w != nil && ev.At > w.CloseAt {
		// The window closed before the timeout callback ran.
		outcome = OutcomeTooLate
	} else {
		outcome = c.validator.Classify(c.state.Round, ev)
	}
	return c.resolveLocked(outcome, ev.At, false)
}

func (c *Controller) resolveLocked(outcome Outcome, at time.Duration, timedOut bool) bool {
	next, ok := c.state.Resolve(outcome, at, timedOut)
	if !ok {
		return false
	}
	c.stopTimersLocked()
	c.state = next
	c.emitLocked(PhaseAwaitingResponse, outcome)

	if c.policy.FeedbackDelay <= 0 {
		c.advanceLocked()
		return true
	}
	c.scheduleLocked(c.policy.FeedbackDelay, c.advanceLocked)
	return true
}

func (c *Controller) advanceLocked() {
	next, step := c.state.Advance(c.policy)
	switch step {
	case StepRetry:
		c.state = next
		c.presentLocked(next.Round)
	case StepNext:
		c.state = next
		c.beginRoundLocked()
	case StepComplete:
		c.stopTimersLocked()
		c.state = next
		c.emitLocked(PhaseResolved, next.LastOutcome)
	}
}

// scheduleLocked arms f to run under the lock after d, unless the epoch
// moves on or the session reaches a terminal phase first.
func (c *Controller) scheduleLocked(d time.Duration, f func()) {
	epoch := c.epoch
	t := c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		if c.epoch != epoch || c.state.Phase.Terminal() {
			c.mu.Unlock()
			return
		}
		f()
		c.mu.Unlock()
		c.flush()
	})
	c.timers = append(c.timers, t)
}

func (c *Controller) stopTimersLocked() {
	c.epoch++
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = c.timers[:0]
}

func (c *Controller) emitLocked(from Phase, outcome Outcome) {
	if c.listener == nil {
		return
	}
	c.outbox = append(c.outbox, Transition{
		From:    from,
		To:      c.state.Phase,
		State:   c.state.Clone(),
		Outcome: outcome,
	})
}

// flush delivers queued transitions. Only one goroutine dispatches at a
// time; transitions queued meanwhile are picked up by the active dispatcher.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.dispatching || len(c.outbox) == 0 {
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	for len(c.outbox) > 0 {
		batch := c.outbox
		c.outbox = nil
		c.mu.Unlock()
		for _, t := range batch {
			c.listener.OnTransition(t)
		}
		c.mu.Lock()
	}
	c.dispatching = false
	c.mu.Unlock()
}
