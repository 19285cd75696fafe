package round

import "time"

// Retry selects what happens after a round that was not a hit.
type Retry int

const (
	RetryNever  Retry = iota // Always move on after feedback
	RetryOnMiss              // Present the same round again
)

// Policy holds the per-game pacing and progression rules.
type Policy struct {
	// LeadTime is the delay between presenting a round and accepting
	// responses (countdown or demonstration). Zero opens immediately.
	LeadTime time.Duration

	// FeedbackDelay is how long the outcome is shown before advancing.
	FeedbackDelay time.Duration

	// ResponseTimeout resolves untimed rounds as a miss when no response
	// arrives in time. Zero disables it. Rounds with a timing window use
	// the window's close instead and resolve as too-late.
	ResponseTimeout time.Duration

	Retry Retry

	// MaxAttempts caps retries of one round (0 = unlimited). When the
	// cap is reached the round advances without a point.
	MaxAttempts int

	// CompleteAfterHits ends the session early once the score reaches it
	// (0 = play every round).
	CompleteAfterHits int
}

// Step is the progression decision made by Advance.
type Step int

const (
	StepNone     Step = iota // Transition was not allowed
	StepRetry                // Present the same round again
	StepNext                 // Generate and present the next round
	StepComplete             // Session finished
)

// SessionState is the authoritative per-session state. Transition methods
// take the state by value and return the successor; the receiver is never
// mutated.
type SessionState struct {
	SessionID    string
	CurrentRound int
	TotalRounds  int
	Score        int
	Attempt      int
	Phase        Phase
	LastOutcome  Outcome
	Round        RoundConfig
	History      []RoundRecord
}

// NewSessionState creates an idle session. totalRounds must be >= 1.
func NewSessionState(sessionID string, totalRounds int) SessionState {
	return SessionState{
		SessionID:   sessionID,
		TotalRounds: totalRounds,
		Phase:       PhaseIdle,
	}
}

// Clone returns a copy that shares no memory with s.
func (s SessionState) Clone() SessionState {
	if s.History != nil {
		h := make([]RoundRecord, len(s.History))
		copy(h, s.History)
		s.History = h
	}
	return s
}

// Present shows cfg as the active round. Allowed from Idle and Resolved.
// Presenting the same round index again counts as another attempt.
func (s SessionState) Present(cfg RoundConfig) (SessionState, bool) {
	if s.Phase != PhaseIdle && s.Phase != PhaseResolved {
		return s, false
	}
	if s.Phase == PhaseResolved && cfg.Index == s.Round.Index {
		s.Attempt++
	} else {
		s.Attempt = 1
	}
	s.Round = cfg
	s.Phase = PhasePresenting
	s.LastOutcome = OutcomeNone
	return s, true
}

// Await opens the response window.
func (s SessionState) Await() (SessionState, bool) {
	if s.Phase != PhasePresenting {
		return s, false
	}
	s.Phase = PhaseAwaitingResponse
	return s, true
}

// Resolve records the outcome of the open window. Only the first resolution
// per window is accepted.
func (s SessionState) Resolve(outcome Outcome, at time.Duration, timedOut bool) (SessionState, bool) {
	if s.Phase != PhaseAwaitingResponse || outcome == OutcomeNone {
		return s, false
	}
	s = s.Clone()
	s.LastOutcome = outcome
	s.Phase = PhaseResolved
	s.History = append(s.History, RoundRecord{
		Index:      s.Round.Index,
		Attempt:    s.Attempt,
		Outcome:    outcome,
		ResponseAt: at,
		TimedOut:   timedOut,
	})
	return s, true
}

// Advance applies the resolved outcome and decides what comes next.
func (s SessionState) Advance(p Policy) (SessionState, Step) {
	if s.Phase != PhaseResolved {
		return s, StepNone
	}
	if s.LastOutcome == OutcomeHit {
		s.Score++
	}

	if s.LastOutcome != OutcomeHit && retryEligible(s, p) {
		return s, StepRetry
	}

	s.CurrentRound++
	if s.CurrentRound >= s.TotalRounds || (p.CompleteAfterHits > 0 && s.Score >= p.CompleteAfterHits) {
		s.Phase = PhaseSessionComplete
		return s, StepComplete
	}
	return s, StepNext
}

func retryEligible(s SessionState, p Policy) bool {
	if p.Retry != RetryOnMiss {
		return false
	}
	return p.MaxAttempts == 0 || s.Attempt < p.MaxAttempts
}

// TearDown moves the session to the terminal torn-down phase from any phase.
func (s SessionState) TearDown() SessionState {
	s.Phase = PhaseTornDown
	return s
}

// Misses counts resolutions that were not hits.
func (s SessionState) Misses() int {
	n := 0
	for _, r := range s.History {
		if r.Outcome != OutcomeHit {
			n++
		}
	}
	return n
}
