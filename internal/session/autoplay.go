package session

import (
	"math/rand/v2"
	"sync"

	"github.com/abhisek/wiggles/internal/games"
	"github.com/abhisek/wiggles/internal/round"
)

// Player decides whether the scripted answer to the current round hits.
type Player func(state round.SessionState) bool

// Accurate returns a Player that hits with probability p, drawn from a
// generator seeded with seed.
func Accurate(p float64, seed uint64) Player {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, ^seed))
	return func(round.SessionState) bool {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64() < p
	}
}

// Autoplayer answers every response window of a session on its scheduler,
// acting after the delay games.Respond picks for the round. It implements
// round.Listener; pass it as Deps.Listener and Attach the session.
type Autoplayer struct {
	player Player
	sched  round.Scheduler

	mu   sync.Mutex
	sess *Session
}

// NewAutoplayer creates an Autoplayer. A nil scheduler uses the wall clock.
func NewAutoplayer(player Player, sched round.Scheduler) *Autoplayer {
	if sched == nil {
		sched = round.WallClock{}
	}
	return &Autoplayer{player: player, sched: sched}
}

// Attach sets the session the answers are submitted to.
func (a *Autoplayer) Attach(s *Session) {
	a.mu.Lock()
	a.sess = s
	a.mu.Unlock()
}

func (a *Autoplayer) OnTransition(t round.Transition) {
	if t.To != round.PhaseAwaitingResponse {
		return
	}
	a.mu.Lock()
	s := a.sess
	a.mu.Unlock()
	if s == nil {
		return
	}

	ev := games.Respond(t.State.Round, a.player(t.State))
	index, attempt := t.State.CurrentRound, t.State.Attempt
	a.sched.AfterFunc(ev.At, func() {
		st := s.State()
		if st.Phase != round.PhaseAwaitingResponse || st.CurrentRound != index || st.Attempt != attempt {
			return
		}
		s.Submit(ev)
	})
}
