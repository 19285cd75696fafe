package session

import (
	"context"
	"time"

	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/store"
)

// Session event actions.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
	ActionReplay   = "replay"
)

// journal records session and round events. Writes are best-effort: a
// failed write is logged and play continues.
type journal struct {
	repo store.EventRepo
	s    *Session
}

func newJournal(repo store.EventRepo, s *Session) *journal {
	return &journal{repo: repo, s: s}
}

func (j *journal) OnTransition(t round.Transition) {
	ctx := context.Background()

	switch {
	case t.From == round.PhaseIdle && t.To == round.PhasePresenting:
		j.session(ctx, ActionStart, t.State)

	case t.To == round.PhaseResolved:
		if n := len(t.State.History); n > 0 {
			rec := t.State.History[n-1]
			j.s.logger.Debug("round resolved",
				"round", rec.Index, "attempt", rec.Attempt,
				"target", round.TargetKind(t.State.Round.Target), "outcome", rec.Outcome.String())
			j.write("round", j.repo.AppendRoundEvent(ctx, store.RoundEventData{
				SessionID:  j.s.ID,
				RoundIndex: rec.Index,
				Attempt:    rec.Attempt,
				Outcome:    rec.Outcome.String(),
				ResponseMs: rec.ResponseAt.Milliseconds(),
				TimedOut:   rec.TimedOut,
			}))
		}

	case t.To == round.PhaseSessionComplete:
		j.session(ctx, ActionComplete, t.State)

	case t.To == round.PhaseTornDown && t.From != round.PhaseSessionComplete:
		j.session(ctx, ActionCancel, t.State)
	}
}

func (j *journal) session(ctx context.Context, action string, st round.SessionState) {
	var d time.Duration
	if !j.s.started.IsZero() {
		d = j.s.now().Sub(j.s.started)
	}
	j.write("session", j.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:   j.s.ID,
		GameType:    j.s.Game.ID,
		Action:      action,
		Score:       st.Score,
		TotalRounds: st.TotalRounds,
		DurationMs:  d.Milliseconds(),
	}))
}

func (j *journal) write(kind string, err error) {
	if err != nil {
		j.s.logger.Warn("journal write failed", "kind", kind, "err", err)
	}
}
