// Package report turns a finished session into its result and delivers it
// to the progress service.
package report

import "github.com/abhisek/wiggles/internal/round"

// SessionResult is the final tally of one session.
type SessionResult struct {
	Correct     int
	Total       int
	AccuracyPct int
	XPAwarded   int
}

// Finalize computes the result of state. Total is the number of rounds the
// session was configured for, or the rounds actually played when it ended
// early on a hit threshold.
func Finalize(state round.SessionState, xpPerCorrect int) SessionResult {
	total := state.TotalRounds
	if state.Phase == round.PhaseSessionComplete && state.CurrentRound < total {
		total = state.CurrentRound
	}
	correct := min(state.Score, total)
	return SessionResult{
		Correct:     correct,
		Total:       total,
		AccuracyPct: Accuracy(correct, total),
		XPAwarded:   correct * xpPerCorrect,
	}
}

// Accuracy returns correct/total as a percentage rounded half up. A zero
// total yields 0.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
