package session

import (
	"time"

	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/round"
)

// RoundSummary is one round as shown on the summary screen.
type RoundSummary struct {
	Index    int
	Attempts int
	Outcome  round.Outcome // final attempt
	Response time.Duration // final attempt, zero for timeouts
	TimedOut bool
}

// Summary holds the data displayed on the summary screen.
type Summary struct {
	GameName string
	Duration time.Duration
	Result   report.SessionResult
	Rounds   []RoundSummary

	// FastestHit is the quickest hit response, zero without hits.
	FastestHit time.Duration

	// Misses counts attempts that were not hits, retries included.
	Misses int
}

// BuildSummary creates a Summary from a completion record.
func BuildSummary(c Completion) Summary {
	sum := Summary{
		GameName: c.Game.Name,
		Duration: c.Duration,
		Result:   c.Result,
		Misses:   c.State.Misses(),
	}

	byIndex := map[int]int{}
	for _, rec := range c.State.History {
		i, ok := byIndex[rec.Index]
		if !ok {
			byIndex[rec.Index] = len(sum.Rounds)
			sum.Rounds = append(sum.Rounds, RoundSummary{Index: rec.Index})
			i = len(sum.Rounds) - 1
		}
		r := &sum.Rounds[i]
		r.Attempts++
		r.Outcome = rec.Outcome
		r.Response = rec.ResponseAt
		r.TimedOut = rec.TimedOut

		if rec.Outcome == round.OutcomeHit && (sum.FastestHit == 0 || rec.ResponseAt < sum.FastestHit) {
			sum.FastestHit = rec.ResponseAt
		}
	}
	return sum
}
