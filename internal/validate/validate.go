// Package validate classifies player responses against round targets.
// Classification is pure: the same config and event always produce the
// same outcome.
package validate

import (
	"strings"

	"github.com/abhisek/wiggles/internal/round"
)

// Validator is the round.Validator used by every game.
var Validator round.Validator = round.ValidatorFunc(Classify)

// Classify returns the outcome of ev for the round described by cfg.
//
// When the round has a timing window, responses before OpenAt are too early
// and responses after CloseAt are too late; the target is only checked
// inside the window. Timing targets are judged against their cue(s).
func Classify(cfg round.RoundConfig, ev round.ResponseEvent) round.Outcome {
	if w := cfg.Window; w != nil {
		if ev.At < w.OpenAt {
			return round.OutcomeTooEarly
		}
		if ev.At > w.CloseAt {
			return round.OutcomeTooLate
		}
	}

	switch t := cfg.Target.(type) {
	case round.PointTarget:
		return hitIf(InRadius(ev.Payload.Point, t.Center, t.Radius))
	case round.BoxTarget:
		return hitIf(InBox(ev.Payload.Point, t))
	case round.ValueTarget:
		return hitIf(matchValue(t, ev))
	case round.OrientationTarget:
		return hitIf(InRadius(ev.Payload.Point, t.Center, t.Radius) &&
			AngularDistance(ev.Payload.Rotation, t.Rotation) <= t.Tolerance)
	case round.TimingTarget:
		return classifyTiming(t, ev)
	default:
		return round.OutcomeMiss
	}
}

// InRadius reports whether p lies within radius of center (inclusive).
func InRadius(p, center round.Point, radius float64) bool {
	return Distance(p, center) <= radius
}

// InBox reports whether p lies inside b (inclusive).
func InBox(p round.Point, b round.BoxTarget) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func matchValue(t round.ValueTarget, ev round.ResponseEvent) bool {
	got := ev.Payload.Value
	if ev.Kind == round.EventSwipe {
		got = SwipeValue(ev.Payload)
	}
	got = strings.TrimSpace(got)
	if got == "" {
		return false
	}
	return strings.EqualFold(got, strings.TrimSpace(t.Expected))
}

func classifyTiming(t round.TimingTarget, ev round.ResponseEvent) round.Outcome {
	beat, offset := NearestBeat(t, ev.At)
	if offset >= -t.Tolerance && offset <= t.Tolerance {
		return round.OutcomeHit
	}
	if offset < 0 && beat == 0 {
		return round.OutcomeTooEarly
	}
	if t.Period <= 0 || (t.Beats > 0 && beat == t.Beats-1 && offset > 0) {
		return round.OutcomeTooLate
	}
	return round.OutcomeMiss
}

func hitIf(ok bool) round.Outcome {
	if ok {
		return round.OutcomeHit
	}
	return round.OutcomeMiss
}
