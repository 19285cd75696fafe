package games

import (
	"slices"
	"time"

	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/validate"
)

// untimedDelay is how long a scripted player waits on untimed rounds.
const untimedDelay = 400 * time.Millisecond

// directionAngles maps swipe values to directions in degrees.
var directionAngles = map[string]float64{"right": 0, "down": 90, "left": 180, "up": 270}

// Respond builds a scripted response to cfg that is a hit when hit is true
// and anything but a hit otherwise. Its At is the delay after the window
// opens at which the player acts.
func Respond(cfg round.RoundConfig, hit bool) round.ResponseEvent {
	ev := round.ResponseEvent{Kind: round.EventTap, At: untimedDelay}
	if w := cfg.Window; w != nil {
		ev.At = w.OpenAt + (w.CloseAt-w.OpenAt)/4
	}

	switch t := cfg.Target.(type) {
	case round.PointTarget:
		ev.Payload.Point = t.Center
		if !hit {
			ev.Payload.Point.X += 2*t.Radius + 1
		}
	case round.BoxTarget:
		ev.Kind = round.EventDragRelease
		ev.Payload.Point = round.Point{X: (t.Min.X + t.Max.X) / 2, Y: (t.Min.Y + t.Max.Y) / 2}
		if !hit {
			ev.Payload.Point.Y = t.Min.Y - 1
		}
	case round.ValueTarget:
		value := t.Expected
		if !hit {
			value = wrongChoice(t)
		}
		if angle, ok := directionAngles[t.Expected]; ok {
			ev.Kind = round.EventSwipe
			ev.Payload.Distance = 3 * validate.MinSwipe
			ev.Payload.Direction = angle
			if !hit {
				ev.Payload.Direction = directionAngles[value]
			}
		} else {
			ev.Kind = round.EventSelection
			ev.Payload.Value = value
		}
	case round.OrientationTarget:
		ev.Kind = round.EventDragRelease
		ev.Payload.Point = t.Center
		ev.Payload.Rotation = t.Rotation
		if !hit {
			ev.Payload.Rotation += 2*t.Tolerance + 1
		}
	case round.TimingTarget:
		ev.At = t.Start
		if !hit {
			if t.Period > 0 {
				ev.At += t.Period / 2
			} else {
				ev.At += 2 * t.Tolerance
			}
		}
	}
	return ev
}

func wrongChoice(t round.ValueTarget) string {
	i := slices.IndexFunc(t.Choices, func(c string) bool { return c != t.Expected })
	if i < 0 {
		return "not-" + t.Expected
	}
	return t.Choices[i]
}
