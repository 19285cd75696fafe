package validate

import (
	"math"
	"time"

	"github.com/abhisek/wiggles/internal/round"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b round.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// AngularDistance returns the shortest arc between two angles in degrees,
// in [0, 180].
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// NearestBeat returns the index of the cue closest to at and the signed
// offset of at from it (negative = early). Single-cue targets always
// return beat 0.
func NearestBeat(t round.TimingTarget, at time.Duration) (int, time.Duration) {
	if t.Period <= 0 || at <= t.Start {
		return 0, at - t.Start
	}
	since := at - t.Start
	beat := int((since + t.Period/2) / t.Period)
	if t.Beats > 0 && beat > t.Beats-1 {
		beat = t.Beats - 1
	}
	return beat, since - time.Duration(beat)*t.Period
}

// MinSwipe is the shortest swipe, in canvas units, that counts as a
// direction.
const MinSwipe = 10.0

// SwipeValue maps a swipe to "right", "down", "left" or "up". Direction is
// in degrees with 0 pointing right and 90 pointing down. Short swipes map
// to "".
func SwipeValue(p round.Payload) string {
	if p.Distance < MinSwipe {
		return ""
	}
	d := math.Mod(p.Direction, 360)
	if d < 0 {
		d += 360
	}
	switch {
	case d < 45 || d >= 315:
		return "right"
	case d < 135:
		return "down"
	case d < 225:
		return "left"
	default:
		return "up"
	}
}
