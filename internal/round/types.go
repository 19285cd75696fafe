package round

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the lifecycle phase of a session.
type Phase int

const (
	PhaseIdle             Phase = iota // Created, no round presented yet
	PhasePresenting                    // Round shown, lead time running
	PhaseAwaitingResponse              // Player may respond
	PhaseResolved                      // Outcome known, feedback showing
	PhaseSessionComplete               // All rounds played
	PhaseTornDown                      // Cancelled (back/unmount)
)

// String returns the phase label used in logs and the journal.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePresenting:
		return "presenting"
	case PhaseAwaitingResponse:
		return "awaiting"
	case PhaseResolved:
		return "resolved"
	case PhaseSessionComplete:
		return "complete"
	case PhaseTornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transition can leave this phase.
func (p Phase) Terminal() bool {
	return p == PhaseSessionComplete || p == PhaseTornDown
}

// Outcome classifies a single round resolution.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeHit
	OutcomeMiss
	OutcomeTooEarly
	OutcomeTooLate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeTooEarly:
		return "too-early"
	case OutcomeTooLate:
		return "too-late"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TimingWindow bounds when a response counts as on time, measured from the
// moment the response window opens.
type TimingWindow struct {
	OpenAt  time.Duration
	CloseAt time.Duration
}

// Contains reports whether at falls inside [OpenAt, CloseAt].
func (w TimingWindow) Contains(at time.Duration) bool {
	return at >= w.OpenAt && at <= w.CloseAt
}

// Target describes what counts as a correct response for a round.
// Implementations are PointTarget, BoxTarget, ValueTarget,
// OrientationTarget and TimingTarget.
type Target interface {
	targetKind() string
}

// Point is a position in the game's coordinate space. Games using percent
// space place (0,0) top-left and (100,100) bottom-right.
type Point struct {
	X float64
	Y float64
}

// PointTarget is hit when the response lands within Radius of Center.
type PointTarget struct {
	Center Point
	Radius float64
}

// BoxTarget is hit when the response lands inside the rectangle.
type BoxTarget struct {
	Min Point
	Max Point
}

// ValueTarget is hit when the selected value equals Expected.
type ValueTarget struct {
	Expected string
	Choices  []string
}

// OrientationTarget requires positional containment and rotational alignment.
type OrientationTarget struct {
	Center    Point
	Radius    float64
	Rotation  float64 // degrees
	Tolerance float64 // degrees
}

// TimingTarget is hit when the response lands within Tolerance of a cue.
// With a zero Period there is a single cue at Start; otherwise cues repeat
// every Period starting at Start.
type TimingTarget struct {
	Start     time.Duration
	Period    time.Duration
	Beats     int
	Tolerance time.Duration
}

func (PointTarget) targetKind() string       { return "point" }
func (BoxTarget) targetKind() string         { return "box" }
func (ValueTarget) targetKind() string       { return "value" }
func (OrientationTarget) targetKind() string { return "orientation" }
func (TimingTarget) targetKind() string      { return "timing" }

// TargetKind returns a short label for the target variant.
func TargetKind(t Target) string {
	if t == nil {
		return "none"
	}
	return t.targetKind()
}

// RoundConfig is the immutable description of one round's challenge.
type RoundConfig struct {
	Index  int
	Target Target

	// Window is nil for untimed spatial or selection tasks.
	Window *TimingWindow

	// Prompt is a short human-readable instruction for this round.
	Prompt string
}

// Validate checks the structural invariants of a round. Violations are
// caller contract errors and are surfaced in tests, never at runtime.
func (c RoundConfig) Validate() error {
	if c.Index < 0 {
		return fmt.Errorf("round index %d is negative", c.Index)
	}
	if c.Target == nil {
		return errors.New("round has no target")
	}
	if c.Window != nil {
		if c.Window.OpenAt < 0 {
			return fmt.Errorf("window opens at %s, must be >= 0", c.Window.OpenAt)
		}
		if c.Window.CloseAt <= c.Window.OpenAt {
			return fmt.Errorf("window closes at %s, must be after open at %s", c.Window.CloseAt, c.Window.OpenAt)
		}
	}
	switch t := c.Target.(type) {
	case PointTarget:
		if t.Radius <= 0 {
			return fmt.Errorf("point target radius %v must be positive", t.Radius)
		}
	case BoxTarget:
		if t.Max.X <= t.Min.X || t.Max.Y <= t.Min.Y {
			return errors.New("box target is empty")
		}
	case ValueTarget:
		if t.Expected == "" {
			return errors.New("value target has no expected value")
		}
	case OrientationTarget:
		if t.Radius <= 0 || t.Tolerance <= 0 {
			return errors.New("orientation target needs positive radius and tolerance")
		}
	case TimingTarget:
		if t.Tolerance <= 0 {
			return errors.New("timing target tolerance must be positive")
		}
		if t.Period < 0 || t.Start < 0 {
			return errors.New("timing target start and period must be >= 0")
		}
	}
	return nil
}

// EventKind is the gesture that produced a response.
type EventKind int

const (
	EventTap EventKind = iota
	EventDragRelease
	EventSwipe
	EventSelection
)

func (k EventKind) String() string {
	switch k {
	case EventTap:
		return "tap"
	case EventDragRelease:
		return "drag-release"
	case EventSwipe:
		return "swipe"
	case EventSelection:
		return "selection"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Payload carries the data of a response. Only the fields relevant to the
// round's target are read.
type Payload struct {
	// Point is the tap location or drag release point.
	Point Point

	// Rotation is the accumulated rotation in degrees for drag releases.
	Rotation float64

	// Value is the discrete choice for selections.
	Value string

	// Distance and Direction describe swipes. Direction is in degrees.
	Distance  float64
	Direction float64
}

// ResponseEvent is one observed player action. At is measured from the
// moment the response window opened.
type ResponseEvent struct {
	Kind    EventKind
	Payload Payload
	At      time.Duration
}

// RoundRecord is the resolved outcome of one attempt at a round.
type RoundRecord struct {
	Index      int
	Attempt    int
	Outcome    Outcome
	ResponseAt time.Duration // zero for timeouts
	TimedOut   bool
}
