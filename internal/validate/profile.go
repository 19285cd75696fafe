package validate

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/wiggles/internal/round"
)

// Unit is the unit a profile's positional tolerance is expressed in.
type Unit int

const (
	UnitNone    Unit = iota // Profile has no positional tolerance
	UnitPercent             // Percent of the canvas' shorter side
	UnitPixels              // Reference pixels on a ReferenceWidth-wide screen
)

// ReferenceWidth is the screen width, in pixels, that pixel tolerances were
// tuned on. Pixel tolerances scale with the canvas width.
const ReferenceWidth = 400.0

// Canvas is the coordinate space a game places its targets in.
type Canvas struct {
	Width  float64
	Height float64
}

// PercentCanvas is the 100x100 space used by most games.
var PercentCanvas = Canvas{Width: 100, Height: 100}

// Profile is a named set of tolerances. A profile only sets the fields
// that apply to it.
type Profile struct {
	Name   string
	Unit   Unit
	Radius float64 // positional tolerance in Unit

	Angle float64 // rotational tolerance in degrees

	Timing time.Duration // offset tolerance around a cue
}

// Built-in profiles.
var (
	Precise    = Profile{Name: "precise", Unit: UnitPercent, Radius: 8}
	Standard   = Profile{Name: "standard", Unit: UnitPercent, Radius: 12}
	Forgiving  = Profile{Name: "forgiving", Unit: UnitPixels, Radius: 40}
	Drag       = Profile{Name: "drag", Unit: UnitPixels, Radius: 50}
	Rotation   = Profile{Name: "rotation", Angle: 30}
	Beat       = Profile{Name: "beat", Timing: 350 * time.Millisecond}
	BeatStrict = Profile{Name: "beat-strict", Timing: 200 * time.Millisecond}
)

// profiles indexes the built-in profiles by name.
var profiles = map[string]Profile{
	Precise.Name:    Precise,
	Standard.Name:   Standard,
	Forgiving.Name:  Forgiving,
	Drag.Name:       Drag,
	Rotation.Name:   Rotation,
	Beat.Name:       Beat,
	BeatStrict.Name: BeatStrict,
}

// Lookup returns the named profile.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown tolerance profile %q", name)
	}
	return p, nil
}

// Names returns the profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RadiusOn converts the positional tolerance to canvas units.
func (p Profile) RadiusOn(c Canvas) float64 {
	switch p.Unit {
	case UnitPercent:
		return p.Radius / 100 * min(c.Width, c.Height)
	case UnitPixels:
		return p.Radius / ReferenceWidth * c.Width
	default:
		return 0
	}
}

// Point builds a point target around center using this profile.
func (p Profile) Point(center round.Point, c Canvas) round.PointTarget {
	return round.PointTarget{Center: center, Radius: p.RadiusOn(c)}
}

// Orientation builds an orientation target. Positional tolerance comes from
// place, rotational tolerance from p.
func (p Profile) Orientation(center round.Point, rotation float64, place Profile, c Canvas) round.OrientationTarget {
	return round.OrientationTarget{
		Center:    center,
		Radius:    place.RadiusOn(c),
		Rotation:  rotation,
		Tolerance: p.Angle,
	}
}

// Timed builds a timing target with this profile's offset tolerance.
func (p Profile) Timed(start, period time.Duration, beats int) round.TimingTarget {
	return round.TimingTarget{Start: start, Period: period, Beats: beats, Tolerance: p.Timing}
}
