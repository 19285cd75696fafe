// Package games builds the rounds of each catalog game kind. Every kind
// supplies only a generator; the round engine and the validator are
// shared.
package games

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/validate"
)

// Canvas is the coordinate space all games place targets in.
var Canvas = validate.PercentCanvas

// Directions are the swipe values used by hand-turns.
var Directions = []string{"up", "right", "down", "left"}

// Bins are the drop zones of sort-bins, left to right.
var Bins = []Bin{
	{Label: "animals", Box: round.BoxTarget{Min: round.Point{X: 5, Y: 65}, Max: round.Point{X: 30, Y: 95}}},
	{Label: "food", Box: round.BoxTarget{Min: round.Point{X: 37.5, Y: 65}, Max: round.Point{X: 62.5, Y: 95}}},
	{Label: "vehicles", Box: round.BoxTarget{Min: round.Point{X: 70, Y: 65}, Max: round.Point{X: 95, Y: 95}}},
}

// Bin is a labelled drop zone.
type Bin struct {
	Label string
	Box   round.BoxTarget
}

var binItems = map[string][]string{
	"animals":  {"cat", "dog", "duck", "frog", "horse"},
	"food":     {"apple", "bread", "carrot", "cheese", "pear"},
	"vehicles": {"bus", "car", "train", "bike", "boat"},
}

// soundWords groups picture words by their first sound.
var soundWords = map[string][]string{
	"b": {"ball", "bat", "bee", "bus", "bed"},
	"s": {"sun", "sock", "seal", "soap", "sand"},
	"m": {"moon", "mop", "milk", "mouse", "map"},
	"t": {"top", "toe", "tub", "tent", "tiger"},
	"f": {"fish", "fan", "fork", "fox", "feet"},
}

var soundKeys = []string{"b", "s", "m", "t", "f"}

// NewGenerator returns the round generator for game g. The same seed
// yields the same rounds.
func NewGenerator(g catalog.Game, seed uint64) (round.Generator, error) {
	gen := &generator{
		profile: g.Profile(),
		window:  g.RoundWindow(),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	next, ok := map[catalog.Kind]func() (round.Target, string){
		catalog.KindBalloonPop:     gen.balloon,
		catalog.KindDotTrack:       gen.dot,
		catalog.KindSortBins:       gen.sortBins,
		catalog.KindBiggerSize:     gen.biggerSize,
		catalog.KindNumberSequence: gen.numberSequence,
		catalog.KindHandTurns:      gen.handTurns,
		catalog.KindSoundMatch:     gen.soundMatch,
		catalog.KindShapeParking:   gen.shapeParking,
		catalog.KindRhythmCopy:     gen.rhythm,
		catalog.KindStopSignal:     gen.stopSignal,
	}[g.Kind]
	if !ok {
		return nil, fmt.Errorf("no generator for kind %q", g.Kind)
	}
	gen.next = next
	return gen, nil
}

type generator struct {
	profile validate.Profile
	window  *round.TimingWindow
	rng     *rand.Rand
	next    func() (round.Target, string)
}

func (g *generator) Next(state round.SessionState) round.RoundConfig {
	target, prompt := g.next()
	return round.RoundConfig{
		Index:  state.CurrentRound,
		Target: target,
		Window: g.window,
		Prompt: prompt,
	}
}

// spot picks a point at least margin away from the canvas edges.
func (g *generator) spot(margin float64) round.Point {
	return round.Point{
		X: margin + g.rng.Float64()*(Canvas.Width-2*margin),
		Y: margin + g.rng.Float64()*(Canvas.Height-2*margin),
	}
}

func (g *generator) pick(s []string) string {
	return s[g.rng.IntN(len(s))]
}

func (g *generator) balloon() (round.Target, string) {
	return g.profile.Point(g.spot(15), Canvas), "Pop the balloon!"
}

func (g *generator) dot() (round.Target, string) {
	return g.profile.Point(g.spot(10), Canvas), "Tap the dot while it glows."
}

func (g *generator) sortBins() (round.Target, string) {
	bin := Bins[g.rng.IntN(len(Bins))]
	item := g.pick(binItems[bin.Label])
	return bin.Box, fmt.Sprintf("Put the %s in its bin.", item)
}

func (g *generator) biggerSize() (round.Target, string) {
	a := 1 + g.rng.IntN(8)
	b := a + 1 + g.rng.IntN(4)
	left, right, want := a, b, "right"
	if g.rng.IntN(2) == 0 {
		left, right, want = b, a, "left"
	}
	return round.ValueTarget{Expected: want, Choices: []string{"left", "right"}},
		fmt.Sprintf("Which is bigger? %s or %s", strings.Repeat("o", left), strings.Repeat("o", right))
}

func (g *generator) numberSequence() (round.Target, string) {
	start := 1 + g.rng.IntN(10)
	step := 1 + g.rng.IntN(3)
	seq := []string{
		strconv.Itoa(start),
		strconv.Itoa(start + step),
		strconv.Itoa(start + 2*step),
	}
	answer := start + 3*step
	choices := []string{strconv.Itoa(answer), strconv.Itoa(answer + step), strconv.Itoa(answer - 1)}
	g.rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return round.ValueTarget{Expected: strconv.Itoa(answer), Choices: choices},
		fmt.Sprintf("%s, ... what comes next?", strings.Join(seq, ", "))
}

func (g *generator) handTurns() (round.Target, string) {
	dir := g.pick(Directions)
	return round.ValueTarget{Expected: dir, Choices: Directions}, fmt.Sprintf("Swipe %s!", dir)
}

func (g *generator) soundMatch() (round.Target, string) {
	perm := g.rng.Perm(len(soundKeys))
	sound := soundKeys[perm[0]]
	words := soundWords[sound]
	i := g.rng.IntN(len(words))
	cue, answer := words[i], words[(i+1+g.rng.IntN(len(words)-1))%len(words)]

	choices := []string{answer, g.pick(soundWords[soundKeys[perm[1]]]), g.pick(soundWords[soundKeys[perm[2]]])}
	g.rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return round.ValueTarget{Expected: answer, Choices: choices},
		fmt.Sprintf("Which word starts like %q?", cue)
}

func (g *generator) shapeParking() (round.Target, string) {
	rotation := float64(90 * g.rng.IntN(4))
	return validate.Rotation.Orientation(g.spot(20), rotation, g.profile, Canvas),
		"Turn the shape to fit, then park it."
}

func (g *generator) rhythm() (round.Target, string) {
	period := catalog.BeatPeriods[g.rng.IntN(len(catalog.BeatPeriods))]
	return g.profile.Timed(0, period, catalog.RhythmBeats), "Clap on a drum beat."
}

func (g *generator) stopSignal() (round.Target, string) {
	limit := 2 * time.Second
	if g.window != nil {
		limit = min(limit, g.window.CloseAt-g.profile.Timing)
	}
	floor := catalog.StopCueFloor
	cue := floor
	if limit > floor {
		cue += time.Duration(g.rng.Int64N(int64(limit - floor)))
	}
	return g.profile.Timed(cue, 0, 1), "Wait for green, then tap!"
}
