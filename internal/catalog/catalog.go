// Package catalog loads the game definitions. The built-in catalog is
// embedded; an override file with the same layout may replace it.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/validate"
)

//go:embed games.yaml
var builtinYAML []byte

//go:embed catalog.schema.json
var schemaJSON []byte

// Discipline is the therapy area a game trains.
type Discipline string

const (
	Occupational Discipline = "ot"
	Speech       Discipline = "speech"
)

// Kind selects the round generator and target variant of a game.
type Kind string

const (
	KindBalloonPop     Kind = "balloon-pop"
	KindDotTrack       Kind = "dot-track"
	KindSortBins       Kind = "sort-bins"
	KindBiggerSize     Kind = "bigger-size"
	KindNumberSequence Kind = "number-sequence"
	KindHandTurns      Kind = "hand-turns"
	KindSoundMatch     Kind = "sound-match"
	KindShapeParking   Kind = "shape-parking"
	KindRhythmCopy     Kind = "rhythm-copy"
	KindStopSignal     Kind = "stop-signal"
)

// Cue timing of the timed kinds. A window must reach past its latest cue
// by the timing tolerance.
const (
	// StopCueFloor is the earliest green light of stop-signal.
	StopCueFloor = 800 * time.Millisecond

	// RhythmBeats is the number of drum beats in a rhythm-copy round.
	RhythmBeats = 4
)

// BeatPeriods are the rhythm-copy tempos. Each is more than twice the beat
// tolerance so that off-beat claps can miss.
var BeatPeriods = []time.Duration{800 * time.Millisecond, 900 * time.Millisecond, time.Second}

// Window is the response window of timed games.
type Window struct {
	Open  time.Duration `yaml:"open"`
	Close time.Duration `yaml:"close"`
}

// Game is one catalog entry.
type Game struct {
	ID                string        `yaml:"id"`
	Name              string        `yaml:"name"`
	Discipline        Discipline    `yaml:"discipline"`
	Instruction       string        `yaml:"instruction"`
	SkillTags         []string      `yaml:"skill_tags"`
	Kind              Kind          `yaml:"kind"`
	Rounds            int           `yaml:"rounds"`
	XPPerCorrect      int           `yaml:"xp_per_correct"`
	LeadTime          time.Duration `yaml:"lead_time"`
	FeedbackDelay     time.Duration `yaml:"feedback_delay"`
	ResponseTimeout   time.Duration `yaml:"response_timeout"`
	Retry             string        `yaml:"retry"`
	MaxAttempts       int           `yaml:"max_attempts"`
	CompleteAfterHits int           `yaml:"complete_after_hits"`
	Tolerance         string        `yaml:"tolerance"`
	MinAppVersion     string        `yaml:"min_app_version"`
	Window            *Window       `yaml:"window"`
}

// Policy returns the controller policy of the game.
func (g Game) Policy() round.Policy {
	p := round.Policy{
		LeadTime:          g.LeadTime,
		FeedbackDelay:     g.FeedbackDelay,
		ResponseTimeout:   g.ResponseTimeout,
		MaxAttempts:       g.MaxAttempts,
		CompleteAfterHits: g.CompleteAfterHits,
	}
	if g.Retry == "on-miss" {
		p.Retry = round.RetryOnMiss
	}
	return p
}

// RoundWindow converts the game window, or returns nil for untimed games.
func (g Game) RoundWindow() *round.TimingWindow {
	if g.Window == nil {
		return nil
	}
	return &round.TimingWindow{OpenAt: g.Window.Open, CloseAt: g.Window.Close}
}

// Profile returns the tolerance profile of the game, falling back to the
// kind's default.
func (g Game) Profile() validate.Profile {
	name := g.Tolerance
	if name == "" {
		name = defaultTolerance[g.Kind]
	}
	p, err := validate.Lookup(name)
	if err != nil {
		return validate.Standard
	}
	return p
}

var defaultTolerance = map[Kind]string{
	KindBalloonPop:   validate.Standard.Name,
	KindDotTrack:     validate.Forgiving.Name,
	KindSortBins:     validate.Drag.Name,
	KindShapeParking: validate.Drag.Name,
	KindRhythmCopy:   validate.Beat.Name,
	KindStopSignal:   validate.BeatStrict.Name,
}

// Validate checks the rules the schema cannot express.
func (g Game) Validate() error {
	if w := g.Window; w != nil {
		if w.Open < 0 || w.Close <= w.Open {
			return fmt.Errorf("game %s: window [%s, %s] is empty", g.ID, w.Open, w.Close)
		}
	}
	if g.CompleteAfterHits > g.Rounds {
		return fmt.Errorf("game %s: complete_after_hits %d exceeds rounds %d", g.ID, g.CompleteAfterHits, g.Rounds)
	}
	if g.Tolerance != "" {
		p, err := validate.Lookup(g.Tolerance)
		if err != nil {
			return fmt.Errorf("game %s: %w", g.ID, err)
		}
		if needsTiming(g.Kind) != (p.Timing > 0) {
			return fmt.Errorf("game %s: profile %q does not fit kind %s", g.ID, p.Name, g.Kind)
		}
	}
	if needsTiming(g.Kind) {
		if g.Window == nil {
			return fmt.Errorf("game %s: kind %s needs a window", g.ID, g.Kind)
		}
		if need := latestCue(g.Kind) + g.Profile().Timing; g.Window.Close < need {
			return fmt.Errorf("game %s: window closes at %s, before the last cue can be answered (needs %s)",
				g.ID, g.Window.Close, need)
		}
	}
	if g.MinAppVersion != "" && !semver.IsValid(g.MinAppVersion) {
		return fmt.Errorf("game %s: invalid min_app_version %q", g.ID, g.MinAppVersion)
	}
	return nil
}

func needsTiming(k Kind) bool {
	return k == KindRhythmCopy || k == KindStopSignal
}

// latestCue is the earliest offset by which every generated cue of a timed
// kind must fit.
func latestCue(k Kind) time.Duration {
	switch k {
	case KindStopSignal:
		return StopCueFloor
	case KindRhythmCopy:
		return time.Duration(RhythmBeats-1) * slices.Max(BeatPeriods)
	default:
		return 0
	}
}

// Catalog is a validated, version-filtered set of games.
type Catalog struct {
	games []Game
	byID  map[string]Game

	// Skipped lists games that need a newer app version.
	Skipped []string
}

type document struct {
	Version int    `yaml:"version"`
	Games   []Game `yaml:"games"`
}

// Builtin loads the embedded catalog.
func Builtin(appVersion string) (*Catalog, error) {
	return Parse(builtinYAML, appVersion)
}

// LoadFile loads a catalog file.
func LoadFile(path, appVersion string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, appVersion)
}

// Parse validates data against the catalog schema and decodes it. Games
// whose min_app_version is newer than appVersion are skipped. Development
// builds (appVersion not a semantic version) get every game.
func Parse(data []byte, appVersion string) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]Game, len(doc.Games))}
	for _, g := range doc.Games {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("duplicate game id %q", g.ID)
		}
		if !supported(g.MinAppVersion, appVersion) {
			c.Skipped = append(c.Skipped, g.ID)
			continue
		}
		c.byID[g.ID] = g
		c.games = append(c.games, g)
	}
	if len(c.games) == 0 {
		return nil, fmt.Errorf("catalog has no games for version %s", appVersion)
	}
	return c, nil
}

func supported(minVersion, appVersion string) bool {
	if minVersion == "" || !semver.IsValid(appVersion) {
		return true
	}
	return semver.Compare(appVersion, minVersion) >= 0
}

// Games returns the games in catalog order.
func (c *Catalog) Games() []Game {
	return append([]Game(nil), c.games...)
}

// Get returns the game with the given id.
func (c *Catalog) Get(id string) (Game, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// IDs returns the game ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func checkSchema(raw any) error {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://catalog.json", def); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("schema://catalog.json")
	})
	if schemaErr != nil {
		return schemaErr
	}

	// Round-trip through JSON so YAML scalars take their JSON types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("catalog is not JSON-compatible: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("catalog is not JSON-compatible: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	return nil
}
