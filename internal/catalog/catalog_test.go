package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/validate"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := Builtin("(devel)")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}

	kinds := map[Kind]bool{}
	for _, g := range c.Games() {
		kinds[g.Kind] = true
		if g.Rounds < 1 {
			t.Errorf("%s: rounds %d", g.ID, g.Rounds)
		}
		if g.XPPerCorrect < 10 || g.XPPerCorrect > 20 {
			t.Errorf("%s: xp_per_correct %d outside 10..20", g.ID, g.XPPerCorrect)
		}
		if len(g.SkillTags) == 0 {
			t.Errorf("%s: no skill tags", g.ID)
		}
	}
	if len(kinds) != 10 {
		t.Errorf("builtin catalog covers %d kinds, want 10", len(kinds))
	}
}

func TestGameConversions(t *testing.T) {
	c, err := Builtin("v1.0.0")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}

	seq, ok := c.Get("number-sequence")
	if !ok {
		t.Fatal("number-sequence missing")
	}
	p := seq.Policy()
	if p.Retry != round.RetryOnMiss || p.MaxAttempts != 3 {
		t.Errorf("policy = %+v, want retry on miss with 3 attempts", p)
	}
	if p.LeadTime != 500*time.Millisecond || p.FeedbackDelay != time.Second {
		t.Errorf("durations = %s/%s", p.LeadTime, p.FeedbackDelay)
	}
	if seq.RoundWindow() != nil {
		t.Error("number-sequence should be untimed")
	}

	rhythm, _ := c.Get("rhythm-copy")
	w := rhythm.RoundWindow()
	if w == nil || w.OpenAt != 0 || w.CloseAt != 4*time.Second {
		t.Errorf("rhythm window = %+v", w)
	}
	if rhythm.Profile().Name != validate.Beat.Name {
		t.Errorf("rhythm profile = %s", rhythm.Profile().Name)
	}

	bigger, _ := c.Get("bigger-size")
	if bigger.Profile().Name != validate.Standard.Name {
		t.Errorf("default profile = %s, want standard", bigger.Profile().Name)
	}
}

const minimal = `
version: 1
games:
  - id: pop
    name: Pop
    discipline: ot
    instruction: Pop it.
    kind: balloon-pop
    rounds: 3
    xp_per_correct: 10
`

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "version: [", "parse catalog"},
		{"unknown field", minimal + "    colour: red\n", "catalog schema"},
		{"bad kind", strings.Replace(minimal, "balloon-pop", "laser-tag", 1), "catalog schema"},
		{"zero rounds", strings.Replace(minimal, "rounds: 3", "rounds: 0", 1), "catalog schema"},
		{"bad duration", minimal + "    lead_time: soon\n", "catalog schema"},
		{"empty window", minimal + "    window: {open: 2s, close: 1s}\n", "window"},
		{"unknown profile", minimal + "    tolerance: sloppy\n", "unknown tolerance profile"},
		{"timing profile on spatial game", minimal + "    tolerance: beat\n", "does not fit"},
		{"hits above rounds", minimal + "    complete_after_hits: 4\n", "exceeds rounds"},
		{"timed kind without window", strings.Replace(minimal, "balloon-pop", "rhythm-copy", 1), "needs a window"},
		{"stop-signal window before the cue", timed("stop-signal", "500ms"), "before the last cue"},
		{"stop-signal window inside tolerance", timed("stop-signal", "900ms"), "before the last cue"},
		{"rhythm window before the last beat", timed("rhythm-copy", "3s"), "before the last cue"},
		{"duplicate", minimal + strings.TrimPrefix(minimal, "\nversion: 1\ngames:\n"), "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "v1.0.0")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// timed turns the minimal game into a timed kind with a window closing at
// closeAt.
func timed(kind, closeAt string) string {
	return strings.Replace(minimal, "balloon-pop", kind, 1) +
		"    window: {open: 0s, close: " + closeAt + "}\n"
}

func TestParseAcceptsTightestWindow(t *testing.T) {
	tests := []struct {
		kind  Kind
		close time.Duration
	}{
		{KindStopSignal, StopCueFloor + 200*time.Millisecond},
		{KindRhythmCopy, 3*time.Second + 350*time.Millisecond},
	}
	for _, tt := range tests {
		c, err := Parse([]byte(timed(string(tt.kind), tt.close.String())), "v1.0.0")
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		g, _ := c.Get("pop")
		if g.Window.Close != tt.close {
			t.Errorf("%s: close = %s, want %s", tt.kind, g.Window.Close, tt.close)
		}
	}
}

func TestVersionGate(t *testing.T) {
	doc := minimal + `  - id: future
    name: Future
    discipline: speech
    instruction: Later.
    kind: sound-match
    rounds: 3
    xp_per_correct: 10
    min_app_version: v2.1.0
`
	tests := []struct {
		version string
		want    []string
		skipped int
	}{
		{"v1.4.0", []string{"pop"}, 1},
		{"v2.1.0", []string{"future", "pop"}, 0},
		{"v3.0.0", []string{"future", "pop"}, 0},
		{"(devel)", []string{"future", "pop"}, 0},
	}
	for _, tt := range tests {
		c, err := Parse([]byte(doc), tt.version)
		if err != nil {
			t.Fatalf("%s: %v", tt.version, err)
		}
		if got := strings.Join(c.IDs(), ","); got != strings.Join(tt.want, ",") {
			t.Errorf("%s: ids = %s, want %v", tt.version, got, tt.want)
		}
		if len(c.Skipped) != tt.skipped {
			t.Errorf("%s: skipped = %v", tt.version, c.Skipped)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path, "v0.1.0")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := c.Get("pop"); !ok {
		t.Error("pop missing")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
