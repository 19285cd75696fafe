// Package feedback plays the audio, speech and haptic cues of a session.
// Cue devices are fire-and-forget: their failures are logged and never
// reach the round engine.
package feedback

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// Cue is a short sound effect.
type Cue string

const (
	CueRoundStart Cue = "round-start"
	CueHit        Cue = "hit"
	CueMiss       Cue = "miss"
	CueTooEarly   Cue = "too-early"
	CueTooLate    Cue = "too-late"
	CueFanfare    Cue = "fanfare"
)

// Sounder plays sound effects.
type Sounder interface {
	Play(ctx context.Context, cue Cue, volume float64) error
}

// Speaker reads text aloud.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Buzzer drives a haptic motor.
type Buzzer interface {
	Buzz(ctx context.Context, d time.Duration) error
}

// Bell plays cues as terminal bells. Only hits, misses and the fanfare
// ring; quieter cues are silent.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell creates a Bell writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

var bellRings = map[Cue]int{CueHit: 1, CueMiss: 1, CueTooEarly: 1, CueTooLate: 1, CueFanfare: 2}

func (b *Bell) Play(ctx context.Context, cue Cue, volume float64) error {
	n := bellRings[cue]
	if n == 0 || volume <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, strings.Repeat("\a", n))
	return err
}

// Captions renders speech as on-screen text. Speaking holds the caption
// for a reading time proportional to its length, or until ctx ends.
type Captions struct {
	mu       sync.Mutex
	text     string
	onChange func(string)
	perWord  time.Duration
}

// NewCaptions creates a caption line. onChange, if not nil, is called with
// every new caption, including the empty one when a caption is cleared.
func NewCaptions(onChange func(string)) *Captions {
	return &Captions{onChange: onChange, perWord: 250 * time.Millisecond}
}

func (c *Captions) Speak(ctx context.Context, text string) error {
	c.set(text)
	t := time.NewTimer(time.Duration(len(strings.Fields(text))) * c.perWord)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		c.clear(text)
		return ctx.Err()
	}
}

// Text returns the caption currently shown.
func (c *Captions) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Captions) set(text string) {
	c.mu.Lock()
	c.text = text
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

// clear removes text if it is still the caption shown.
func (c *Captions) clear(text string) {
	c.mu.Lock()
	if c.text != text {
		c.mu.Unlock()
		return
	}
	c.text = ""
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn("")
	}
}

// NopBuzzer is used where no haptic device exists.
type NopBuzzer struct{}

func (NopBuzzer) Buzz(context.Context, time.Duration) error { return nil }
