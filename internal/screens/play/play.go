// Package play is the screen a child plays a game on. The round engine
// runs on a manual clock advanced by the render tick, so the field that is
// drawn and the clock responses are judged against never drift apart.
package play

import (
	"math"
	"strconv"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/samber/lo"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/games"
	"github.com/abhisek/wiggles/internal/notes"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/screens/summary"
	"github.com/abhisek/wiggles/internal/session"
	"github.com/abhisek/wiggles/internal/ui/components"
	"github.com/abhisek/wiggles/internal/ui/layout"
	"github.com/abhisek/wiggles/internal/validate"
)

const (
	tickInterval = 50 * time.Millisecond
	cursorStep   = 5.0
)

// Deps are shared by every play screen.
type Deps struct {
	// Session is copied into each session. Scheduler and Cues are set by
	// the screen.
	Session session.Deps

	Sounder  feedback.Sounder
	Buzzer   feedback.Buzzer
	Settings *feedback.SettingsStore

	// Notes writes the parent note on the summary screen.
	Notes *notes.Service

	// Now defaults to time.Now.
	Now func() time.Time
}

type tickMsg time.Time

// PlayScreen runs one session of a game.
type PlayScreen struct {
	game     catalog.Game
	deps     Deps
	sess     *session.Session
	clock    *round.ManualClock
	last     time.Time
	captions *feedback.Captions

	// Input state, reset for every attempt.
	attempt  [2]int
	cursor   round.Point
	rotation float64
	choices  components.Choices

	finished bool
	errMsg   string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)
var _ screen.Leaver = (*PlayScreen)(nil)

// New creates a PlayScreen for game. The session starts in Init.
func New(game catalog.Game, deps Deps) *PlayScreen {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &PlayScreen{
		game:     game,
		deps:     deps,
		last:     deps.Now(),
		captions: feedback.NewCaptions(nil),
		attempt:  [2]int{-1, 0},
	}
	s.clock = round.NewManualClock(s.last)

	sd := deps.Session
	sd.Scheduler = s.clock
	sd.Cues = &feedback.DirectorConfig{
		Sounder:  deps.Sounder,
		Speaker:  s.captions,
		Buzzer:   deps.Buzzer,
		Settings: deps.Settings,
		Logger:   sd.Logger,
	}
	sess, err := session.New(game, sd)
	if err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.sess = sess
	return s
}

func (s *PlayScreen) Init() tea.Cmd {
	if s.sess == nil {
		return nil
	}
	s.sess.Start()
	s.syncAttempt()
	return tick()
}

func (s *PlayScreen) Title() string {
	return s.game.Name
}

// Leave cancels a session still in progress.
func (s *PlayScreen) Leave() {
	if s.sess != nil && !s.finished {
		s.sess.Cancel()
	}
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.sess == nil || s.finished || s.sess.State().Phase == round.PhaseTornDown {
		return s, nil
	}
	switch msg := msg.(type) {
	case tickMsg:
		s.advance(time.Time(msg))
		return s, s.next(tick())
	case tea.KeyPressMsg:
		s.advance(s.deps.Now())
		s.handleKey(msg)
		return s, s.next(nil)
	}
	return s, nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// advance moves the session clock up to now.
func (s *PlayScreen) advance(now time.Time) {
	if d := now.Sub(s.last); d > 0 {
		s.last = now
		s.clock.Advance(d)
	}
	s.syncAttempt()
}

// next hands over to the summary once the session is complete.
func (s *PlayScreen) next(cmd tea.Cmd) tea.Cmd {
	c, ok := s.sess.Completion()
	if !ok {
		return cmd
	}
	s.finished = true
	sum := summary.New(c, summary.Options{
		Notes:  s.deps.Notes,
		Replay: s.replay,
	})
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

// replay builds the screen for the next play-through. It keeps this
// screen's clock and captions, which the replayed session is wired to.
func (s *PlayScreen) replay() screen.Screen {
	next := &PlayScreen{
		game:     s.game,
		deps:     s.deps,
		clock:    s.clock,
		last:     s.deps.Now(),
		captions: s.captions,
		attempt:  [2]int{-1, 0},
	}
	sess, err := s.sess.Replay()
	if err != nil {
		next.errMsg = err.Error()
		return next
	}
	next.sess = sess
	return next
}

// syncAttempt resets the input state when a new attempt is presented.
func (s *PlayScreen) syncAttempt() {
	st := s.sess.State()
	id := [2]int{st.CurrentRound, st.Attempt}
	if id == s.attempt || st.Phase.Terminal() {
		return
	}
	s.attempt = id
	s.rotation = 0
	s.cursor = round.Point{X: games.Canvas.Width / 2, Y: games.Canvas.Height / 2}
	if _, ok := st.Round.Target.(round.BoxTarget); ok {
		s.cursor.Y = games.Canvas.Height * 0.3
	}
	if t, ok := st.Round.Target.(round.ValueTarget); ok {
		s.choices = components.NewChoices(t.Choices)
	}
}

func (s *PlayScreen) handleKey(msg tea.KeyPressMsg) {
	switch t := s.sess.State().Round.Target.(type) {
	case round.PointTarget:
		if !s.moveCursor(msg) && key.Matches(msg, keys.Act) {
			s.sess.Respond(round.EventTap, round.Payload{Point: s.cursor})
		}
	case round.BoxTarget:
		if !s.moveCursor(msg) && key.Matches(msg, keys.Act) {
			s.sess.Respond(round.EventDragRelease, round.Payload{Point: s.cursor})
		}
	case round.OrientationTarget:
		switch {
		case s.moveCursor(msg):
		case key.Matches(msg, keys.Turn):
			s.rotation = math.Mod(s.rotation+90, 360)
		case key.Matches(msg, keys.TurnBack):
			s.rotation = math.Mod(s.rotation+270, 360)
		case key.Matches(msg, keys.Act):
			s.sess.Respond(round.EventDragRelease, round.Payload{Point: s.cursor, Rotation: s.rotation})
		}
	case round.ValueTarget:
		if swipeable(t) {
			for _, sw := range swipeAngles {
				if key.Matches(msg, sw.binding) {
					s.sess.Respond(round.EventSwipe, round.Payload{Distance: 3 * validate.MinSwipe, Direction: sw.angle})
					return
				}
			}
			return
		}
		switch {
		case key.Matches(msg, keys.Left):
			s.choices = s.choices.Move(-1)
		case key.Matches(msg, keys.Right):
			s.choices = s.choices.Move(1)
		case key.Matches(msg, keys.Act):
			s.sess.Respond(round.EventSelection, round.Payload{Value: s.choices.Value()})
		default:
			if n, err := strconv.Atoi(msg.String()); err == nil {
				if c, ok := s.choices.Pick(n); ok {
					s.choices = c
					s.sess.Respond(round.EventSelection, round.Payload{Value: c.Value()})
				}
			}
		}
	case round.TimingTarget:
		if key.Matches(msg, keys.Act) {
			s.sess.Respond(round.EventTap, round.Payload{})
		}
	}
}

// moveCursor handles the arrow keys. It reports whether msg was one.
func (s *PlayScreen) moveCursor(msg tea.KeyPressMsg) bool {
	var dx, dy float64
	switch {
	case key.Matches(msg, keys.Up):
		dy = -cursorStep
	case key.Matches(msg, keys.Down):
		dy = cursorStep
	case key.Matches(msg, keys.Left):
		dx = -cursorStep
	case key.Matches(msg, keys.Right):
		dx = cursorStep
	default:
		return false
	}
	s.cursor.X = max(0, min(games.Canvas.Width, s.cursor.X+dx))
	s.cursor.Y = max(0, min(games.Canvas.Height, s.cursor.Y+dy))
	return true
}

// swipeable reports whether a value round is answered with swipes.
func swipeable(t round.ValueTarget) bool {
	return len(t.Choices) > 0 && lo.Every(games.Directions, t.Choices)
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	if s.sess == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	var hints []layout.KeyHint
	switch t := s.sess.State().Round.Target.(type) {
	case round.PointTarget:
		hints = []layout.KeyHint{{Key: "Arrows", Description: "Move"}, {Key: "Space", Description: "Tap"}}
	case round.BoxTarget:
		hints = []layout.KeyHint{{Key: "Arrows", Description: "Move"}, {Key: "Enter", Description: "Drop"}}
	case round.OrientationTarget:
		hints = []layout.KeyHint{
			{Key: "Arrows", Description: "Move"},
			{Key: keys.Turn.Help().Key, Description: keys.Turn.Help().Desc},
			{Key: "Enter", Description: "Park"},
		}
	case round.ValueTarget:
		if swipeable(t) {
			hints = []layout.KeyHint{{Key: "Arrows", Description: "Swipe"}}
		} else {
			hints = []layout.KeyHint{{Key: "1-" + strconv.Itoa(len(t.Choices)), Description: "Pick"}, {Key: "Enter", Description: "Choose"}}
		}
	case round.TimingTarget:
		hints = []layout.KeyHint{{Key: "Space", Description: "Tap"}}
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Stop"})
}
