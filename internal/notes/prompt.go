package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/session"
)

// Input is what a note is written from.
type Input struct {
	GameName   string
	Discipline catalog.Discipline
	SkillTags  []string
	Correct    int
	Total      int
	Accuracy   int
	XP         int
	Duration   time.Duration
	FastestHit time.Duration
	Retried    int // rounds that needed more than one attempt
	TimedOut   int
	Early      int
}

// InputFor extracts an Input from a completed session.
func InputFor(c session.Completion) Input {
	sum := session.BuildSummary(c)
	in := Input{
		GameName:   c.Game.Name,
		Discipline: c.Game.Discipline,
		SkillTags:  c.Game.SkillTags,
		Correct:    c.Result.Correct,
		Total:      c.Result.Total,
		Accuracy:   c.Result.AccuracyPct,
		XP:         c.Result.XPAwarded,
		Duration:   sum.Duration,
		FastestHit: sum.FastestHit,
	}
	for _, r := range sum.Rounds {
		if r.Attempts > 1 {
			in.Retried++
		}
		if r.TimedOut {
			in.TimedOut++
		}
		if r.Outcome == round.OutcomeTooEarly {
			in.Early++
		}
	}
	return in
}

const systemPrompt = `You write short notes for parents of young children doing occupational and speech therapy games at home. Be warm and specific. Never diagnose, never compare the child to others, and never use clinical jargon.`

func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s (%s)\n", in.GameName, disciplineName(in.Discipline))
	if len(in.SkillTags) > 0 {
		fmt.Fprintf(&b, "Skills practised: %s\n", strings.Join(in.SkillTags, ", "))
	}
	fmt.Fprintf(&b, "Correct: %d of %d (%d%%)\n", in.Correct, in.Total, in.Accuracy)
	fmt.Fprintf(&b, "Session length: %s\n", in.Duration.Round(time.Second))
	if in.FastestHit > 0 {
		fmt.Fprintf(&b, "Fastest correct response: %s\n", in.FastestHit.Round(10*time.Millisecond))
	}
	if in.Retried > 0 {
		fmt.Fprintf(&b, "Rounds that needed another try: %d\n", in.Retried)
	}
	if in.TimedOut > 0 {
		fmt.Fprintf(&b, "Rounds with no response: %d\n", in.TimedOut)
	}
	if in.Early > 0 {
		fmt.Fprintf(&b, "Responses that came too early: %d\n", in.Early)
	}
	b.WriteString(`
Instructions:
Write two or three sentences for the parent. Mention one thing that went well and, if there is one, one thing to keep practising. Use plain text only.`)
	return b.String()
}

func disciplineName(d catalog.Discipline) string {
	if d == catalog.Speech {
		return "speech"
	}
	return "occupational therapy"
}
