package notes

import (
	"fmt"
	"strings"
	"time"
)

// Template writes a note without a model.
func Template(in Input) string {
	var parts []string

	switch {
	case in.Total == 0:
		return fmt.Sprintf("%s was started but no rounds were played.", in.GameName)
	case in.Correct == in.Total:
		parts = append(parts, fmt.Sprintf("A perfect round of %s: %d out of %d!", in.GameName, in.Correct, in.Total))
	case in.Accuracy >= 70:
		parts = append(parts, fmt.Sprintf("Great work on %s, with %d out of %d correct.", in.GameName, in.Correct, in.Total))
	case in.Accuracy >= 40:
		parts = append(parts, fmt.Sprintf("Good effort on %s: %d out of %d correct.", in.GameName, in.Correct, in.Total))
	default:
		parts = append(parts, fmt.Sprintf("%s was tricky today (%d out of %d), and sticking with it is what counts.", in.GameName, in.Correct, in.Total))
	}

	if in.FastestHit > 0 {
		parts = append(parts, fmt.Sprintf("The quickest correct answer took %s.", in.FastestHit.Round(10*time.Millisecond)))
	}

	switch {
	case in.Early > 0 && in.Early >= in.TimedOut:
		parts = append(parts, "Practising waiting for the signal will help.")
	case in.TimedOut > 0:
		parts = append(parts, "A few rounds went unanswered, so shorter sessions may help.")
	case in.Retried > 0:
		parts = append(parts, fmt.Sprintf("%d %s needed another try.", in.Retried, plural(in.Retried, "round", "rounds")))
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
