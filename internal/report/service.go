package report

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidLog is wrapped by GameLog.Validate failures.
var ErrInvalidLog = errors.New("invalid game log")

// GameLog is the payload sent to the progress service when a game ends.
type GameLog struct {
	SessionID string   `json:"session_id"`
	GameType  string   `json:"game_type"`
	Correct   int      `json:"correct"`
	Total     int      `json:"total"`
	Accuracy  int      `json:"accuracy"`
	XPAwarded int      `json:"xp_awarded"`
	SkillTags []string `json:"skill_tags"`
}

// Validate checks that the log describes a possible session.
func (l GameLog) Validate() error {
	switch {
	case l.SessionID == "":
		return fmt.Errorf("%w: missing session id", ErrInvalidLog)
	case l.GameType == "":
		return fmt.Errorf("%w: missing game type", ErrInvalidLog)
	case l.Total < 1:
		return fmt.Errorf("%w: total %d must be >= 1", ErrInvalidLog, l.Total)
	case l.Correct < 0 || l.Correct > l.Total:
		return fmt.Errorf("%w: correct %d outside [0, %d]", ErrInvalidLog, l.Correct, l.Total)
	case l.Accuracy < 0 || l.Accuracy > 100:
		return fmt.Errorf("%w: accuracy %d outside [0, 100]", ErrInvalidLog, l.Accuracy)
	case l.XPAwarded < 0:
		return fmt.Errorf("%w: negative xp", ErrInvalidLog)
	}
	return nil
}

// Ack is the progress service's acknowledgment of a logged game.
type Ack struct {
	LoggedAt time.Time `json:"logged_at"`
	TotalXP  int       `json:"total_xp"`
}

// ProgressService records completed games and awards XP.
type ProgressService interface {
	LogGameAndAward(ctx context.Context, log GameLog) (Ack, error)
}

// ProgressServiceFunc adapts a function to ProgressService.
type ProgressServiceFunc func(ctx context.Context, log GameLog) (Ack, error)

func (f ProgressServiceFunc) LogGameAndAward(ctx context.Context, log GameLog) (Ack, error) {
	return f(ctx, log)
}
