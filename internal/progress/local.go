// Package progress records completed games and awards XP. Local keeps the
// results in the event store; Server exposes it over HTTP and Client talks
// to a Server.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/store"
)

// Summary aggregates every logged game.
type Summary struct {
	TotalXP      int            `json:"total_xp"`
	Plays        int            `json:"plays"`
	XPBySkill    map[string]int `json:"xp_by_skill"`
	PlaysByGame  map[string]int `json:"plays_by_game"`
	BestAccuracy map[string]int `json:"best_accuracy"`
	LastPlayed   time.Time      `json:"last_played,omitzero"`
}

// GameEntry is one logged game as shown in history views.
type GameEntry struct {
	SessionID string    `json:"session_id"`
	GameType  string    `json:"game_type"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Accuracy  int       `json:"accuracy"`
	XPAwarded int       `json:"xp_awarded"`
	SkillTags []string  `json:"skill_tags"`
	LoggedAt  time.Time `json:"logged_at"`
}

// Backend is the full progress surface served over HTTP.
type Backend interface {
	report.ProgressService
	Summary(ctx context.Context) (Summary, error)
	Recent(ctx context.Context, limit int) ([]GameEntry, error)
}

// Local implements Backend on the event store.
type Local struct {
	repo store.EventRepo
}

// NewLocal creates a Local backed by repo.
func NewLocal(repo store.EventRepo) *Local {
	return &Local{repo: repo}
}

// LogGameAndAward stores the game once per session ID. Logging the same
// session again acknowledges the original entry.
func (l *Local) LogGameAndAward(ctx context.Context, log report.GameLog) (report.Ack, error) {
	if err := log.Validate(); err != nil {
		return report.Ack{}, err
	}

	if _, err := l.repo.AppendGameResult(ctx, store.GameResultData{
		SessionID: log.SessionID,
		GameType:  log.GameType,
		Correct:   log.Correct,
		Total:     log.Total,
		Accuracy:  log.Accuracy,
		XPAwarded: log.XPAwarded,
		SkillTags: log.SkillTags,
	}); err != nil {
		return report.Ack{}, err
	}

	rec, err := l.repo.GameResult(ctx, log.SessionID)
	if err != nil {
		return report.Ack{}, fmt.Errorf("read back game result: %w", err)
	}
	total, err := l.repo.TotalXP(ctx)
	if err != nil {
		return report.Ack{}, err
	}
	return report.Ack{LoggedAt: rec.Timestamp, TotalXP: total}, nil
}

// Summary aggregates every stored result.
func (l *Local) Summary(ctx context.Context) (Summary, error) {
	results, err := l.repo.GameResults(ctx, store.QueryOpts{})
	if err != nil {
		return Summary{}, err
	}
	return summarize(results), nil
}

// Recent returns up to limit results, newest first. A limit <= 0 returns
// every result.
func (l *Local) Recent(ctx context.Context, limit int) ([]GameEntry, error) {
	results, err := l.repo.GameResults(ctx, store.QueryOpts{Limit: max(limit, 0)})
	if err != nil {
		return nil, err
	}
	return lo.Map(results, func(r store.GameResultRecord, _ int) GameEntry {
		return entryFromRecord(r)
	}), nil
}

// Note returns the stored parent note for a session, if any.
func (l *Local) Note(ctx context.Context, sessionID string) (string, bool, error) {
	n, err := l.repo.Note(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return n.Text, true, nil
}

func summarize(results []store.GameResultRecord) Summary {
	s := Summary{
		XPBySkill:    map[string]int{},
		PlaysByGame:  lo.CountValuesBy(results, func(r store.GameResultRecord) string { return r.GameType }),
		BestAccuracy: map[string]int{},
		Plays:        len(results),
		TotalXP:      lo.SumBy(results, func(r store.GameResultRecord) int { return r.XPAwarded }),
	}
	for _, r := range results {
		for _, tag := range lo.Uniq([]string(r.SkillTags)) {
			s.XPBySkill[tag] += r.XPAwarded
		}
		if r.Accuracy > s.BestAccuracy[r.GameType] {
			s.BestAccuracy[r.GameType] = r.Accuracy
		} else if _, ok := s.BestAccuracy[r.GameType]; !ok {
			s.BestAccuracy[r.GameType] = r.Accuracy
		}
		if r.Timestamp.After(s.LastPlayed) {
			s.LastPlayed = r.Timestamp
		}
	}
	return s
}

func entryFromRecord(r store.GameResultRecord) GameEntry {
	tags := []string(r.SkillTags)
	if tags == nil {
		tags = []string{}
	}
	return GameEntry{
		SessionID: r.SessionID,
		GameType:  r.GameType,
		Correct:   r.Correct,
		Total:     r.Total,
		Accuracy:  r.Accuracy,
		XPAwarded: r.XPAwarded,
		SkillTags: tags,
		LoggedAt:  r.Timestamp,
	}
}
