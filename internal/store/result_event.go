package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var gameResultColumns = withEventColumns("session_id", "game_type", "correct", "total", "accuracy", "xp_awarded", "skill_tags")

func (r *eventRepo) AppendGameResult(ctx context.Context, data GameResultData) (bool, error) {
	n, err := r.insert(ctx, tableGameResults,
		[]string{"session_id", "game_type", "correct", "total", "accuracy", "xp_awarded", "skill_tags"},
		[]any{data.SessionID, data.GameType, data.Correct, data.Total, data.Accuracy, data.XPAwarded, Tags(data.SkillTags)},
		entsql.ConflictColumns("session_id"),
		entsql.DoNothing(),
	)
	if err != nil {
		return false, fmt.Errorf("save game result: %w", err)
	}
	return n > 0, nil
}

func (r *eventRepo) GameResult(ctx context.Context, sessionID string) (*GameResultRecord, error) {
	sel := builder().Select(gameResultColumns...).
		From(entsql.Table(tableGameResults)).
		Where(entsql.EQ("session_id", sessionID)).
		Limit(1)

	var out []GameResultRecord
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query game result: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *eventRepo) GameResults(ctx context.Context, opts QueryOpts) ([]GameResultRecord, error) {
	var out []GameResultRecord
	if err := r.scan(ctx, selectEvents(tableGameResults, gameResultColumns, opts), &out); err != nil {
		return nil, fmt.Errorf("query game results: %w", err)
	}
	return out, nil
}

func (r *eventRepo) TotalXP(ctx context.Context) (int, error) {
	query, args := builder().Select(entsql.Sum("xp_awarded")).
		From(entsql.Table(tableGameResults)).
		Query()

	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sum xp: %w", err)
	}
	return int(total.Int64), nil
}
