package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var (
	sessionEventColumns = withEventColumns("session_id", "game_type", "action", "score", "total_rounds", "duration_ms")
	roundEventColumns   = withEventColumns("session_id", "round_index", "attempt", "outcome", "response_ms", "timed_out")
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	_, err := r.insert(ctx, tableSessionEvents,
		[]string{"session_id", "game_type", "action", "score", "total_rounds", "duration_ms"},
		[]any{data.SessionID, data.GameType, data.Action, data.Score, data.TotalRounds, data.DurationMs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendRoundEvent(ctx context.Context, data RoundEventData) error {
	_, err := r.insert(ctx, tableRoundEvents,
		[]string{"session_id", "round_index", "attempt", "outcome", "response_ms", "timed_out"},
		[]any{data.SessionID, data.RoundIndex, data.Attempt, data.Outcome, data.ResponseMs, data.TimedOut},
	)
	if err != nil {
		return fmt.Errorf("save round event: %w", err)
	}
	return nil
}

func (r *eventRepo) SessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	var out []SessionEventRecord
	if err := r.scan(ctx, selectEvents(tableSessionEvents, sessionEventColumns, opts), &out); err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) RoundEvents(ctx context.Context, sessionID string) ([]RoundEventRecord, error) {
	sel := builder().Select(roundEventColumns...).
		From(entsql.Table(tableRoundEvents)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Asc("sequence"))

	var out []RoundEventRecord
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query round events: %w", err)
	}
	return out, nil
}
