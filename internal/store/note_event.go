package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var noteColumns = withEventColumns("session_id", "source", "text")

func (r *eventRepo) AppendNote(ctx context.Context, data NoteData) error {
	_, err := r.insert(ctx, tableSessionNotes,
		[]string{"session_id", "source", "text"},
		[]any{data.SessionID, data.Source, data.Text},
	)
	if err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

func (r *eventRepo) Note(ctx context.Context, sessionID string) (*NoteRecord, error) {
	sel := builder().Select(noteColumns...).
		From(entsql.Table(tableSessionNotes)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1)

	var out []NoteRecord
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query note: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}
