package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var eventColumns = []string{"id", "sequence", "timestamp"}

func withEventColumns(cols ...string) []string {
	return append(append([]string(nil), eventColumns...), cols...)
}

// insert appends an event row, assigning the next sequence number and the
// current UTC time. It returns the number of rows written.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any, opts ...entsql.ConflictOption) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	ins := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, vals...)...)
	if len(opts) > 0 {
		ins = ins.OnConflict(opts...)
	}

	query, args := ins.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return res.RowsAffected()
}

// scan runs sel and scans all rows into v, a pointer to a slice.
func (r *eventRepo) scan(ctx context.Context, sel *entsql.Selector, v any) error {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}

// selectEvents selects cols from table with opts applied, newest first.
func selectEvents(table string, cols []string, opts QueryOpts) *entsql.Selector {
	sel := builder().Select(cols...).From(entsql.Table(table))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}
