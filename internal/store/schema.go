package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableSessionEvents = "session_events"
	tableRoundEvents   = "round_events"
	tableGameResults   = "game_results"
	tableSessionNotes  = "session_notes"
	tableLLMRequests   = "llm_request_events"
)

// builder returns a SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// eventTable builds an event table. Every event carries the id, global
// sequence and timestamp columns; indexed names extra columns to index.
func eventTable(name string, fields []*schema.Column, indexed ...string) *schema.Table {
	cols := append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, fields...)

	t := &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: cols[:1],
	}
	byName := make(map[string]*schema.Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}
	for _, col := range append([]string{"timestamp"}, indexed...) {
		t.Indexes = append(t.Indexes, &schema.Index{
			Name:    name + "_" + col,
			Columns: []*schema.Column{byName[col]},
		})
	}
	return t
}

// tables returns fresh table definitions. The migrator links indexes into
// the column values it is given, so definitions are not shared between
// migrations.
func tables() []*schema.Table {
	return []*schema.Table{
		eventTable(tableSessionEvents, []*schema.Column{
			{Name: "session_id", Type: field.TypeString},
			{Name: "game_type", Type: field.TypeString},
			{Name: "action", Type: field.TypeString},
			{Name: "score", Type: field.TypeInt, Default: 0},
			{Name: "total_rounds", Type: field.TypeInt, Default: 0},
			{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
		}, "session_id", "action"),

		eventTable(tableRoundEvents, []*schema.Column{
			{Name: "session_id", Type: field.TypeString},
			{Name: "round_index", Type: field.TypeInt},
			{Name: "attempt", Type: field.TypeInt},
			{Name: "outcome", Type: field.TypeString},
			{Name: "response_ms", Type: field.TypeInt64, Default: 0},
			{Name: "timed_out", Type: field.TypeBool, Default: false},
		}, "session_id"),

		eventTable(tableGameResults, []*schema.Column{
			{Name: "session_id", Type: field.TypeString, Unique: true},
			{Name: "game_type", Type: field.TypeString},
			{Name: "correct", Type: field.TypeInt},
			{Name: "total", Type: field.TypeInt},
			{Name: "accuracy", Type: field.TypeInt},
			{Name: "xp_awarded", Type: field.TypeInt},
			{Name: "skill_tags", Type: field.TypeString, Size: 2048, Default: "[]"},
		}, "game_type"),

		eventTable(tableSessionNotes, []*schema.Column{
			{Name: "session_id", Type: field.TypeString},
			{Name: "source", Type: field.TypeString},
			{Name: "text", Type: field.TypeString, Size: 4096},
		}, "session_id"),

		eventTable(tableLLMRequests, []*schema.Column{
			{Name: "provider", Type: field.TypeString},
			{Name: "model", Type: field.TypeString},
			{Name: "purpose", Type: field.TypeString},
			{Name: "input_tokens", Type: field.TypeInt, Default: 0},
			{Name: "output_tokens", Type: field.TypeInt, Default: 0},
			{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
			{Name: "success", Type: field.TypeBool},
			{Name: "error_message", Type: field.TypeString, Default: ""},
			{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
			{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
		}, "provider", "purpose", "success"),
	}
}

// migrate creates or updates every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables()...)
}
