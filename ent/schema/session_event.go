package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records session lifecycle events (start, complete, cancel,
// replay).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("game_type").
			NotEmpty().
			Comment("Catalog game id"),
		field.String("action").
			NotEmpty().
			Comment("start, complete, cancel or replay"),
		field.Int("score").
			Default(0).
			Comment("Hits so far"),
		field.Int("total_rounds").
			Default(0).
			Comment("Rounds in the session"),
		field.Int64("duration_ms").
			Default(0).
			Comment("Time since start (on complete and cancel)"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
