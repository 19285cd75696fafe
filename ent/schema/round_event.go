package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RoundEvent records one resolved round attempt.
type RoundEvent struct {
	ent.Schema
}

func (RoundEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (RoundEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.Int("round_index").
			Comment("Zero-based round number"),
		field.Int("attempt").
			Comment("One-based attempt within the round"),
		field.String("outcome").
			Comment("hit, miss, too_early, too_late or timeout"),
		field.Int64("response_ms").
			Default(0).
			Comment("Response time since the window opened, 0 on timeout"),
		field.Bool("timed_out").
			Default(false),
	}
}

func (RoundEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
