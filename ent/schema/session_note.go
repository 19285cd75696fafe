package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionNote is the parent-facing note written after a session.
type SessionNote struct {
	ent.Schema
}

func (SessionNote) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionNote) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.String("source").
			Comment("llm or template"),
		field.Text("text"),
	}
}

func (SessionNote) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
