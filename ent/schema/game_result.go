package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GameResult is a completed game logged by the progress service. There is
// at most one per session.
type GameResult struct {
	ent.Schema
}

func (GameResult) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (GameResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Unique(),
		field.String("game_type").
			NotEmpty(),
		field.Int("correct"),
		field.Int("total"),
		field.Int("accuracy").
			Comment("Whole percent, 0 to 100"),
		field.Int("xp_awarded"),
		field.Strings("skill_tags").
			Comment("Catalog skill tags, stored as a JSON array"),
	}
}

func (GameResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("game_type"),
	}
}
