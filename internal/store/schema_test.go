package store

import (
	"testing"

	"entgo.io/ent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entschema "github.com/abhisek/wiggles/ent/schema"
)

type entity interface {
	Fields() []ent.Field
	Indexes() []ent.Index
}

// The ent schema documents the tables; keep both in step.
func TestTablesMatchEntSchema(t *testing.T) {
	entities := map[string]entity{
		tableSessionEvents: entschema.SessionEvent{},
		tableRoundEvents:   entschema.RoundEvent{},
		tableGameResults:   entschema.GameResult{},
		tableSessionNotes:  entschema.SessionNote{},
		tableLLMRequests:   entschema.LLMRequestEvent{},
	}

	var mixinFields []string
	for _, f := range (entschema.EventMixin{}).Fields() {
		mixinFields = append(mixinFields, f.Descriptor().Name)
	}

	got := tables()
	require.Len(t, got, len(entities))
	for _, table := range got {
		e, ok := entities[table.Name]
		require.True(t, ok, table.Name)

		want := append([]string{"id"}, mixinFields...)
		unique := map[string]bool{"sequence": true}
		for _, f := range e.Fields() {
			d := f.Descriptor()
			want = append(want, d.Name)
			if d.Unique {
				unique[d.Name] = true
			}
		}
		var cols []string
		for _, c := range table.Columns {
			cols = append(cols, c.Name)
			assert.Equal(t, unique[c.Name], c.Unique, "%s.%s unique", table.Name, c.Name)
		}
		assert.Equal(t, want, cols, table.Name)

		wantIdx := []string{"timestamp"}
		for _, idx := range e.Indexes() {
			wantIdx = append(wantIdx, idx.Descriptor().Fields...)
		}
		var gotIdx []string
		for _, idx := range table.Indexes {
			for _, c := range idx.Columns {
				gotIdx = append(gotIdx, c.Name)
			}
		}
		assert.Equal(t, wantIdx, gotIdx, table.Name)
	}
}
