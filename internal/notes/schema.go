package notes

import "github.com/abhisek/wiggles/internal/llm"

// NoteSchema is the structured output asked of the model.
var NoteSchema = &llm.Schema{
	Name:        "parent-note",
	Description: "A short note for a parent about one therapy game session",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"note": map[string]any{
				"type":        "string",
				"description": "Two or three warm, plain sentences for a parent",
				"minLength":   1,
				"maxLength":   600,
			},
		},
		"required":             []any{"note"},
		"additionalProperties": false,
	},
}
