// Package llm talks to hosted language models. Every provider takes a
// single-turn Request and, when a Schema is set, returns JSON that has been
// validated against it.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider name ("anthropic", "openai", ...).
	Name() string

	// Model is the model requests are sent to.
	Model() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema, when set, asks for structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // zero leaves the provider default
}

// Schema is a named JSON Schema.
type Schema struct {
	Name        string // kebab-case, e.g. "parent-note"
	Description string
	Definition  map[string]any
}

// Response is a provider's answer.
type Response struct {
	// Content is the validated JSON when the request had a schema, and the
	// raw text otherwise.
	Content json.RawMessage

	Usage Usage
	Model string

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

type purposeKey struct{}

// WithPurpose labels the requests made with ctx, e.g. "session-note".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
