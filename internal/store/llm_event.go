package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var llmRequestColumns = withEventColumns(
	"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
	"success", "error_message", "request_body", "response_body",
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.insert(ctx, tableLLMRequests,
		[]string{
			"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
			"success", "error_message", "request_body", "response_body",
		},
		[]any{
			data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs,
			data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
		},
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error) {
	var out []LLMRequestRecord
	if err := r.scan(ctx, selectEvents(tableLLMRequests, llmRequestColumns, opts), &out); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error) {
	sel := builder().Select(llmRequestColumns...).
		From(entsql.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id))

	var out []LLMRequestRecord
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query LLM event: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	sel := builder().Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(entsql.Table(tableLLMRequests)).
		GroupBy("purpose").
		OrderBy("purpose")

	var out []LLMUsage
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	return out, nil
}
