package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/wiggles/internal/store"
)

type recording struct {
	inner  Provider
	repo   store.EventRepo
	logger *slog.Logger
}

// WithRecording stores every request, successful or not, as an LLM event.
// A failed write is logged and does not fail the request.
func WithRecording(p Provider, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &recording{inner: p, repo: repo, logger: logger}
}

func (r *recording) Name() string  { return r.inner.Name() }
func (r *recording) Model() string { return r.inner.Model() }

func (r *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    r.inner.Name(),
		Model:       r.inner.Model(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describe(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			data.ResponseBody = string(e.Content)
		}
	}

	// Record even if the caller gave up.
	if werr := r.repo.AppendLLMRequest(context.WithoutCancel(ctx), data); werr != nil {
		r.logger.Warn("llm event write failed", "err", werr)
	}
	r.logger.Debug("llm request",
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"latency_ms", data.LatencyMs,
		"ok", data.Success)
	return resp, err
}

func describe(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	fmt.Fprintf(&b, "[user]\n%s\n", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "\n[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
