package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner  Provider
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry retries rate limits and unavailability with exponential
// backoff and jitter. Invalid output is retried once; truncated and
// rejected requests are not retried.
func WithRetry(p Provider, cfg RetryConfig, logger *slog.Logger) Provider {
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &retrying{inner: p, cfg: cfg, logger: logger}
}

func (r *retrying) Name() string  { return r.inner.Name() }
func (r *retrying) Model() string { return r.inner.Model() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false

	var lastErr error
	for attempt := range attempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err, &invalidSeen) || attempt == attempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		r.logger.Debug("llm retry", "provider", r.inner.Name(), "attempt", attempt+1, "wait", wait, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	switch kind {
	case KindTruncated, KindRejected:
		return false
	case KindInvalid:
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}

func (r *retrying) backoff(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	if r.cfg.MaxWait > 0 {
		wait = min(wait, float64(r.cfg.MaxWait))
	}
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
