package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies provider failures.
type Kind int

const (
	KindUnavailable Kind = iota // network failure or 5xx
	KindRateLimited             // 429
	KindInvalid                 // output did not match the schema
	KindTruncated               // output hit MaxTokens
	KindRejected                // 4xx other than 429
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Error is returned by every provider.
type Error struct {
	Kind       Kind
	Provider   string
	RetryAfter time.Duration   // rate limits only
	Content    json.RawMessage // invalid or truncated output
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err if it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// statusError maps an HTTP status reported by an SDK to an *Error.
func statusError(provider string, status int, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Provider: provider, Err: err}
	case status >= 400 && status < 500:
		return &Error{Kind: KindRejected, Provider: provider, Err: err}
	default:
		return &Error{Kind: KindUnavailable, Provider: provider, Err: err}
	}
}
