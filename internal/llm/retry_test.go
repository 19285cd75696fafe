package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	m := NewMock(
		MockResponse{Err: &Error{Kind: KindRateLimited, Provider: "mock"}},
		MockResponse{Err: &Error{Kind: KindUnavailable, Provider: "mock"}},
		MockResponse{Content: json.RawMessage(`"done"`)},
	)
	resp, err := WithRetry(m, fastRetry, nil).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"done"` || len(m.Calls()) != 3 {
		t.Fatalf("content %s after %d calls", resp.Content, len(m.Calls()))
	}
}

func TestRetryStopsOnPermanentErrors(t *testing.T) {
	for _, kind := range []Kind{KindTruncated, KindRejected} {
		t.Run(kind.String(), func(t *testing.T) {
			m := NewMock(MockResponse{Err: &Error{Kind: kind}}, MockResponse{Content: json.RawMessage(`1`)})
			_, err := WithRetry(m, fastRetry, nil).Generate(context.Background(), Request{})
			if got, _ := KindOf(err); got != kind {
				t.Fatalf("err = %v", err)
			}
			if len(m.Calls()) != 1 {
				t.Fatalf("calls = %d", len(m.Calls()))
			}
		})
	}
}

func TestRetryInvalidOnlyOnce(t *testing.T) {
	invalid := MockResponse{Err: &Error{Kind: KindInvalid}}
	m := NewMock(invalid, invalid, MockResponse{Content: json.RawMessage(`1`)})
	_, err := WithRetry(m, fastRetry, nil).Generate(context.Background(), Request{})
	if got, _ := KindOf(err); got != KindInvalid {
		t.Fatalf("err = %v", err)
	}
	if len(m.Calls()) != 2 {
		t.Fatalf("calls = %d", len(m.Calls()))
	}
}

func TestRetryHonoursContext(t *testing.T) {
	m := NewMock(MockResponse{Err: &Error{Kind: KindUnavailable}}, MockResponse{Content: json.RawMessage(`1`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1}
	_, err := WithRetry(m, slow, nil).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestBackoffUsesRetryAfter(t *testing.T) {
	r := WithRetry(NewMock(), fastRetry, nil).(*retrying)
	got := r.backoff(0, &Error{Kind: KindRateLimited, RetryAfter: 3 * time.Second})
	if got != 3*time.Second {
		t.Fatalf("backoff = %v", got)
	}
	if got := r.backoff(5, &Error{Kind: KindUnavailable}); got > time.Duration(float64(fastRetry.MaxWait)*1.2)+1 {
		t.Fatalf("backoff exceeded cap: %v", got)
	}
}
