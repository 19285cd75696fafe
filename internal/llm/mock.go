package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one canned answer.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Mock replays canned responses in order and records requests. Schema
// validation applies to canned content as it would to a real provider.
type Mock struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

// NewMock returns a Mock that answers with responses in order.
func NewMock(responses ...MockResponse) *Mock {
	return &Mock{responses: responses}
}

func (m *Mock) Name() string  { return ProviderMock }
func (m *Mock) Model() string { return "mock" }

// Generate pops the next response. An empty queue is reported as an
// unavailable provider.
func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &Error{Kind: KindUnavailable, Provider: ProviderMock, Err: errors.New("no canned response")}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return finish(ProviderMock, req, &Response{Content: next.Content, Usage: next.Usage, Model: "mock"})
}

// Add queues more responses.
func (m *Mock) Add(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// Calls returns the requests received so far.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
