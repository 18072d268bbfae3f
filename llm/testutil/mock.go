// Package testutil provides test utilities for the llm package.
// It includes mock implementations for testing LLM client interactions.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/docsentinel/llm"
)

// MockCompleter is a thread-safe mock LLM completer for testing.
// It returns configured responses in sequence and captures every request so
// tests can assert on prompts, capabilities, and image attachments.
//
// Usage:
//
//	mock := &testutil.MockCompleter{
//	    Responses: []*llm.Response{
//	        {Content: `{"result": "success"}`, Model: "test-model"},
//	    },
//	}
type MockCompleter struct {
	mu            sync.Mutex
	requests      []llm.Request
	Responses     []*llm.Response // Responses to return in sequence
	Err           error           // Error to return (takes precedence over Responses)
	ErrAfter      int             // If > 0, return Err only from call number ErrAfter on
	responseIndex int
	callCount     int
}

// Complete returns the next configured response, or Err if set.
func (m *MockCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.requests = append(m.requests, req)

	if m.Err != nil && (m.ErrAfter == 0 || m.callCount >= m.ErrAfter) {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	// Repeat the last response once the sequence is exhausted so bounded
	// loops can be driven past the configured responses.
	if len(m.Responses) > 0 {
		return m.Responses[len(m.Responses)-1], nil
	}

	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// CallCount returns the number of times Complete() was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of all captured requests.
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent captured request, or nil.
func (m *MockCompleter) LastRequest() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// Reset clears captured state so the mock can be reused across cases.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.requests = nil
}
