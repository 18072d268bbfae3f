package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Sink receives audit events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// FileSink appends events as JSON lines to a local file.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the audit log at path for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileSink{file: f}, nil
}

// Write appends one event as a JSON line.
func (s *FileSink) Write(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// MemorySink buffers events in memory. Intended for tests and for running
// with auditing effectively disabled.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write buffers the event.
func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Close is a no-op.
func (s *MemorySink) Close() error { return nil }

// Events returns a copy of the buffered events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
