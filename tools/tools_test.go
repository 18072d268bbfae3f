package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExecutor serves a fixed set of tools with canned outcomes.
type stubExecutor struct {
	names   []string
	content string
	errMsg  string
}

func (s *stubExecutor) Execute(_ context.Context, call ToolCall) (ToolResult, error) {
	return ToolResult{CallID: call.ID, Content: s.content, Error: s.errMsg}, nil
}

func (s *stubExecutor) ListTools() []ToolDefinition {
	defs := make([]ToolDefinition, len(s.names))
	for i, name := range s.names {
		defs[i] = ToolDefinition{Name: name, Description: "stub"}
	}
	return defs
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"alpha"}, content: "alpha output"}))
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"beta"}, content: "beta output"}))

	result, err := reg.Execute(context.Background(), ToolCall{ID: "c1", Name: "beta"})
	require.NoError(t, err)
	assert.Equal(t, "c1", result.CallID)
	assert.Equal(t, "beta output", result.Content)
	assert.False(t, result.Failed())
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"alpha"}}))

	result, err := reg.Execute(context.Background(), ToolCall{ID: "c2", Name: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "unknown tool")
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"alpha"}}))

	err := reg.Register(&stubExecutor{names: []string{"alpha"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"zeta", "alpha"}}))
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"mid"}}))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
}

// capturingRecorder collects records and signals when one arrives.
type capturingRecorder struct {
	mu      sync.Mutex
	records []ToolCallRecord
	done    chan struct{}
}

func newCapturingRecorder() *capturingRecorder {
	return &capturingRecorder{done: make(chan struct{}, 8)}
}

func (c *capturingRecorder) RecordToolCall(_ context.Context, record ToolCallRecord) {
	c.mu.Lock()
	c.records = append(c.records, record)
	c.mu.Unlock()
	c.done <- struct{}{}
}

func (c *capturingRecorder) wait(t *testing.T) ToolCallRecord {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tool call record")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[len(c.records)-1]
}

func TestRecordingExecutorSuccess(t *testing.T) {
	recorder := newCapturingRecorder()
	inner := &stubExecutor{names: []string{"alpha"}, content: "fine"}
	exec := NewRecordingExecutor(inner, recorder, slog.Default())

	result, err := exec.Execute(context.Background(), ToolCall{
		ID:        "c3",
		Name:      "alpha",
		Arguments: map[string]any{"key": "value"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Content)

	record := recorder.wait(t)
	assert.Equal(t, "c3", record.CallID)
	assert.Equal(t, "alpha", record.ToolName)
	assert.Equal(t, "success", record.Status)
	assert.Contains(t, record.Parameters, `"key":"value"`)
	assert.False(t, record.CompletedAt.Before(record.StartedAt))
}

func TestRecordingExecutorFaultResult(t *testing.T) {
	recorder := newCapturingRecorder()
	inner := &stubExecutor{names: []string{"alpha"}, errMsg: "model unavailable"}
	exec := NewRecordingExecutor(inner, recorder, nil)

	result, err := exec.Execute(context.Background(), ToolCall{ID: "c4", Name: "alpha"})
	require.NoError(t, err)
	assert.True(t, result.Failed())

	record := recorder.wait(t)
	assert.Equal(t, "error", record.Status)
	assert.Equal(t, "model unavailable", record.Error)
}

func TestRecordingExecutorTruncatesLongResult(t *testing.T) {
	recorder := newCapturingRecorder()
	inner := &stubExecutor{names: []string{"alpha"}, content: strings.Repeat("x", MaxRecordedResultLength+500)}
	exec := NewRecordingExecutor(inner, recorder, nil)

	result, err := exec.Execute(context.Background(), ToolCall{ID: "c5", Name: "alpha"})
	require.NoError(t, err)
	assert.Len(t, result.Content, MaxRecordedResultLength+500)

	record := recorder.wait(t)
	assert.Len(t, record.Result, MaxRecordedResultLength+3)
	assert.True(t, strings.HasSuffix(record.Result, "..."))
}

func TestTruncateJSON(t *testing.T) {
	assert.Equal(t, "{}", truncateJSON(nil, 100))

	long := truncateJSON(map[string]any{"k": strings.Repeat("v", 200)}, 50)
	assert.Len(t, long, 53)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestRegistryConcurrentExecute(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubExecutor{names: []string{"alpha"}, content: "ok"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := reg.Execute(context.Background(), ToolCall{ID: fmt.Sprintf("c%d", n), Name: "alpha"})
			assert.NoError(t, err)
			assert.Equal(t, "ok", result.Content)
		}(i)
	}
	wg.Wait()
}
