package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/tools"
)

func TestSanitizeFilenameStable(t *testing.T) {
	first := SanitizeFilename("march_statement.pdf")
	second := SanitizeFilename("march_statement.pdf")
	assert.Equal(t, first, second)

	stem := strings.TrimSuffix(first, ".pdf")
	assert.Len(t, stem, 8)
	assert.True(t, strings.HasSuffix(first, ".pdf"))
}

func TestSanitizeFilenameHidesStem(t *testing.T) {
	sanitized := SanitizeFilename("john_doe_chase_statement.pdf")
	assert.NotContains(t, sanitized, "john")
	assert.NotContains(t, sanitized, "chase")
}

func TestSanitizeFilenameDistinctStems(t *testing.T) {
	assert.NotEqual(t, SanitizeFilename("alpha.png"), SanitizeFilename("beta.png"))
}

func TestSanitizeFilenameNormalizesExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(SanitizeFilename("scan.JPEG"), ".jpeg"))
}

func TestNewEventSanitizes(t *testing.T) {
	event := NewEvent(EventDocumentUpload, "abc123", "secret_name.pdf", map[string]any{"size": 42})
	assert.Equal(t, EventDocumentUpload, event.EventType)
	assert.Equal(t, "abc123", event.DocumentHash)
	assert.NotContains(t, event.Filename, "secret")
	assert.False(t, event.Timestamp.IsZero())
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, NewEvent(EventDocumentUpload, "h1", "a.pdf", nil)))
	require.NoError(t, sink.Write(ctx, NewEvent(EventDocumentDeletion, "h1", "a.pdf", map[string]any{"reason": "retention"})))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.Len(t, events, 2)
	assert.Equal(t, EventDocumentUpload, events[0].EventType)
	assert.Equal(t, "retention", events[1].Metadata["reason"])
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Write(context.Background(), NewEvent(EventDocumentAnalysis, "h2", "b.png", nil)))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "h2", events[0].DocumentHash)
}

func TestRecorderLLMCall(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink, "dochash", nil)

	recorder.RecordLLMCall(context.Background(), llm.CallRecord{
		RequestID:    "r1",
		Capability:   "analysis",
		Model:        "gpt-4o",
		Provider:     "openai",
		PromptTokens: 100,
		OutputTokens: 40,
		StartedAt:    time.Now().UTC(),
		DurationMs:   250,
	})

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventLLMCall, events[0].EventType)
	assert.Equal(t, "dochash", events[0].DocumentHash)
	assert.Equal(t, "gpt-4o", events[0].Metadata["model"])
}

func TestRecorderToolCall(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink, "dochash", nil)

	recorder.RecordToolCall(context.Background(), tools.ToolCallRecord{
		CallID:     "c1",
		ToolName:   "analyze_metadata",
		Status:     "error",
		Error:      "boom",
		StartedAt:  time.Now().UTC(),
		DurationMs: 12,
	})

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventToolCall, events[0].EventType)
	assert.Equal(t, "boom", events[0].Metadata["error"])
}
