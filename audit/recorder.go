package audit

import (
	"context"
	"log/slog"

	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/tools"
)

// Additional event types emitted by the Recorder. These capture the model
// and tool activity inside an analysis.
const (
	EventLLMCall  EventType = "llm_call"
	EventToolCall EventType = "tool_call"
)

// Recorder bridges the LLM client and tool executor recording hooks onto an
// audit sink. Sink failures are logged and swallowed; recording never
// disturbs an analysis in flight.
type Recorder struct {
	sink   Sink
	hash   string
	logger *slog.Logger
}

// NewRecorder creates a recorder that attributes records to the document
// with the given content hash.
func NewRecorder(sink Sink, documentHash string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{sink: sink, hash: documentHash, logger: logger}
}

// RecordLLMCall implements llm.CallRecorder.
func (r *Recorder) RecordLLMCall(ctx context.Context, record llm.CallRecord) {
	event := Event{
		Timestamp:    record.StartedAt,
		EventType:    EventLLMCall,
		DocumentHash: r.hash,
		Metadata: map[string]any{
			"request_id":    record.RequestID,
			"capability":    record.Capability,
			"model":         record.Model,
			"provider":      record.Provider,
			"prompt_tokens": record.PromptTokens,
			"output_tokens": record.OutputTokens,
			"duration_ms":   record.DurationMs,
			"retries":       record.Retries,
		},
	}
	if record.Error != "" {
		event.Metadata["error"] = record.Error
	}

	if err := r.sink.Write(ctx, event); err != nil {
		r.logger.Warn("audit sink write failed", "event_type", event.EventType, "error", err)
	}
}

// RecordToolCall implements tools.ToolCallRecorder.
func (r *Recorder) RecordToolCall(ctx context.Context, record tools.ToolCallRecord) {
	event := Event{
		Timestamp:    record.StartedAt,
		EventType:    EventToolCall,
		DocumentHash: r.hash,
		Metadata: map[string]any{
			"call_id":     record.CallID,
			"tool_name":   record.ToolName,
			"status":      record.Status,
			"duration_ms": record.DurationMs,
		},
	}
	if record.Error != "" {
		event.Metadata["error"] = record.Error
	}

	if err := r.sink.Write(ctx, event); err != nil {
		r.logger.Warn("audit sink write failed", "event_type", event.EventType, "error", err)
	}
}
