package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// MaxRecordedParamsLength is the max length for serialized parameters stored in a record.
const MaxRecordedParamsLength = 1000

// MaxRecordedResultLength is the max length for result content stored in a record.
const MaxRecordedResultLength = 2000

// ToolCallRecord captures a single tool execution for audit purposes.
type ToolCallRecord struct {
	CallID      string    `json:"call_id"`
	ToolName    string    `json:"tool_name"`
	Parameters  string    `json:"parameters"`
	Result      string    `json:"result"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// ToolCallRecorder receives tool call records. Implementations swallow their
// own errors; recording never affects tool execution.
type ToolCallRecorder interface {
	RecordToolCall(ctx context.Context, record ToolCallRecord)
}

// RecordingExecutor wraps an Executor and records each call to an injected
// recorder.
type RecordingExecutor struct {
	inner    Executor
	recorder ToolCallRecorder
	logger   *slog.Logger
}

// NewRecordingExecutor wraps an executor with tool call recording.
func NewRecordingExecutor(inner Executor, recorder ToolCallRecorder, logger *slog.Logger) *RecordingExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingExecutor{
		inner:    inner,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute runs the underlying tool executor and records the call.
func (r *RecordingExecutor) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	startedAt := time.Now()

	result, execErr := r.inner.Execute(ctx, call)

	completedAt := time.Now()

	// Record asynchronously to avoid slowing down tool execution.
	go r.recordCall(call, result, execErr, startedAt, completedAt)

	return result, execErr
}

// ListTools delegates to the inner executor.
func (r *RecordingExecutor) ListTools() []ToolDefinition {
	return r.inner.ListTools()
}

func (r *RecordingExecutor) recordCall(call ToolCall, result ToolResult, execErr error, startedAt, completedAt time.Time) {
	if r.recorder == nil {
		return
	}

	status := "success"
	var errMsg string
	if execErr != nil {
		status = "error"
		errMsg = execErr.Error()
	} else if result.Error != "" {
		status = "error"
		errMsg = result.Error
	}

	resultPreview := result.Content
	if len(resultPreview) > MaxRecordedResultLength {
		resultPreview = resultPreview[:MaxRecordedResultLength] + "..."
	}

	record := ToolCallRecord{
		CallID:      call.ID,
		ToolName:    call.Name,
		Parameters:  truncateJSON(call.Arguments, MaxRecordedParamsLength),
		Result:      resultPreview,
		Status:      status,
		Error:       errMsg,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.recorder.RecordToolCall(ctx, record)
}

// truncateJSON marshals a map to JSON and truncates to maxLen.
func truncateJSON(m map[string]any, maxLen int) string {
	if m == nil {
		return "{}"
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}

	s := string(data)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
