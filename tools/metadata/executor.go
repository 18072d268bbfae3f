// Package metadata provides the metadata-signal evidence tool. It wraps the
// deterministic signal extractor and serializes the resulting bundle for the
// reasoning agent.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/signals"
	"github.com/c360studio/docsentinel/tools"
)

// ToolName is the registered name of the metadata analysis tool.
const ToolName = "analyze_metadata"

// Executor implements the metadata analysis tool for a single bound document.
type Executor struct {
	doc document.Document
}

// NewExecutor creates a metadata executor bound to doc.
func NewExecutor(doc document.Document) *Executor {
	return &Executor{doc: doc}
}

// Execute runs the metadata tool. Extraction faults are already absorbed by
// the signal extractor; serialization faults become an error result.
func (e *Executor) Execute(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	if call.Name != ToolName {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("unknown tool: %s", call.Name),
		}, fmt.Errorf("unknown tool: %s", call.Name)
	}

	if err := ctx.Err(); err != nil {
		return tools.ToolResult{CallID: call.ID, Error: err.Error()}, err
	}

	bundle := signals.Extract(e.doc.Data, e.doc.Filename)

	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("Error analyzing metadata: %v", err),
		}, nil
	}

	return tools.ToolResult{CallID: call.ID, Content: string(payload)}, nil
}

// ListTools returns the metadata tool definition.
func (e *Executor) ListTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		{
			Name: ToolName,
			Description: "Analyzes document metadata to detect signs of tampering, editing, or " +
				"fraudulent creation. Returns red flags and positive signals about document authenticity.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
