// Package financial provides the financial-pattern evidence tool. It asks a
// reasoning model to assess transaction-level plausibility from the document
// context available in the conversation.
package financial

import (
	"context"
	"fmt"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/model"
	"github.com/c360studio/docsentinel/tools"
)

// ToolName is the registered name of the financial analysis tool.
const ToolName = "financial_analysis"

// analysisRubric is the fixed six-point checklist for transaction review.
const analysisRubric = `Analyze the financial patterns in this %s (file: %s, %.1f KB).

Evaluate:
1. Income Patterns: Are deposits regular and from plausible sources?
2. Expense Realism: Do spending amounts and categories look realistic?
3. Red Flag Transactions: Round-number deposits, duplicate entries, or out-of-place transfers
4. Balance Trends: Do running balances reconcile with the transactions shown?
5. Overdrafts and Fees: Frequency and handling of negative balances
6. Transaction Descriptions: Do merchant names and memo lines look legitimate?

Note: transaction text must come from the document itself; if no text content
is available, state that OCR or text extraction would be required and assess
only what can be inferred from the metadata above.

Provide a financial pattern analysis with specific observations.`

type completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Executor implements the financial analysis tool for a single bound document.
type Executor struct {
	doc document.Document
	llm completer
}

// NewExecutor creates a financial analysis executor bound to doc.
func NewExecutor(doc document.Document, client completer) *Executor {
	return &Executor{doc: doc, llm: client}
}

// Execute runs the analysis. Model faults are absorbed into an error result.
func (e *Executor) Execute(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	if call.Name != ToolName {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("unknown tool: %s", call.Name),
		}, fmt.Errorf("unknown tool: %s", call.Name)
	}

	prompt := fmt.Sprintf(analysisRubric, e.doc.Type, e.doc.Filename, e.doc.SizeKB())

	resp, err := e.llm.Complete(ctx, llm.Request{
		Capability: model.CapabilityAnalysis.String(),
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("Error during financial analysis: %v", err),
		}, nil
	}

	return tools.ToolResult{CallID: call.ID, Content: resp.Content}, nil
}

// ListTools returns the financial analysis tool definition.
func (e *Executor) ListTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		{
			Name: ToolName,
			Description: "Analyzes financial patterns, transaction consistency, and numerical accuracy " +
				"to detect anomalies like unrealistic amounts, impossible balances, or suspicious patterns.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
