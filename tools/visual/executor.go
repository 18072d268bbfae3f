// Package visual provides the visual-inspection evidence tool. It sends the
// bound document image to a vision-capable model with a fixed inspection
// rubric. Direct PDF inspection is a declared limitation, not a failure.
package visual

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/model"
	"github.com/c360studio/docsentinel/tools"
)

// ToolName is the registered name of the visual inspection tool.
const ToolName = "visual_inspection"

// pdfLimitationNote is returned when the agent asks for visual inspection of
// a PDF; there is no rasterization step in this pipeline.
const pdfLimitationNote = `{"note": "PDF visual inspection requires conversion to image. For best results, upload as PNG/JPG.", "visual_analysis": "Unable to perform visual inspection on PDF directly."}`

// inspectionRubric is the fixed seven-point checklist sent to the vision model.
const inspectionRubric = `Analyze this %s image for signs of authenticity or fraud.

Look for:
1. Visual Consistency: Are fonts, sizes, and spacing consistent throughout?
2. Professional Quality: Does it look professionally generated or hand-edited?
3. Standard Elements: Are typical banking/financial elements present (logos, routing numbers, formatting)?
4. Editing Artifacts: Signs of copy-paste, white-out, or digital manipulation
5. Screenshot Indicators: Is this a screenshot vs. original document?
6. Text Quality: OCR artifacts, pixelation, or unusual rendering
7. Suspicious Patterns: Whited-out sections, alignment issues, color inconsistencies

Provide a detailed visual analysis with specific observations.`

// completer is the subset of the LLM client the tool needs.
// Extracted as an interface to enable testing with mock responses.
type completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Executor implements the visual inspection tool for a single bound document.
type Executor struct {
	doc document.Document
	llm completer
}

// NewExecutor creates a visual inspection executor bound to doc.
func NewExecutor(doc document.Document, client completer) *Executor {
	return &Executor{doc: doc, llm: client}
}

// Execute runs the inspection. Model faults are absorbed into an error
// result so the orchestrator can continue with other evidence.
func (e *Executor) Execute(ctx context.Context, call tools.ToolCall) (tools.ToolResult, error) {
	if call.Name != ToolName {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("unknown tool: %s", call.Name),
		}, fmt.Errorf("unknown tool: %s", call.Name)
	}

	if e.doc.Ext() == ".pdf" {
		return tools.ToolResult{CallID: call.ID, Content: pdfLimitationNote}, nil
	}

	resp, err := e.llm.Complete(ctx, llm.Request{
		Capability: model.CapabilityVision.String(),
		Messages: []llm.Message{
			{
				Role:    "user",
				Content: fmt.Sprintf(inspectionRubric, e.doc.Type),
				Images:  []string{dataURL(e.doc)},
			},
		},
	})
	if err != nil {
		return tools.ToolResult{
			CallID: call.ID,
			Error:  fmt.Sprintf("Error during visual inspection: %v", err),
		}, nil
	}

	return tools.ToolResult{CallID: call.ID, Content: resp.Content}, nil
}

// ListTools returns the visual inspection tool definition.
func (e *Executor) ListTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		{
			Name: ToolName,
			Description: "Performs detailed visual inspection of the document using vision AI to detect " +
				"inconsistencies, alterations, suspicious patterns, or visual fraud indicators.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// dataURL encodes the document bytes as a data URL for the vision request.
func dataURL(doc document.Document) string {
	mediaType := "image/jpeg"
	if doc.Ext() == ".png" {
		mediaType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(doc.Data))
}
