package agent

import (
	"fmt"
	"strings"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/tools"
)

// systemPrompt frames the analysis task for the reasoning model.
const systemPrompt = `You are an expert document fraud analyst specializing in financial document verification.
You assess whether submitted documents (bank statements, tax returns, pay stubs, investment statements)
are authentic or altered. You reason step by step, gather evidence with the tools provided, and only
commit to a verdict once the evidence supports it. You are skeptical but fair: absence of red flags is
itself evidence, and a single weak signal does not condemn a document.`

// decisionProtocol tells the model how to choose between requesting a tool
// and delivering a verdict. The loop parses exactly this shape.
const decisionProtocol = `Respond with a single JSON object and nothing else.

To gather evidence, request one tool:
{"action": "tool", "tool": "<tool name>", "arguments": {}}

To deliver your final assessment:
{"action": "final", "authenticity_score": <integer 0-100, 100 = certainly authentic>, "red_flags": ["..."], "positive_signals": ["..."], "recommendation": "approve" | "review" | "request_more" | "deny", "narrative": "<your assessment>"}`

// parseFeedback is sent back when a response could not be parsed as a
// decision, giving the model a chance to correct itself.
const parseFeedback = `Your previous response could not be parsed. It must be a single JSON object matching the decision format exactly, with no surrounding prose.`

// initialPrompt composes the opening user message: the analysis task, the
// document context, the available tools, and the decision protocol.
func initialPrompt(doc document.Document, defs []tools.ToolDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this %s for authenticity and fraud risk.\n\n", doc.Type)
	fmt.Fprintf(&b, "Document: %s (%.1f KB)\nSHA-256: %s\n\n", doc.Filename, doc.SizeKB(), doc.Hash())

	b.WriteString("Available tools:\n")
	for _, def := range defs {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
	}

	b.WriteString("\nUse the tools to gather evidence before deciding. ")
	b.WriteString("Weigh red flags against positive signals and deliver a final assessment.\n\n")
	b.WriteString(decisionProtocol)

	return b.String()
}

// toolResultMessage renders a tool outcome for the conversation history.
func toolResultMessage(call tools.ToolCall, result tools.ToolResult) string {
	if result.Failed() {
		return fmt.Sprintf("Tool %s failed: %s\n\nContinue with the remaining evidence or deliver your assessment.\n\n%s",
			call.Name, result.Error, decisionProtocol)
	}
	return fmt.Sprintf("Result of %s:\n%s\n\n%s", call.Name, result.Content, decisionProtocol)
}
