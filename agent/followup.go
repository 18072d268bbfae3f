package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/model"
)

// MinFollowUpQuestions and MaxFollowUpQuestions bound the question set
// attached to a verdict.
const (
	MinFollowUpQuestions = 3
	MaxFollowUpQuestions = 5
)

// fallbackQuestions is the fixed set used whenever generation fails or
// yields nothing usable.
var fallbackQuestions = []string{
	"Can you provide the original PDF downloaded directly from your bank's online portal?",
	"Can you provide statements for the two preceding months from the same account?",
	"Can you provide a contact at the issuing institution who can verify this document?",
}

// FollowUpGenerator produces applicant-facing verification questions from a
// completed verdict.
type FollowUpGenerator struct {
	llm     completer
	logger  *slog.Logger
	metrics *Metrics
}

// NewFollowUpGenerator creates a generator backed by the given completer.
func NewFollowUpGenerator(client completer, logger *slog.Logger, metrics *Metrics) *FollowUpGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpGenerator{llm: client, logger: logger, metrics: metrics}
}

// Generate asks a fast model for verification questions tailored to the
// verdict. It never fails: any generation or parse problem yields the fixed
// fallback set.
func (g *FollowUpGenerator) Generate(ctx context.Context, doc document.Document, verdict *Verdict) []string {
	if verdict == nil {
		return g.fallback("nil verdict")
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		Capability: model.CapabilityFast.String(),
		Messages: []llm.Message{
			{Role: "user", Content: followUpPrompt(doc, verdict)},
		},
	})
	if err != nil {
		return g.fallback(err.Error())
	}

	raw := llm.ExtractJSONArray(resp.Content)
	if raw == "" {
		return g.fallback("no JSON array in response")
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return g.fallback(err.Error())
	}

	questions = cleanQuestions(questions)
	if len(questions) < MinFollowUpQuestions {
		return g.fallback(fmt.Sprintf("only %d usable questions", len(questions)))
	}
	if len(questions) > MaxFollowUpQuestions {
		questions = questions[:MaxFollowUpQuestions]
	}
	return questions
}

func (g *FollowUpGenerator) fallback(reason string) []string {
	g.logger.Warn("follow-up generation fell back to fixed questions", "reason", reason)
	g.metrics.observeFallback()
	out := make([]string, len(fallbackQuestions))
	copy(out, fallbackQuestions)
	return out
}

// cleanQuestions drops blank entries and trims whitespace.
func cleanQuestions(questions []string) []string {
	out := questions[:0]
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}

func followUpPrompt(doc document.Document, verdict *Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A %s (%s) was analyzed for fraud risk.\n", doc.Type, doc.Filename)
	if verdict.AuthenticityScore != nil {
		fmt.Fprintf(&b, "Authenticity score: %d/100.\n", *verdict.AuthenticityScore)
	}
	if len(verdict.RedFlags) > 0 {
		fmt.Fprintf(&b, "Red flags: %s.\n", strings.Join(verdict.RedFlags, "; "))
	}
	if len(verdict.PositiveSignals) > 0 {
		fmt.Fprintf(&b, "Positive signals: %s.\n", strings.Join(verdict.PositiveSignals, "; "))
	}
	fmt.Fprintf(&b, "Recommendation: %s.\n\n", verdict.Recommendation)

	fmt.Fprintf(&b, "Write %d to %d follow-up questions the reviewer should ask the applicant to verify this document. ", MinFollowUpQuestions, MaxFollowUpQuestions)
	b.WriteString("Each question must be specific to the findings above and answerable by the applicant. ")
	b.WriteString(`Respond with a JSON array of strings only, for example: ["question one", "question two"]`)

	return b.String()
}
