// Package agent implements the document analysis orchestrator: a bounded
// reasoning loop that validates a document, lets an LLM request evidence
// tools, and synthesizes a structured verdict.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/model"
	"github.com/c360studio/docsentinel/tools"
	"github.com/c360studio/docsentinel/tools/financial"
	"github.com/c360studio/docsentinel/tools/metadata"
	"github.com/c360studio/docsentinel/tools/visual"
)

const (
	// DefaultMaxIterations bounds the reasoning loop.
	DefaultMaxIterations = 5

	// consecutiveFailureLimit aborts the analysis when the agent keeps
	// retrying a tool that keeps failing.
	consecutiveFailureLimit = 2
)

// loop states. The loop always moves forward: a decision either executes a
// tool (and returns to awaiting) or synthesizes a verdict.
type loopState int

const (
	stateAwaitingDecision loopState = iota
	stateExecutingTool
	stateSynthesizing
	stateDone
	stateFailed
)

// completer is the LLM surface the analyst needs.
type completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// decision is the parsed shape of one model turn.
type decision struct {
	Action    string         `json:"action"`
	Tool      string         `json:"tool,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`

	AuthenticityScore *int     `json:"authenticity_score,omitempty"`
	RedFlags          []string `json:"red_flags,omitempty"`
	PositiveSignals   []string `json:"positive_signals,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	Narrative         string   `json:"narrative,omitempty"`
}

// Analyst runs the end-to-end analysis for one document at a time. It is
// safe for concurrent use; per-document state lives in the Analyze call.
type Analyst struct {
	llm       completer
	validator *document.Validator
	recorder  tools.ToolCallRecorder
	logger    *slog.Logger
	metrics   *Metrics

	maxIterations int
	temperature   *float64
}

// AnalystOption configures an Analyst.
type AnalystOption func(*Analyst)

// WithValidator replaces the default document validator.
func WithValidator(v *document.Validator) AnalystOption {
	return func(a *Analyst) { a.validator = v }
}

// WithToolCallRecorder records every tool invocation for audit.
func WithToolCallRecorder(r tools.ToolCallRecorder) AnalystOption {
	return func(a *Analyst) { a.recorder = r }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) AnalystOption {
	return func(a *Analyst) { a.logger = logger }
}

// WithMetrics attaches instrumentation.
func WithMetrics(m *Metrics) AnalystOption {
	return func(a *Analyst) { a.metrics = m }
}

// WithMaxIterations overrides the reasoning loop bound.
func WithMaxIterations(n int) AnalystOption {
	return func(a *Analyst) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithTemperature sets the sampling temperature for reasoning turns.
func WithTemperature(temp float64) AnalystOption {
	return func(a *Analyst) { a.temperature = &temp }
}

// NewAnalyst creates an analyst backed by the given LLM completer.
func NewAnalyst(client completer, opts ...AnalystOption) *Analyst {
	a := &Analyst{
		llm:           client,
		validator:     document.NewValidator(),
		logger:        slog.Default(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze validates the document, runs the bounded reasoning loop, and
// returns a verdict. A degraded verdict (RecommendationUnknown) is returned
// when the loop exhausts its iterations without a final decision; an error
// only when no analysis was possible at all.
func (a *Analyst) Analyze(ctx context.Context, doc document.Document) (*Verdict, error) {
	if result := a.validator.Validate(doc.Data, doc.Filename); !result.Valid {
		a.metrics.observeAnalysis("rejected")
		return nil, &ValidationError{Code: string(result.Code), Reason: result.Reason}
	}

	registry, err := a.buildRegistry(doc)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	analysisID := uuid.New().String()
	logger := a.logger.With("analysis_id", analysisID, "document_hash", doc.Hash())
	logger.Info("analysis started", "filename", doc.Filename, "type", string(doc.Type))

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: initialPrompt(doc, registry.Definitions())},
	}

	state := stateAwaitingDecision
	var verdict *Verdict
	var lastContent string
	var lastFailedTool string
	consecutiveFailures := 0

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			a.metrics.observeAnalysis("cancelled")
			return nil, err
		}

		resp, err := a.llm.Complete(ctx, llm.Request{
			Capability:  model.CapabilityAnalysis.String(),
			Messages:    messages,
			Temperature: a.temperature,
		})
		if err != nil {
			a.metrics.observeAnalysis("failed")
			return nil, &AnalysisFailedError{Reason: fmt.Sprintf("model unavailable: %v", err)}
		}
		lastContent = resp.Content
		messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})

		dec, parseErr := parseDecision(resp.Content)
		if parseErr != nil {
			logger.Warn("unparseable decision", "iteration", iteration, "error", parseErr)
			messages = append(messages, llm.Message{Role: "user", Content: parseFeedback})
			continue
		}

		switch dec.Action {
		case "final":
			state = stateSynthesizing
			verdict = a.synthesize(dec)
			state = stateDone

		case "tool":
			state = stateExecutingTool
			call := tools.ToolCall{ID: uuid.New().String(), Name: dec.Tool, Arguments: dec.Arguments}

			result, execErr := registry.Execute(ctx, call)
			if execErr != nil && ctx.Err() != nil {
				a.metrics.observeAnalysis("cancelled")
				return nil, ctx.Err()
			}
			a.metrics.observeToolCall(dec.Tool, result.Failed())

			if result.Failed() {
				if errors.Is(execErr, tools.ErrUnknownTool) {
					// A hallucinated tool name never reached a tool, so it
					// is a recoverable bad request: feed the error back and
					// let the iteration budget bound the loop.
					logger.Warn("unknown tool requested", "tool", dec.Tool)
				} else {
					if dec.Tool == lastFailedTool {
						consecutiveFailures++
					} else {
						lastFailedTool = dec.Tool
						consecutiveFailures = 1
					}
					if consecutiveFailures >= consecutiveFailureLimit {
						state = stateFailed
						a.metrics.observeAnalysis("failed")
						logger.Error("analysis aborted", "tool", dec.Tool, "error", result.Error)
						return nil, &AnalysisFailedError{
							Reason: fmt.Sprintf("tool %s failed %d times in a row: %s", dec.Tool, consecutiveFailures, result.Error),
						}
					}
					logger.Warn("tool failed", "tool", dec.Tool, "error", result.Error)
				}
			} else {
				lastFailedTool = ""
				consecutiveFailures = 0
			}

			messages = append(messages, llm.Message{Role: "user", Content: toolResultMessage(call, result)})
			state = stateAwaitingDecision

		default:
			logger.Warn("unknown action", "action", dec.Action, "iteration", iteration)
			messages = append(messages, llm.Message{Role: "user", Content: parseFeedback})
		}

		if state == stateDone {
			break
		}
	}

	if verdict == nil {
		// Iteration budget exhausted without a final decision. Return what
		// evidence the conversation holds rather than failing outright.
		logger.Warn("iteration budget exhausted", "max_iterations", a.maxIterations)
		a.metrics.observeAnalysis("exhausted")
		return &Verdict{
			RedFlags:        []string{},
			PositiveSignals: []string{},
			Recommendation:  RecommendationUnknown,
			Narrative:       lastContent,
		}, nil
	}

	a.metrics.observeAnalysis("completed")
	logger.Info("analysis completed", "recommendation", string(verdict.Recommendation))
	return verdict, nil
}

// buildRegistry wires the evidence tools for one document. Tools are bound
// to the document at construction so the agent never ships payload bytes
// through the conversation.
func (a *Analyst) buildRegistry(doc document.Document) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	execs := []tools.Executor{
		metadata.NewExecutor(doc),
		visual.NewExecutor(doc, a.llm),
		financial.NewExecutor(doc, a.llm),
	}
	for _, exec := range execs {
		if a.recorder != nil {
			exec = tools.NewRecordingExecutor(exec, a.recorder, a.logger)
		}
		if err := registry.Register(exec); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// synthesize builds a verdict from a final decision, normalizing fields.
func (a *Analyst) synthesize(dec *decision) *Verdict {
	rec := ParseRecommendation(dec.Recommendation)
	if rec == RecommendationUnknown && dec.Recommendation == "" {
		rec = ScanRecommendation(dec.Narrative)
	}

	redFlags := dec.RedFlags
	if redFlags == nil {
		redFlags = []string{}
	}
	positives := dec.PositiveSignals
	if positives == nil {
		positives = []string{}
	}

	return &Verdict{
		AuthenticityScore: clampScore(dec.AuthenticityScore),
		RedFlags:          redFlags,
		PositiveSignals:   positives,
		Recommendation:    rec,
		Narrative:         dec.Narrative,
	}
}

// parseDecision extracts the decision JSON from a model response.
func parseDecision(content string) (*decision, error) {
	raw := llm.ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var dec decision
	if err := json.Unmarshal([]byte(raw), &dec); err != nil {
		return nil, fmt.Errorf("decoding decision: %w", err)
	}
	if dec.Action == "" {
		return nil, fmt.Errorf("decision missing action field")
	}
	return &dec, nil
}
