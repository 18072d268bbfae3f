// Package tools defines the evidence tool set exposed to the reasoning agent
// during document analysis, plus the registry the orchestrator dispatches
// through. Each tool is self-contained: internal faults become an error field
// on the result, never a raised failure.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTool marks a dispatch for a name no executor registered. The
// call never reached a tool, so callers can treat it as a bad request
// rather than a tool fault.
var ErrUnknownTool = errors.New("unknown tool")

// ToolCall is a single tool invocation requested by the reasoning agent.
type ToolCall struct {
	// ID correlates the call with its result in conversation history.
	ID string `json:"id"`

	// Name is the registered tool name.
	Name string `json:"name"`

	// Arguments carries the JSON payload supplied by the agent.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult is the bounded outcome of a tool invocation. Exactly one of
// Content and Error is meaningful; a populated Error marks the invocation as
// failed without aborting the analysis.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the invocation produced an error outcome.
func (r ToolResult) Failed() bool {
	return r.Error != ""
}

// ToolDefinition describes a tool to the reasoning agent.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Executor runs one or more named tools.
type Executor interface {
	// Execute runs a tool call. Implementations surface their own faults
	// through ToolResult.Error; the error return is reserved for unknown
	// tool names and context cancellation.
	Execute(ctx context.Context, call ToolCall) (ToolResult, error)

	// ListTools returns the definitions of the tools this executor serves.
	ListTools() []ToolDefinition
}

// Registry maps tool names to executors. A registry is built per analysis
// invocation and passed down explicitly; there is no process-wide registry.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds every tool the executor serves. Registering a duplicate
// tool name is an error.
func (r *Registry) Register(exec Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range exec.ListTools() {
		if _, exists := r.executors[def.Name]; exists {
			return fmt.Errorf("tool %q already registered", def.Name)
		}
		r.executors[def.Name] = exec
	}
	return nil
}

// Execute dispatches a call to the executor registered for its name.
func (r *Registry) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	r.mu.RLock()
	exec, ok := r.executors[call.Name]
	r.mu.RUnlock()

	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
		return ToolResult{CallID: call.ID, Error: err.Error()}, err
	}

	return exec.Execute(ctx, call)
}

// Definitions returns all registered tool definitions sorted by name.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var defs []ToolDefinition
	for _, exec := range r.executors {
		for _, def := range exec.ListTools() {
			if !seen[def.Name] {
				seen[def.Name] = true
				defs = append(defs, def)
			}
		}
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	defs := r.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
