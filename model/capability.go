// Package model provides capability-based model selection for document
// analysis. Instead of hardcoding model names, callers specify capabilities
// (analysis, vision, fast) and the registry resolves them to available
// models with fallback chains.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityAnalysis is for the reasoning loop that drives evidence
	// tools and synthesizes the authenticity verdict.
	CapabilityAnalysis Capability = "analysis"

	// CapabilityVision is for visual document inspection; endpoints must
	// accept image attachments.
	CapabilityVision Capability = "vision"

	// CapabilityFast is for quick secondary passes such as follow-up
	// question generation.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityAnalysis, CapabilityVision, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	cap := Capability(s)
	if cap.IsValid() {
		return cap
	}
	return ""
}
