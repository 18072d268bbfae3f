package agent

import "fmt"

// AnalysisFailedError indicates the reasoning loop could not produce a
// verdict at all, as opposed to a degraded verdict built from partial
// evidence.
type AnalysisFailedError struct {
	Reason string
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Reason)
}

// ValidationError indicates the document was rejected before any analysis
// began.
type ValidationError struct {
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document rejected (%s): %s", e.Code, e.Reason)
}
