package agent

import (
	"strings"
	"time"
)

// Recommendation is the structured disposition of an analysis.
type Recommendation string

const (
	RecommendationApprove     Recommendation = "approve"
	RecommendationReview      Recommendation = "review"
	RecommendationRequestMore Recommendation = "request_more"
	RecommendationDeny        Recommendation = "deny"
	RecommendationUnknown     Recommendation = "unknown"
)

// IsValid reports whether r is a recognized recommendation value.
func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationApprove, RecommendationReview, RecommendationRequestMore, RecommendationDeny, RecommendationUnknown:
		return true
	}
	return false
}

// ParseRecommendation normalizes a model-supplied recommendation string.
// Unrecognized values map to RecommendationUnknown.
func ParseRecommendation(s string) Recommendation {
	r := Recommendation(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return RecommendationUnknown
}

// ScanRecommendation infers a recommendation by keyword scan over free text.
//
// Deprecated: the agent emits a structured recommendation field; this scan
// survives only as a fallback for responses that omit it.
func ScanRecommendation(text string) Recommendation {
	lower := strings.ToLower(text)
	switch {
	// "deni" covers the inflections "denied" and "denial".
	case strings.Contains(lower, "deny") || strings.Contains(lower, "deni") || strings.Contains(lower, "reject"):
		return RecommendationDeny
	case strings.Contains(lower, "request more") || strings.Contains(lower, "additional document"):
		return RecommendationRequestMore
	case strings.Contains(lower, "approve"):
		return RecommendationApprove
	case strings.Contains(lower, "review"):
		return RecommendationReview
	}
	return RecommendationUnknown
}

// Verdict is the final output of a document analysis.
type Verdict struct {
	// AuthenticityScore is 0 (certainly fraudulent) to 100 (certainly
	// authentic). Nil when the agent could not commit to a score.
	AuthenticityScore *int `json:"authenticity_score"`

	RedFlags        []string `json:"red_flags"`
	PositiveSignals []string `json:"positive_signals"`

	// FollowUpQuestions holds at most five verification questions.
	FollowUpQuestions []string `json:"follow_up_questions"`

	Recommendation Recommendation `json:"recommendation"`

	// Narrative is the agent's free-text assessment.
	Narrative string `json:"narrative"`
}

// clampScore constrains a score to the 0-100 range.
func clampScore(score *int) *int {
	if score == nil {
		return nil
	}
	v := *score
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}

// Report wraps a verdict for export, mirroring the shape written to the
// analysis archive.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Analysis  *Verdict  `json:"analysis"`
	Success   bool      `json:"success"`
}

// NewReport timestamps a verdict for export. A nil verdict produces an
// unsuccessful report.
func NewReport(v *Verdict) Report {
	return Report{
		Timestamp: time.Now().UTC(),
		Analysis:  v,
		Success:   v != nil,
	}
}
