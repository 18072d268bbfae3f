// Package retention defines the data lifecycle policy: how long uploaded
// documents and analysis reports are kept before deletion.
package retention

import (
	"fmt"
	"time"
)

// Default retention periods.
const (
	DefaultUploadTTL   = 24 * time.Hour
	DefaultAnalysisTTL = 90 * 24 * time.Hour
)

// Policy holds the retention periods for the two classes of stored data.
// Uploaded document content is short-lived; analysis reports, which contain
// no document content, are kept for compliance review.
type Policy struct {
	UploadTTL   time.Duration `yaml:"upload_ttl"`
	AnalysisTTL time.Duration `yaml:"analysis_ttl"`
}

// DefaultPolicy returns the standard 24 hour / 90 day policy.
func DefaultPolicy() Policy {
	return Policy{
		UploadTTL:   DefaultUploadTTL,
		AnalysisTTL: DefaultAnalysisTTL,
	}
}

// Validate checks that both periods are positive.
func (p Policy) Validate() error {
	if p.UploadTTL <= 0 {
		return fmt.Errorf("upload_ttl must be positive, got %s", p.UploadTTL)
	}
	if p.AnalysisTTL <= 0 {
		return fmt.Errorf("analysis_ttl must be positive, got %s", p.AnalysisTTL)
	}
	return nil
}

// UploadExpired reports whether an upload stored at storedAt is past its
// retention period at now.
func (p Policy) UploadExpired(storedAt, now time.Time) bool {
	return now.Sub(storedAt) > p.UploadTTL
}

// AnalysisExpired reports whether an analysis stored at storedAt is past its
// retention period at now.
func (p Policy) AnalysisExpired(storedAt, now time.Time) bool {
	return now.Sub(storedAt) > p.AnalysisTTL
}

// UploadDeadline returns the instant at which an upload stored at storedAt
// becomes eligible for deletion.
func (p Policy) UploadDeadline(storedAt time.Time) time.Time {
	return storedAt.Add(p.UploadTTL)
}

// AnalysisDeadline returns the instant at which an analysis stored at
// storedAt becomes eligible for deletion.
func (p Policy) AnalysisDeadline(storedAt time.Time) time.Time {
	return storedAt.Add(p.AnalysisTTL)
}
