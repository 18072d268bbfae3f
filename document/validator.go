package document

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxFileSize is the upload size ceiling (10 MiB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// FailureCode classifies why validation rejected a file.
type FailureCode string

const (
	FailureTooLarge             FailureCode = "too_large"
	FailureUnsupportedExtension FailureCode = "unsupported_extension"
	FailureContentTypeMismatch  FailureCode = "content_type_mismatch"
)

// ValidationResult is the terminal outcome of the validation gate.
// An invalid result halts the pipeline; there is no retry.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Code   FailureCode `json:"code,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// compatibleMIMEs maps each allowed extension to the sniffed MIME types
// accepted for it. Anything outside this table fails closed.
var compatibleMIMEs = map[string][]string{
	".pdf":  {"application/pdf"},
	".png":  {"image/png"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
}

// Validator gatekeeps uploads on size, extension, and sniffed content type.
// It is purely functional: identical inputs always yield identical results.
type Validator struct {
	maxBytes int64
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithMaxFileSize overrides the upload size ceiling.
func WithMaxFileSize(n int64) ValidatorOption {
	return func(v *Validator) {
		v.maxBytes = n
	}
}

// NewValidator creates a Validator with the default 10 MiB ceiling.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{maxBytes: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// AllowedExtensions returns the supported extensions in display order.
func AllowedExtensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg"}
}

// Validate checks data against the size ceiling, the extension allowlist,
// and extension/content-type agreement. A sniffed type outside the
// declared-compatible set for the extension is treated as a disguised
// payload and rejected.
func (v *Validator) Validate(data []byte, filename string) ValidationResult {
	if int64(len(data)) > v.maxBytes {
		return ValidationResult{
			Valid:  false,
			Code:   FailureTooLarge,
			Reason: fmt.Sprintf("file size %d exceeds maximum of %d bytes", len(data), v.maxBytes),
		}
	}

	ext := lowerExt(filename)
	compatible, ok := compatibleMIMEs[ext]
	if !ok {
		return ValidationResult{
			Valid:  false,
			Code:   FailureUnsupportedExtension,
			Reason: fmt.Sprintf("extension %q not allowed; supported: %s", ext, strings.Join(AllowedExtensions(), ", ")),
		}
	}

	// mimetype falls back to application/octet-stream for anything it cannot
	// identify, which lands outside the compatible set and fails closed.
	detected := mimetype.Detect(data)
	for _, mime := range compatible {
		if detected.Is(mime) {
			return ValidationResult{Valid: true}
		}
	}

	return ValidationResult{
		Valid:  false,
		Code:   FailureContentTypeMismatch,
		Reason: fmt.Sprintf("sniffed content type %q does not match extension %q", detected.String(), ext),
	}
}

func lowerExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}
