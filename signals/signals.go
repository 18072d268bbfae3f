// Package signals derives structural authenticity signals from raw document
// bytes. Extraction is deterministic: identical bytes and filename always
// produce an identical Bundle, with no timestamps or randomness involved.
//
// Internal parse faults never escape; they surface as an "error" entry in the
// bundle metadata with empty signal lists.
package signals

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Bundle groups the findings extracted from a single document.
// RedFlags and PositiveSignals are ordered by detection; the order is
// significant for display only. A finding never appears in both lists.
type Bundle struct {
	RedFlags        []string       `json:"red_flags"`
	PositiveSignals []string       `json:"positive_signals"`
	Metadata        map[string]any `json:"raw_metadata"`
}

func newBundle() *Bundle {
	return &Bundle{
		RedFlags:        []string{},
		PositiveSignals: []string{},
		Metadata:        map[string]any{},
	}
}

func (b *Bundle) flag(format string, args ...any) {
	b.RedFlags = append(b.RedFlags, fmt.Sprintf(format, args...))
}

func (b *Bundle) signal(format string, args ...any) {
	b.PositiveSignals = append(b.PositiveSignals, fmt.Sprintf(format, args...))
}

// errorBundle builds the degraded bundle used when extraction fails:
// metadata carries only the error message and both signal lists are empty.
func errorBundle(err error) *Bundle {
	b := newBundle()
	b.Metadata = map[string]any{"error": err.Error()}
	return b
}

// Extract derives the signal bundle for the given bytes and filename.
// It branches on the filename extension; unsupported extensions yield an
// error bundle rather than a failure.
func Extract(data []byte, filename string) *Bundle {
	ext := lowerExt(filename)
	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".png", ".jpg", ".jpeg":
		return extractImage(data)
	default:
		return errorBundle(fmt.Errorf("unsupported extension %q", ext))
	}
}

// MarshalJSON keeps serialization stable: map keys are sorted by
// encoding/json, and signal lists are always present (never null).
func (b *Bundle) MarshalJSON() ([]byte, error) {
	type alias Bundle
	a := alias(*b)
	if a.RedFlags == nil {
		a.RedFlags = []string{}
	}
	if a.PositiveSignals == nil {
		a.PositiveSignals = []string{}
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	return json.Marshal(a)
}

// Summary renders a human-readable digest of the bundle for display in
// upload confirmations and CLI output.
func (b *Bundle) Summary(filename string, sizeKB float64, hash string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n", filename)
	fmt.Fprintf(&sb, "Size: %.2f KB\n", sizeKB)
	if len(hash) >= 16 {
		fmt.Fprintf(&sb, "Hash: %s...\n", hash[:16])
	}
	if len(b.PositiveSignals) > 0 {
		sb.WriteString("\nPositive signals:\n")
		for _, s := range b.PositiveSignals {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}
	if len(b.RedFlags) > 0 {
		sb.WriteString("\nRed flags:\n")
		for _, f := range b.RedFlags {
			fmt.Fprintf(&sb, "  - %s\n", f)
		}
	}
	return sb.String()
}

func lowerExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}
