package signals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestApplyPDFRules_EncryptedEditedDocument(t *testing.T) {
	meta := &pdfMetadata{
		pages:           1,
		encrypted:       true,
		creator:         "Adobe Photoshop",
		textExtractable: false,
	}

	b := newBundle()
	applyPDFRules(b, meta)

	assert.Contains(t, b.RedFlags, "Document is encrypted - unusual for bank statements")
	assert.Contains(t, b.RedFlags, "Text not extractable - possible scanned/screenshot document")
	assert.Contains(t, b.RedFlags, "Created/modified with image editing software: Adobe Photoshop")
	assert.Empty(t, b.PositiveSignals, "Photoshop must not match the legitimate-tool allowlist")
}

func TestApplyPDFRules_LegitimateDocument(t *testing.T) {
	meta := &pdfMetadata{
		pages:           3,
		creator:         "Microsoft Word",
		producer:        "Microsoft: Print To PDF",
		textExtractable: true,
		creationDate:    strPtr("2024-01-05T09:30:00"),
		modDate:         strPtr("2024-01-05T09:31:00"),
	}

	b := newBundle()
	applyPDFRules(b, meta)

	require.GreaterOrEqual(t, len(b.PositiveSignals), 2)
	assert.Contains(t, b.PositiveSignals, "Text is extractable - appears to be original digital document")
	assert.Contains(t, b.PositiveSignals, "Created with legitimate software: Microsoft Word")
	assert.Contains(t, b.PositiveSignals, "Document has creation and modification timestamps")
	assert.Empty(t, b.RedFlags)
}

func TestApplyPDFRules_AllowlistAndDenylistIndependent(t *testing.T) {
	// A producer string matching both lists fires both findings.
	meta := &pdfMetadata{
		producer:        "Microsoft Paint",
		textExtractable: true,
	}

	b := newBundle()
	applyPDFRules(b, meta)

	assert.Contains(t, b.PositiveSignals, "Created with legitimate software: Microsoft Paint")
	assert.Contains(t, b.RedFlags, "Created/modified with image editing software: Microsoft Paint")
}

func TestApplyPDFRules_MissingDates(t *testing.T) {
	meta := &pdfMetadata{textExtractable: true, creationDate: strPtr("2024-01-05T09:30:00")}

	b := newBundle()
	applyPDFRules(b, meta)

	assert.NotContains(t, b.PositiveSignals, "Document has creation and modification timestamps")
}

func TestParsePDFDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"with offset", "D:20240105093000+01'00'", strPtr("2024-01-05T09:30:00")},
		{"utc suffix", "D:20240105093000Z", strPtr("2024-01-05T09:30:00")},
		{"no prefix", "20240105093000", strPtr("2024-01-05T09:30:00")},
		{"empty", "", nil},
		{"truncated", "D:202401", nil},
		{"garbage", "D:notadate!!!!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePDFDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestIsEncryptionError(t *testing.T) {
	assert.True(t, isEncryptionError(errors.New("pdfcpu: please provide the correct password")))
	assert.True(t, isEncryptionError(errors.New("unsupported encryption")))
	assert.False(t, isEncryptionError(errors.New("xref table corrupt")))
}
