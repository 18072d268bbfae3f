package signals

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Authoring-tool substrings used to classify the PDF creator/producer.
// Both checks are independent; a string can match neither or, in principle,
// both.
var (
	legitimateTools = []string{"quickbooks", "bank", "financial", "acrobat", "microsoft", "word", "excel", "libreoffice"}
	editingTools    = []string{"photoshop", "gimp", "paint", "preview", "pixlr", "canva"}
)

// pdfMetadata holds the structural facts read from a PDF before rule
// evaluation.
type pdfMetadata struct {
	pages           int
	encrypted       bool
	title           string
	author          string
	subject         string
	creator         string
	producer        string
	creationDate    *string
	modDate         *string
	textExtractable bool
}

func (m *pdfMetadata) toMap() map[string]any {
	meta := map[string]any{
		"num_pages":        m.pages,
		"encrypted":        m.encrypted,
		"title":            m.title,
		"author":           m.author,
		"subject":          m.subject,
		"creator":          m.creator,
		"producer":         m.producer,
		"text_extractable": m.textExtractable,
	}
	// Absent dates serialize as null, not as a failure.
	if m.creationDate != nil {
		meta["creation_date"] = *m.creationDate
	} else {
		meta["creation_date"] = nil
	}
	if m.modDate != nil {
		meta["modification_date"] = *m.modDate
	} else {
		meta["modification_date"] = nil
	}
	return meta
}

func extractPDF(data []byte) *Bundle {
	meta, err := readPDFMetadata(data)
	if err != nil {
		if isEncryptionError(err) {
			// The reader refused the file without a password. We still know
			// the document is encrypted and its text is unreachable, which
			// is enough for rule evaluation.
			meta = &pdfMetadata{encrypted: true}
		} else {
			return errorBundle(err)
		}
	}

	b := newBundle()
	b.Metadata = meta.toMap()
	applyPDFRules(b, meta)
	return b
}

func readPDFMetadata(data []byte) (*pdfMetadata, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, err
	}

	meta := &pdfMetadata{
		pages:        ctx.PageCount,
		encrypted:    ctx.Encrypt != nil,
		title:        ctx.Title,
		author:       ctx.Author,
		subject:      ctx.Subject,
		creator:      ctx.Creator,
		producer:     ctx.Producer,
		creationDate: parsePDFDate(ctx.XRefTable.CreationDate),
		modDate:      parsePDFDate(ctx.ModDate),
	}
	meta.textExtractable = pageOneHasText(ctx)

	return meta, nil
}

// pageOneHasText reports whether the first page's content stream contains
// text-showing operators. Scanned or screenshot PDFs carry image XObjects
// only, with no text blocks.
func pageOneHasText(ctx *pdfmodel.Context) bool {
	r, err := pdfcpu.ExtractPageContent(ctx, 1)
	if err != nil || r == nil {
		return false
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return false
	}
	s := string(content)
	return strings.Contains(s, "BT") && (strings.Contains(s, "Tj") || strings.Contains(s, "TJ"))
}

// applyPDFRules classifies the extracted facts into red flags and positive
// signals, in detection order.
func applyPDFRules(b *Bundle, meta *pdfMetadata) {
	if meta.encrypted {
		b.flag("Document is encrypted - unusual for bank statements")
	}

	if meta.textExtractable {
		b.signal("Text is extractable - appears to be original digital document")
	} else {
		b.flag("Text not extractable - possible scanned/screenshot document")
	}

	creator := strings.ToLower(meta.creator)
	producer := strings.ToLower(meta.producer)
	tool := meta.creator
	if tool == "" {
		tool = meta.producer
	}

	if matchesAny(creator, legitimateTools) || matchesAny(producer, legitimateTools) {
		b.signal("Created with legitimate software: %s", tool)
	}
	if matchesAny(creator, editingTools) || matchesAny(producer, editingTools) {
		b.flag("Created/modified with image editing software: %s", tool)
	}

	if meta.creationDate != nil && meta.modDate != nil {
		b.signal("Document has creation and modification timestamps")
	}
}

func matchesAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// parsePDFDate parses the packed PDF date encoding D:YYYYMMDDHHMMSS[offset]
// into an ISO-8601 string. Malformed or missing dates yield nil rather than
// a failure.
func parsePDFDate(raw string) *string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 14 {
		return nil
	}
	t, err := time.Parse("20060102150405", s[:14])
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02T15:04:05")
	return &iso
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}
