// Package document defines the document payload handed to the analysis
// pipeline and the validation gate that runs before anything else touches it.
// A document is transient: the pipeline derives its identity from a content
// hash and never persists the bytes itself.
package document

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Type labels the declared kind of financial document under analysis.
// The label is advisory; it steers prompting, not validation.
type Type string

const (
	TypeBankStatement       Type = "bank statement"
	TypeTaxReturn           Type = "tax return"
	TypePayStub             Type = "pay stub"
	TypeInvestmentStatement Type = "investment statement"
	TypeOther               Type = "other"
)

// Document is a raw byte payload plus its declared filename and type.
// Ownership is exclusive to the analysis invocation that received it.
type Document struct {
	Data     []byte
	Filename string
	Type     Type
}

// New constructs a Document, defaulting an empty type to TypeOther.
func New(data []byte, filename string, docType Type) Document {
	if docType == "" {
		docType = TypeOther
	}
	return Document{Data: data, Filename: filename, Type: docType}
}

// Hash returns the SHA-256 content hash in hex. This is the document's
// stable identifier for audit logging and deduplication.
func (d Document) Hash() string {
	return HashBytes(d.Data)
}

// Ext returns the lowercase filename extension including the leading dot.
func (d Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

// SizeKB returns the payload size in kibibytes for display purposes.
func (d Document) SizeKB() float64 {
	return float64(len(d.Data)) / 1024.0
}

// HashBytes returns the SHA-256 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity reports whether data matches the expected SHA-256 hex
// digest using a constant-time comparison.
func VerifyIntegrity(data []byte, expectedHash string) bool {
	actual := HashBytes(data)
	return hmac.Equal([]byte(actual), []byte(expectedHash))
}

// Zeroize overwrites the buffer with zeros. This is a best-effort control:
// the runtime may already have copied the data during slice growth or GC,
// so callers must not treat it as a secure-erasure guarantee.
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// NewSessionKey returns a random URL-safe session token.
func NewSessionKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
