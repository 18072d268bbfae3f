// Package audit records what happened to every document without retaining
// document content. Events carry content hashes and sanitized filenames only;
// the original filename never reaches a sink.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// EventType classifies an audit event.
type EventType string

const (
	EventDocumentUpload   EventType = "document_upload"
	EventDocumentAnalysis EventType = "document_analysis"
	EventDocumentDeletion EventType = "document_deletion"
)

// Event is a single audit record. Metadata holds event-specific detail such
// as validation outcomes, verdict summaries, or deletion reasons.
type Event struct {
	Timestamp    time.Time      `json:"timestamp"`
	EventType    EventType      `json:"event_type"`
	DocumentHash string         `json:"document_hash"`
	Filename     string         `json:"filename"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewEvent builds an event with a UTC timestamp and the filename sanitized.
func NewEvent(eventType EventType, documentHash, filename string, metadata map[string]any) Event {
	return Event{
		Timestamp:    time.Now().UTC(),
		EventType:    eventType,
		DocumentHash: documentHash,
		Filename:     SanitizeFilename(filename),
		Metadata:     metadata,
	}
}

// SanitizeFilename replaces the filename stem with the first 8 hex characters
// of its SHA-256, keeping only the extension recognizable. The mapping is
// stable: the same input always yields the same sanitized name.
func SanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	sum := sha256.Sum256([]byte(stem))
	return hex.EncodeToString(sum[:])[:8] + ext
}
