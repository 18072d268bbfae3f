// Package store persists uploaded documents and analysis reports in object
// storage, and sweeps them out again when the retention policy says so.
package store

import (
	"context"
	"time"
)

// Key prefixes partition the bucket by retention class.
const (
	UploadPrefix   = "uploads/"
	AnalysisPrefix = "analyses/"
)

// Object describes a stored object for listing and sweeping.
type Object struct {
	Key      string
	Size     int64
	StoredAt time.Time
}

// ObjectStore is the storage surface the pipeline needs. Implementations
// must be safe for concurrent use.
type ObjectStore interface {
	// Put stores data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// UploadKey builds the storage key for an uploaded document. The key embeds
// the content hash, never the original filename.
func UploadKey(documentHash, ext string) string {
	return UploadPrefix + documentHash + ext
}

// AnalysisKey builds the storage key for an analysis report.
func AnalysisKey(documentHash string) string {
	return AnalysisPrefix + documentHash + ".json"
}
