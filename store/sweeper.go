package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/docsentinel/audit"
	"github.com/c360studio/docsentinel/retention"
)

// Sweeper deletes stored objects that have outlived the retention policy
// and records a deletion event for each.
type Sweeper struct {
	store  ObjectStore
	policy retention.Policy
	sink   audit.Sink
	logger *slog.Logger
}

// NewSweeper creates a sweeper. The audit sink may be nil to skip deletion
// events.
func NewSweeper(store ObjectStore, policy retention.Policy, sink audit.Sink, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, policy: policy, sink: sink, logger: logger}
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	UploadsDeleted  int
	AnalysesDeleted int
	Errors          int
}

// Sweep deletes every expired object as of now. Individual deletion failures
// are logged and counted; the sweep continues so one bad object cannot stall
// the lifecycle.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	uploads, err := s.store.List(ctx, UploadPrefix)
	if err != nil {
		return result, fmt.Errorf("listing uploads: %w", err)
	}
	for _, obj := range uploads {
		if !s.policy.UploadExpired(obj.StoredAt, now) {
			continue
		}
		if s.deleteAndRecord(ctx, obj, "upload retention period expired") {
			result.UploadsDeleted++
		} else {
			result.Errors++
		}
	}

	analyses, err := s.store.List(ctx, AnalysisPrefix)
	if err != nil {
		return result, fmt.Errorf("listing analyses: %w", err)
	}
	for _, obj := range analyses {
		if !s.policy.AnalysisExpired(obj.StoredAt, now) {
			continue
		}
		if s.deleteAndRecord(ctx, obj, "analysis retention period expired") {
			result.AnalysesDeleted++
		} else {
			result.Errors++
		}
	}

	s.logger.Info("retention sweep completed",
		"uploads_deleted", result.UploadsDeleted,
		"analyses_deleted", result.AnalysesDeleted,
		"errors", result.Errors)
	return result, nil
}

func (s *Sweeper) deleteAndRecord(ctx context.Context, obj Object, reason string) bool {
	if err := s.store.Delete(ctx, obj.Key); err != nil {
		s.logger.Error("retention delete failed", "key", obj.Key, "error", err)
		return false
	}

	if s.sink != nil {
		event := audit.Event{
			Timestamp:    time.Now().UTC(),
			EventType:    audit.EventDocumentDeletion,
			DocumentHash: hashFromKey(obj.Key),
			Metadata: map[string]any{
				"key":       obj.Key,
				"reason":    reason,
				"stored_at": obj.StoredAt,
			},
		}
		if err := s.sink.Write(ctx, event); err != nil {
			s.logger.Warn("audit sink write failed", "key", obj.Key, "error", err)
		}
	}
	return true
}

// hashFromKey recovers the content hash embedded in a storage key.
func hashFromKey(key string) string {
	key = strings.TrimPrefix(key, UploadPrefix)
	key = strings.TrimPrefix(key, AnalysisPrefix)
	if i := strings.LastIndex(key, "."); i > 0 {
		key = key[:i]
	}
	return key
}
