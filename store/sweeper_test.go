package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/docsentinel/audit"
	"github.com/c360studio/docsentinel/retention"
)

// fakeStore is an in-memory ObjectStore for sweeper tests.
type fakeStore struct {
	objects   map[string]Object
	failOn    string
	deleted   []string
	deletions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]Object)}
}

func (f *fakeStore) add(key string, storedAt time.Time) {
	f.objects[key] = Object{Key: key, StoredAt: storedAt}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) error {
	f.objects[key] = Object{Key: key, Size: int64(len(data)), StoredAt: time.Now()}
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if _, ok := f.objects[key]; !ok {
		return nil, fmt.Errorf("not found: %s", key)
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	for key, obj := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletions++
	if key == f.failOn {
		return errors.New("delete refused")
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	fs.add(UploadKey("aaaa", ".pdf"), now.Add(-25*time.Hour))
	fs.add(UploadKey("bbbb", ".png"), now.Add(-1*time.Hour))
	fs.add(AnalysisKey("aaaa"), now.AddDate(0, 0, -91))
	fs.add(AnalysisKey("bbbb"), now.AddDate(0, 0, -10))

	sink := audit.NewMemorySink()
	sweeper := NewSweeper(fs, retention.DefaultPolicy(), sink, nil)

	result, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UploadsDeleted)
	assert.Equal(t, 1, result.AnalysesDeleted)
	assert.Equal(t, 0, result.Errors)

	assert.Contains(t, fs.deleted, "uploads/aaaa.pdf")
	assert.Contains(t, fs.deleted, "analyses/aaaa.json")
	_, stillThere := fs.objects["uploads/bbbb.png"]
	assert.True(t, stillThere)
}

func TestSweepRecordsDeletionEvents(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	fs.add(UploadKey("cafe", ".pdf"), now.Add(-48*time.Hour))

	sink := audit.NewMemorySink()
	sweeper := NewSweeper(fs, retention.DefaultPolicy(), sink, nil)

	_, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventDocumentDeletion, events[0].EventType)
	assert.Equal(t, "cafe", events[0].DocumentHash)
	assert.Equal(t, "upload retention period expired", events[0].Metadata["reason"])
}

func TestSweepContinuesPastDeleteFailure(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	fs.add(UploadKey("dead", ".pdf"), now.Add(-48*time.Hour))
	fs.add(UploadKey("beef", ".pdf"), now.Add(-48*time.Hour))
	fs.failOn = UploadKey("dead", ".pdf")

	sweeper := NewSweeper(fs, retention.DefaultPolicy(), nil, nil)

	result, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UploadsDeleted)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 2, fs.deletions)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "uploads/abc123.pdf", UploadKey("abc123", ".pdf"))
	assert.Equal(t, "analyses/abc123.json", AnalysisKey("abc123"))
	assert.Equal(t, "abc123", hashFromKey("uploads/abc123.pdf"))
	assert.Equal(t, "abc123", hashFromKey("analyses/abc123.json"))
}
