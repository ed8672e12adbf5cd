// Package docstore provides the key-value document store used for feedback
// logs, user preference projections and activity records. Documents are JSON
// files, one per key, under a data directory.
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/fitfindr/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultDataDir = "data"
	dirPermissions = 0o755
	filePerms      = 0o644
)

// Store provides load/save/append access to JSON documents by key.
type Store interface {
	// Load decodes the document at key into out. A missing document leaves
	// out untouched, so callers pre-populate out with their default.
	Load(ctx context.Context, key string, out any) error

	// Save writes value as the document at key, replacing any previous one.
	Save(ctx context.Context, key string, value any) error

	// Append adds value to the JSON array document at key, creating the
	// document when absent. A non-array existing document is wrapped into
	// an array first.
	Append(ctx context.Context, key string, value any) error
}

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithDir sets the data directory.
func WithDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// FileStore implements Store with one JSON file per key. Writes go through a
// temp file and rename so readers never observe a partial document.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file-backed store with configuration options.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		dir: defaultDataDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load decodes the document at key into out.
func (s *FileStore) Load(ctx context.Context, key string, out any) error {
	start := time.Now()
	defer func() {
		metrics.RecordDocstoreLatency("load", float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, key, out)
}

// Save writes value as the document at key.
func (s *FileStore) Save(ctx context.Context, key string, value any) error {
	start := time.Now()
	defer func() {
		metrics.RecordDocstoreLatency("save", float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, key, value)
}

// Append adds value to the array document at key.
func (s *FileStore) Append(ctx context.Context, key string, value any) error {
	start := time.Now()
	defer func() {
		metrics.RecordDocstoreLatency("append", float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []json.RawMessage
	if err := s.loadLocked(ctx, key, &existing); err != nil {
		// A non-array document becomes the first element.
		var single json.RawMessage
		if loadErr := s.loadLocked(ctx, key, &single); loadErr != nil {
			return err
		}
		existing = []json.RawMessage{single}
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrEncode, key, err)
	}
	existing = append(existing, encoded)
	return s.saveLocked(ctx, key, existing)
}

func (s *FileStore) loadLocked(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // missing document keeps the caller's default
		}
		return fmt.Errorf("%w: read %s: %w", ErrRead, key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrDecode, key, err)
	}
	return nil
}

func (s *FileStore) saveLocked(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrWrite, s.dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrEncode, key, err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerms); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrWrite, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrWrite, key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// ActivityRecord is one entry in the activity log document.
type ActivityRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Activity  string         `json:"activity"`
	Data      map[string]any `json:"data,omitempty"`
}

// activityLogKey is the document holding activity records.
const activityLogKey = "activity_log"

// LogActivity appends an activity record for debugging and audit purposes.
// Failures are returned but callers typically only log them.
func LogActivity(ctx context.Context, store Store, activity string, data map[string]any) error {
	return store.Append(ctx, activityLogKey, ActivityRecord{
		Timestamp: time.Now(),
		Activity:  activity,
		Data:      data,
	})
}
