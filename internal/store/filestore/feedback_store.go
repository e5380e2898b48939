// Package filestore keeps the feedback collection in a JSON file on local disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/NomadCrew/feedback-tracker-backend/internal/store"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"go.uber.org/zap"
)

// Ensure FeedbackStore implements store.FeedbackRepository
var _ store.FeedbackRepository = (*FeedbackStore)(nil)

// FeedbackStore reads and rewrites a single JSON document holding every
// feedback record. Writes land in a temp file that is renamed over the
// document, so readers never observe a half-written collection.
//
// Disk I/O runs off the caller's goroutine so a context deadline bounds how
// long Load and Save block. A write abandoned at its deadline still finishes in
// the background unless a newer Save has already landed, so it never replaces
// a later document.
type FeedbackStore struct {
	path     string
	log      *zap.SugaredLogger
	readFile func(name string) ([]byte, error)

	seq     atomic.Uint64
	writeMu sync.Mutex
	written uint64
}

// NewFeedbackStore creates a store backed by the file at path. The file and
// its directory are created on first save.
func NewFeedbackStore(path string) *FeedbackStore {
	return &FeedbackStore{
		path:     path,
		log:      logger.GetLogger().Named("filestore"),
		readFile: os.ReadFile,
	}
}

// Path returns the location of the backing document.
func (s *FeedbackStore) Path() string {
	return s.path
}

// Load reads the collection. A missing file is an empty collection; any
// other read failure, including a corrupt document, is returned.
func (s *FeedbackStore) Load(ctx context.Context) ([]types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := withContext(ctx, func() error {
		var readErr error
		data, readErr = s.readFile(s.path)
		return readErr
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debugw("No existing feedback file found, returning empty collection", "path", s.path)
		return []types.Feedback{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback file %s: %w", s.path, err)
	}

	items, err := store.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feedback file %s: %w", s.path, err)
	}
	return items, nil
}

// Save rewrites the whole document.
func (s *FeedbackStore) Save(ctx context.Context, items []types.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := store.EncodeDocument(items)
	if err != nil {
		return err
	}

	seq := s.seq.Add(1)
	if err := withContext(ctx, func() error { return s.write(seq, data) }); err != nil {
		return err
	}

	s.log.Debugw("Wrote feedback file", "path", s.path, "items", len(items))
	return nil
}

// write replaces the document with data via a synced temp file and rename.
// Writes older than the last one on disk are dropped.
func (s *FeedbackStore) write(seq uint64, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seq <= s.written {
		s.log.Debugw("Skipping superseded feedback write", "path", s.path, "seq", seq)
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write feedback file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync feedback file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close feedback file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace feedback file %s: %w", s.path, err)
	}
	s.written = seq
	return nil
}

// withContext runs fn on its own goroutine and returns its error, or the
// context's error if ctx is done first.
func withContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping checks that the data directory exists or can be created.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("data directory %s unavailable: %w", dir, err)
	}
	return nil
}
