// Package filestore keeps the autosaved canvas in a local JSON file and
// reads and writes portable export files.
package filestore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/aggregates"
	"mindcanvas/pkg/errors"
)

// AutosaveFile is the name of the autosave file inside the store directory.
const AutosaveFile = "mindcanvas-autosave.json"

// Store is a DocumentRepository backed by a single file.
type Store struct {
	path   string
	logger *zap.Logger

	mu           sync.Mutex
	lastChecksum string
}

var _ ports.DocumentRepository = (*Store)(nil)

// NewStore creates the directory if needed and returns a store rooted there.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewStorageError("create autosave directory", err)
	}
	return &Store{
		path:   filepath.Join(dir, AutosaveFile),
		logger: logger,
	}, nil
}

// Path returns the autosave file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the document atomically. Writing is skipped when the content
// is unchanged since the last save.
func (s *Store) Save(ctx context.Context, doc *aggregates.CanvasDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, sum, err := encode(doc)
	if err != nil {
		return errors.NewStorageError("encode canvas", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sum == s.lastChecksum {
		if _, err := os.Stat(s.path); err == nil {
			s.logger.Debug("Autosave unchanged, skipping write", zap.String("checksum", sum[:12]))
			return nil
		}
	}

	if err := writeAtomic(s.path, data); err != nil {
		return errors.NewStorageError("write autosave", err)
	}
	s.lastChecksum = sum
	s.logger.Debug("Canvas autosaved",
		zap.String("path", s.path),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)))
	return nil
}

// Load returns the autosaved bytes. A missing or corrupt file is reported
// as ports.ErrNoAutosave.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrNoAutosave
	}
	if err != nil {
		return nil, errors.NewStorageError("read autosave", err)
	}
	if !json.Valid(data) {
		s.logger.Warn("Autosave file is not valid JSON, ignoring it", zap.String("path", s.path))
		return nil, ports.ErrNoAutosave
	}
	s.lastChecksum = checksumBytes(data)
	return data, nil
}

// Clear deletes the autosave file.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastChecksum = ""
	if err := os.Remove(s.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewStorageError("remove autosave", err)
	}
	return nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".autosave-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
