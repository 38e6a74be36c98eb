// Package memory provides an in-process DocumentRepository for tests and
// ephemeral runs.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/aggregates"
	"mindcanvas/pkg/errors"
)

// Store keeps the last saved document in memory.
type Store struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

var _ ports.DocumentRepository = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Save stores a serialised copy of doc.
func (s *Store) Save(_ context.Context, doc *aggregates.CanvasDocument) error {
	data, err := json.Marshal(doc.ForPersistence())
	if err != nil {
		return errors.NewStorageError("encode canvas", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Load returns the stored bytes or ports.ErrNoAutosave.
func (s *Store) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ports.ErrNoAutosave
	}
	return append([]byte(nil), s.data...), nil
}

// Clear forgets the stored document.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
