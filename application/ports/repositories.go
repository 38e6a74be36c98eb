package ports

import (
	"context"
	"errors"

	"mindcanvas/domain/core/aggregates"
)

// ErrNoAutosave is returned by Load when nothing usable has been saved.
var ErrNoAutosave = errors.New("no autosaved canvas")

// DocumentRepository persists the single autosaved canvas document.
// This is a port in hexagonal architecture; the domain does not know the backing store.
type DocumentRepository interface {
	// Save stores the document, replacing any previous autosave.
	Save(ctx context.Context, doc *aggregates.CanvasDocument) error

	// Load returns the raw autosaved bytes, or ErrNoAutosave.
	// Callers run the bytes through the schema migrator.
	Load(ctx context.Context) ([]byte, error)

	// Clear removes the autosave. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
