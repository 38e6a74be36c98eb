package filestore

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mindcanvas/domain/core/aggregates"
	"mindcanvas/infrastructure/persistence/schema"
	"mindcanvas/pkg/errors"
)

// Import shape errors. They describe the file, not the canvas.
var (
	ErrInvalidJSON = errors.NewDomainError(
		errors.DomainValidationError,
		"INVALID_JSON",
		"Invalid JSON file",
	)

	ErrMissingNodes = errors.NewDomainError(
		errors.DomainValidationError,
		"MISSING_NODES",
		"Invalid file: missing nodes array",
	)

	ErrMissingEdges = errors.NewDomainError(
		errors.DomainValidationError,
		"MISSING_EDGES",
		"Invalid file: missing edges array",
	)
)

// ExportFilename names an export file after the moment it was taken.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("mindcanvas-%d.json", now.UnixMilli())
}

// Export writes doc as indented JSON.
func Export(w io.Writer, doc *aggregates.CanvasDocument) error {
	data, err := json.MarshalIndent(doc.ForPersistence(), "", "  ")
	if err != nil {
		return errors.NewInternalError("encode export").WithCause(err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.NewStorageError("write export", err)
	}
	return nil
}

// Import reads an export file, checks its shape and migrates it.
func Import(r io.Reader, migrator *schema.Migrator) (*schema.Outcome, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewStorageError("read import", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidJSON.New().WithCause(err)
	}
	obj, _ := raw.(map[string]any)
	if _, ok := obj["nodes"].([]any); !ok {
		return nil, ErrMissingNodes.New()
	}
	if _, ok := obj["edges"].([]any); !ok {
		return nil, ErrMissingEdges.New()
	}

	return migrator.MigrateWithHistory(obj)
}
