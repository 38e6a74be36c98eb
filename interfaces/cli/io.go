package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/entities"
	"mindcanvas/infrastructure/persistence/filestore"
	"mindcanvas/infrastructure/persistence/schema"
)

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func readAll(cmd *cobra.Command, path string) ([]byte, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// readDocument loads a canvas document file and migrates it.
func readDocument(cmd *cobra.Command, path string, migrator *schema.Migrator) (*schema.Outcome, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	outcome, err := filestore.Import(r, migrator)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return outcome, nil
}

// readConceptGraph loads a generated graph in the model's response shape.
func readConceptGraph(cmd *cobra.Command, path string) (*entities.ConceptGraph, error) {
	data, err := readAll(cmd, path)
	if err != nil {
		return nil, err
	}
	var graph entities.ConceptGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("%s: invalid concept graph: %w", path, err)
	}
	return &graph, nil
}

// writeDocument writes doc to --out, or stdout when no file is given.
func (o *options) writeDocument(cmd *cobra.Command, doc *aggregates.CanvasDocument) error {
	if o.out == "" {
		return filestore.Export(cmd.OutOrStdout(), doc)
	}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := filestore.Export(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	Good.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", o.out)
	return nil
}

// summary prints what a document holds to stderr.
func summary(cmd *cobra.Command, verb string, doc *aggregates.CanvasDocument, direction fmt.Stringer) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s nodes, %s edges %s\n",
		verb,
		Brand.Sprint(len(doc.Nodes)),
		Brand.Sprint(len(doc.Edges)),
		Subtle.Sprintf("(%s)", direction),
	)
}
