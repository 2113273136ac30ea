package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/entitymap/pkg/core/canvas"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/errors"
)

// =============================================================================
// Snapshot API
// =============================================================================

// FromCanvas snapshots a canvas. Edges are those of the canvas's most
// recent redraw.
func FromCanvas(id string, c *canvas.Canvas) Diagram {
	d := New(id, c.Nodes(), c.Edges())
	d.Resolve = resolveName(c.Resolver())
	return d
}

// Restore loads the snapshot's nodes into c, replacing what it shows.
func (d Diagram) Restore(c *canvas.Canvas) {
	c.Restore(d.DiagramNodes())
}

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(d Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a snapshot as JSON to an io.Writer.
func Write(d Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(d Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(d, f)
}

// Read decodes and validates a snapshot.
func Read(r io.Reader) (Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode diagram")
	}
	if err := d.Validate(); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// ReadFile reads a snapshot from a JSON file.
func ReadFile(path string) (Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Diagram{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram %s", path)
		}
		return Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Validate checks version, node IDs and uniqueness.
func (d Diagram) Validate() error {
	if d.Version > FormatVersion {
		return errors.New(errors.ErrCodeUnsupported, "diagram version %d is newer than %d", d.Version, FormatVersion)
	}
	if err := errors.ValidateResolveMode(d.Resolve); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if err := errors.ValidateEntityID(n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeConflict, "duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func resolveName(r diagram.Resolver) string {
	if _, ok := r.(diagram.ResolveByShortName); ok {
		return diagram.ModeShortName
	}
	return diagram.ModeID
}
