package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/entitymap/pkg/core/canvas"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/errors"
)

type nopSurface struct{}

func (nopSurface) Clear()                                 {}
func (nopSurface) Marker(geom.Point, float64, string)     {}
func (nopSurface) Segment(geom.Point, geom.Point, string) {}

func buildCanvas(opts ...canvas.Option) *canvas.Canvas {
	c := canvas.New(nopSurface{}, opts...)
	c.Add(canvas.Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(canvas.Ref{ID: "shop.Customer", ParentID: "shop.Order"})
	c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 40})
	return c
}

func TestFromCanvas(t *testing.T) {
	d := FromCanvas("fixed", buildCanvas())

	if d.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", d.ID)
	}
	if d.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", d.Version, FormatVersion)
	}
	if d.Resolve != diagram.ModeID {
		t.Errorf("Resolve = %q, want %q", d.Resolve, diagram.ModeID)
	}
	if len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges; want 2, 1", len(d.Nodes), len(d.Edges))
	}

	child := d.Nodes[1]
	if child.ParentID != "shop.Order" || child.X != 115 || child.Y != 0 {
		t.Errorf("child = %+v", child)
	}
	e := d.Edges[0]
	if e.From != (Point{X: 100, Y: 25}) || e.To != (Point{X: 115, Y: 20}) {
		t.Errorf("edge anchors = %+v -> %+v", e.From, e.To)
	}
	if e.Class != "edge-Order-Customer" {
		t.Errorf("edge class = %q", e.Class)
	}
}

func TestFromCanvas_ShortNameMode(t *testing.T) {
	d := FromCanvas("", buildCanvas(canvas.WithResolver(diagram.ResolveByShortName{})))

	if d.Resolve != diagram.ModeShortName {
		t.Errorf("Resolve = %q, want %q", d.Resolve, diagram.ModeShortName)
	}
	if d.ID == "" {
		t.Error("empty id should be replaced with a fresh one")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID() returned the same value twice")
	}
	if len(a) != 36 {
		t.Errorf("NewID() = %q, want a UUID", a)
	}
}

func TestRoundTrip(t *testing.T) {
	orig := FromCanvas("round", buildCanvas())

	data, err := Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.ID != orig.ID || len(got.Nodes) != len(orig.Nodes) || len(got.Edges) != len(orig.Edges) {
		t.Errorf("round trip changed diagram: %+v", got)
	}
	if got.Nodes[1] != orig.Nodes[1] {
		t.Errorf("node = %+v, want %+v", got.Nodes[1], orig.Nodes[1])
	}
}

func TestRestore(t *testing.T) {
	d := FromCanvas("r", buildCanvas())
	d.Nodes[1].X, d.Nodes[1].Y = 400, 80

	c := canvas.New(nopSurface{})
	d.Restore(c)

	n, ok := c.Node("shop.Customer")
	if !ok {
		t.Fatal("restored canvas missing shop.Customer")
	}
	if n.Position != (diagram.Position{X: 400, Y: 80}) {
		t.Errorf("Position = %+v, want saved position", n.Position)
	}
	if len(c.Edges()) != 1 {
		t.Errorf("restored canvas has %d edges, want 1", len(c.Edges()))
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := WriteFile(FromCanvas("f", buildCanvas()), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}

	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if d.ID != "f" {
		t.Errorf("ID = %q", d.ID)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"not json", "{", errors.ErrCodeInvalidInput},
		{"future version", `{"version": 99, "nodes": []}`, errors.ErrCodeUnsupported},
		{"bad resolve", `{"version": 1, "resolve": "fuzzy"}`, errors.ErrCodeInvalidResolveMode},
		{"bad id", `{"version": 1, "nodes": [{"id": "a b"}]}`, errors.ErrCodeInvalidEntityID},
		{"duplicate", `{"version": 1, "nodes": [{"id": "a"}, {"id": "a"}]}`, errors.ErrCodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %s", err, tt.code)
			}
		})
	}
}
