package diagram

import (
	"strings"

	"github.com/matzehuels/entitymap/pkg/core/geom"
)

// Position is the top-left corner of a node on the canvas.
type Position = geom.Point

// Size is the rendered width and height of a node's box.
type Size struct {
	Width, Height float64
}

// Node is one visible entity class box.
type Node struct {
	ID       string
	ParentID string
	Position Position
	Size     Size

	// Rendered is set once the host has reported the final size of the
	// node's content. Size is meaningless before that.
	Rendered bool

	// DragTarget marks the node while another node is being dragged.
	// It is cosmetic.
	DragTarget bool
}

// IsRoot reports whether the node has no parent reference.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// Bounds returns the node's bounding box.
func (n Node) Bounds() geom.Rect {
	return geom.Rect{Left: n.Position.X, Top: n.Position.Y, Width: n.Size.Width, Height: n.Size.Height}
}

// ShortName returns the node's class name without its package qualifier.
func (n Node) ShortName() string { return ShortName(n.ID) }

// ShortName returns the last dot-separated segment of a fully-qualified
// entity class identifier.
//
//	ShortName("com.acme.sales.Order") // "Order"
//	ShortName("Order")                // "Order"
func ShortName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
