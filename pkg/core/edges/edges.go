package edges

import (
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/observability"
)

// DefaultMarkerRadius is the radius of the dot drawn at each anchor.
const DefaultMarkerRadius = 3.0

// Edge is a derived connection from a parent node to a child node.
type Edge struct {
	ParentID string
	ChildID  string
	From     geom.Point
	To       geom.Point

	// Class names the edge for styling, e.g. "edge-Order-Customer".
	Class string
}

// Surface is a drawing target that edges are rendered onto.
type Surface interface {
	// Clear removes everything previously drawn.
	Clear()

	// Marker draws a filled circle of radius r centred on p.
	Marker(p geom.Point, r float64, class string)

	// Segment draws a straight line from one point to another.
	Segment(from, to geom.Point, class string)
}

// Compute returns the edges for nodes in draw order. It is pure.
func Compute(nodes []diagram.Node, resolver diagram.Resolver) []Edge {
	if resolver == nil {
		resolver = diagram.ResolveByID{}
	}
	var out []Edge
	for _, child := range nodes {
		if child.IsRoot() {
			continue
		}
		parent, ok := resolver.Parent(child, nodes)
		if !ok {
			continue
		}
		from, to := Anchors(parent.Bounds(), child.Bounds())
		out = append(out, Edge{
			ParentID: parent.ID,
			ChildID:  child.ID,
			From:     from,
			To:       to,
			Class:    ClassName(parent.ID, child.ID),
		})
	}
	return out
}

// Anchors returns the start and end points of a line from parent to child.
func Anchors(parent, child geom.Rect) (from, to geom.Point) {
	from = parent.MidRight()
	to = child.MidLeft()
	if parent.Left > child.Left {
		from.X = parent.Left
	}
	if from.X > to.X {
		to.X = child.Right()
	}
	return from, to
}

// ClassName returns the styling class for an edge between two entity IDs.
func ClassName(parentID, childID string) string {
	return "edge-" + diagram.ShortName(parentID) + "-" + diagram.ShortName(childID)
}

// Renderer redraws all edges of a diagram.
type Renderer struct {
	Resolver     diagram.Resolver
	MarkerRadius float64
}

// NewRenderer returns a renderer using resolver and the default marker size.
func NewRenderer(resolver diagram.Resolver) *Renderer {
	return &Renderer{Resolver: resolver, MarkerRadius: DefaultMarkerRadius}
}

// Redraw clears s and draws a marker at both anchors plus a segment for every
// edge. A nil surface is not yet mounted and is skipped. Redraw returns the
// edges it drew.
func (r *Renderer) Redraw(nodes []diagram.Node, s Surface) []Edge {
	if s == nil {
		return nil
	}
	s.Clear()
	edges := Compute(nodes, r.Resolver)
	for _, e := range edges {
		s.Marker(e.From, r.MarkerRadius, e.Class)
		s.Marker(e.To, r.MarkerRadius, e.Class)
		s.Segment(e.From, e.To, e.Class)
	}
	observability.Diagram().OnRedraw(len(nodes), len(edges))
	return edges
}
