package graph

import (
	"github.com/google/uuid"

	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/geom"
)

// FormatVersion is the snapshot format written by this package.
const FormatVersion = 1

// Diagram is a serialised canvas.
type Diagram struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Resolve string `json:"resolve,omitempty"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Node is one visible entity box.
type Node struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rendered bool    `json:"rendered,omitempty"`
}

// Point is an edge anchor.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is one drawn parent-child connection.
type Edge struct {
	ParentID string `json:"parent"`
	ChildID  string `json:"child"`
	From     Point  `json:"from"`
	To       Point  `json:"to"`
	Class    string `json:"class"`
}

// NewID returns a fresh diagram ID.
func NewID() string {
	return uuid.NewString()
}

// New converts engine state into a snapshot. An empty id gets a new one.
func New(id string, nodes []diagram.Node, es []edges.Edge) Diagram {
	if id == "" {
		id = NewID()
	}
	d := Diagram{
		ID:      id,
		Version: FormatVersion,
		Nodes:   make([]Node, len(nodes)),
		Edges:   make([]Edge, len(es)),
	}
	for i, n := range nodes {
		d.Nodes[i] = Node{
			ID:       n.ID,
			ParentID: n.ParentID,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Width:    n.Size.Width,
			Height:   n.Size.Height,
			Rendered: n.Rendered,
		}
	}
	for i, e := range es {
		d.Edges[i] = Edge{
			ParentID: e.ParentID,
			ChildID:  e.ChildID,
			From:     Point(e.From),
			To:       Point(e.To),
			Class:    e.Class,
		}
	}
	return d
}

// DiagramNodes converts the snapshot's nodes back to engine nodes.
func (d Diagram) DiagramNodes() []diagram.Node {
	out := make([]diagram.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = diagram.Node{
			ID:       n.ID,
			ParentID: n.ParentID,
			Position: diagram.Position{X: n.X, Y: n.Y},
			Size:     diagram.Size{Width: n.Width, Height: n.Height},
			Rendered: n.Rendered,
		}
	}
	return out
}

// DiagramEdges converts the snapshot's edges back to engine edges.
func (d Diagram) DiagramEdges() []edges.Edge {
	out := make([]edges.Edge, len(d.Edges))
	for i, e := range d.Edges {
		out[i] = edges.Edge{
			ParentID: e.ParentID,
			ChildID:  e.ChildID,
			From:     geom.Point(e.From),
			To:       geom.Point(e.To),
			Class:    e.Class,
		}
	}
	return out
}
