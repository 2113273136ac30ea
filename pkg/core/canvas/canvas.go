// Package canvas is the host-facing facade over the diagram engine.
//
// A [Canvas] owns the node [diagram.Registry], the placement engine, the edge
// renderer, and the drag controller, and exposes the few operations a host UI
// needs: add and remove entity boxes, clear, report that a node's content has
// rendered, redraw edges after a zoom or resize, and forward pointer events.
//
// # Content-rendered signal
//
// A node's size is only known once the host has loaded and laid out its
// content. Rather than waiting a fixed settle delay and hoping layout has
// finished, the host calls [Canvas.Rendered] with the final size. The first
// such call for a child node runs placement against the current snapshot;
// every call redraws the edges.
//
// # Concurrency
//
// A Canvas is not safe for concurrent use. Hosts that accept concurrent
// callers must serialise access.
package canvas

import (
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/drag"
	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/core/placement"
	"github.com/matzehuels/entitymap/pkg/observability"
)

// Ref is a request to show an entity class.
type Ref struct {
	ID       string
	ParentID string

	// Position is used for roots only; children are placed by the engine.
	Position diagram.Position
}

// Canvas is a live diagram bound to a drawing surface.
type Canvas struct {
	registry *diagram.Registry
	resolver diagram.Resolver
	engine   placement.Engine
	renderer *edges.Renderer
	drag     *drag.Controller
	surface  edges.Surface
	onReset  func()

	deleteControl float64
	markerRadius  float64
	last          []edges.Edge
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithResolver selects how child nodes find their parent.
func WithResolver(r diagram.Resolver) Option {
	return func(c *Canvas) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithEngine replaces the default placement engine.
func WithEngine(e placement.Engine) Option {
	return func(c *Canvas) { c.engine = e }
}

// WithDeleteControl sets the side of each node's delete control square.
func WithDeleteControl(side float64) Option {
	return func(c *Canvas) { c.deleteControl = side }
}

// WithMarkerRadius sets the radius of edge endpoint markers.
func WithMarkerRadius(r float64) Option {
	return func(c *Canvas) { c.markerRadius = r }
}

// WithResetFunc registers fn to run when removing a node leaves the canvas
// empty. Hosts use it to reset their root selector.
func WithResetFunc(fn func()) Option {
	return func(c *Canvas) { c.onReset = fn }
}

// New returns an empty canvas drawing onto surface. A nil surface is allowed
// until the host mounts one with [Canvas.Mount].
func New(surface edges.Surface, opts ...Option) *Canvas {
	c := &Canvas{
		registry:      diagram.NewRegistry(),
		resolver:      diagram.ResolveByID{},
		engine:        placement.Default(),
		surface:       surface,
		deleteControl: drag.DefaultDeleteControlSize,
		markerRadius:  edges.DefaultMarkerRadius,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.renderer = &edges.Renderer{Resolver: c.resolver, MarkerRadius: c.markerRadius}
	c.drag = drag.New(c.registry, c.RedrawEdges, drag.WithDeleteControlSize(c.deleteControl))
	return c
}

// Mount swaps the drawing surface and redraws onto it.
func (c *Canvas) Mount(s edges.Surface) {
	c.surface = s
	c.RedrawEdges()
}

// Add shows an entity. It reports false when the entity is already visible.
// The node has no size until [Canvas.Rendered] is called for it.
func (c *Canvas) Add(ref Ref) bool {
	n := diagram.Node{ID: ref.ID, ParentID: ref.ParentID}
	if n.IsRoot() {
		n.Position = ref.Position
	}
	return c.registry.Add(n)
}

// Rendered records the final content size of a node. On a child's first
// render it also computes the node's position. Edges are redrawn either way.
// It returns the node's position and false for an unknown ID.
func (c *Canvas) Rendered(id string, size diagram.Size) (diagram.Position, bool) {
	n, ok := c.registry.Node(id)
	if !ok {
		return diagram.Position{}, false
	}
	first := !n.Rendered
	c.registry.SetSize(id, size)

	if first && !n.IsRoot() {
		n.Size = size
		res := c.engine.Place(n, c.registry.List(), c.resolver)
		if res.Resolved {
			c.registry.SetPosition(id, res.Position)
		}
		observability.Diagram().OnPlace(id, res.Iterations, res.Exhausted)
	}

	c.RedrawEdges()
	n, _ = c.registry.Node(id)
	return n.Position, true
}

// Remove hides an entity. When this empties the canvas the reset callback
// runs once.
func (c *Canvas) Remove(id string) bool {
	if !c.registry.Remove(id) {
		return false
	}
	c.RedrawEdges()
	if c.registry.Len() == 0 && c.onReset != nil {
		c.onReset()
	}
	return true
}

// Clear hides every entity without firing the reset callback; the host
// clears when it has already switched root selection.
func (c *Canvas) Clear() {
	c.drag.End()
	c.registry.Clear()
	c.RedrawEdges()
}

// Restore replaces the canvas contents with nodes exactly as given, keeping
// their positions and sizes, and redraws once. Duplicate IDs after the first
// are dropped. It is used to reload a saved diagram.
func (c *Canvas) Restore(nodes []diagram.Node) {
	c.drag.End()
	c.registry.Clear()
	for _, n := range nodes {
		n.DragTarget = false
		c.registry.Add(n)
	}
	c.RedrawEdges()
}

// Nodes returns a snapshot of the visible nodes in draw order.
func (c *Canvas) Nodes() []diagram.Node { return c.registry.List() }

// Node returns one visible node.
func (c *Canvas) Node(id string) (diagram.Node, bool) { return c.registry.Node(id) }

// Len returns the number of visible nodes.
func (c *Canvas) Len() int { return c.registry.Len() }

// Edges returns the edges drawn by the most recent redraw.
func (c *Canvas) Edges() []edges.Edge { return c.last }

// Resolver returns the parent resolver in use.
func (c *Canvas) Resolver() diagram.Resolver { return c.resolver }

// RedrawEdges clears the surface and draws every edge again. Hosts call it
// after anything that moves or resizes nodes outside a drag.
func (c *Canvas) RedrawEdges() {
	if c.surface == nil {
		c.last = nil
		return
	}
	c.last = c.renderer.Redraw(c.registry.List(), c.surface)
}

// Hit returns the topmost node under p, and whether p is on its delete
// control.
func (c *Canvas) Hit(p geom.Point) (n diagram.Node, onDelete bool, ok bool) {
	nodes := c.registry.List()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Bounds().Contains(p) {
			return nodes[i], c.drag.DeleteControl(nodes[i]).Contains(p), true
		}
	}
	return diagram.Node{}, false, false
}

// BeginDrag starts dragging a node from pointer-down at p.
func (c *Canvas) BeginDrag(id string, p geom.Point) bool { return c.drag.Begin(id, p) }

// MoveDrag follows a pointer-move during a drag.
func (c *Canvas) MoveDrag(p geom.Point) bool { return c.drag.Move(p) }

// EndDrag finishes the active drag on pointer-up.
func (c *Canvas) EndDrag() { c.drag.End() }

// Dragging returns the ID of the node being dragged.
func (c *Canvas) Dragging() (string, bool) {
	s, ok := c.drag.Session()
	return s.NodeID, ok
}
