// Package drag turns pointer input into live position updates for a single
// diagram node.
//
// A session starts with [Controller.Begin] on pointer-down, follows every
// [Controller.Move], and ends with [Controller.End] on pointer-up. Each move
// repositions the node and synchronously triggers one edge redraw so the
// connecting lines track the pointer. While a session is active every other
// node carries the cosmetic drag target flag.
//
// Pointer-down inside a node's delete control never starts a drag; the host
// handles that press as a removal instead.
package drag

import (
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/observability"
)

// DefaultDeleteControlSize is the side of the delete control square in the
// top-right corner of every node.
const DefaultDeleteControlSize = 16.0

// Store is the node state a drag operates on. [diagram.Registry] implements it.
type Store interface {
	Node(id string) (diagram.Node, bool)
	List() []diagram.Node
	SetPosition(id string, p diagram.Position) bool
	SetDragTarget(id string, on bool) bool
}

// Session is the state of an active drag.
type Session struct {
	NodeID string

	// Offset is the pointer position relative to the node's top-left
	// corner at pointer-down.
	Offset geom.Point

	// Moves counts pointer-move events handled so far.
	Moves int
}

// Controller tracks at most one drag session.
type Controller struct {
	store             Store
	redraw            func()
	deleteControlSize float64
	session           *Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithDeleteControlSize sets the side of the delete control square.
func WithDeleteControlSize(side float64) Option {
	return func(c *Controller) { c.deleteControlSize = side }
}

// New returns a controller over store. redraw is called once per move; it
// may be nil.
func New(store Store, redraw func(), opts ...Option) *Controller {
	c := &Controller{
		store:             store,
		redraw:            redraw,
		deleteControlSize: DefaultDeleteControlSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeleteControl returns the delete control bounds of n.
func (c *Controller) DeleteControl(n diagram.Node) geom.Rect {
	return n.Bounds().CornerSquare(c.deleteControlSize)
}

// Begin starts dragging the node with the given ID. It reports false and
// changes nothing when the node is unknown or the pointer is on its delete
// control. Beginning a new drag ends any session still active.
func (c *Controller) Begin(id string, pointer geom.Point) bool {
	n, ok := c.store.Node(id)
	if !ok {
		return false
	}
	if c.DeleteControl(n).Contains(pointer) {
		return false
	}
	if c.session != nil {
		c.End()
	}

	c.session = &Session{NodeID: id, Offset: pointer.Sub(n.Position)}
	for _, other := range c.store.List() {
		if other.ID != id {
			c.store.SetDragTarget(other.ID, true)
		}
	}
	observability.Diagram().OnDragStart(id)
	return true
}

// Move places the dragged node under the pointer, keeping the offset
// recorded at Begin, and redraws. It reports false when no drag is active.
// A node removed mid-drag is not moved but the redraw still runs.
func (c *Controller) Move(pointer geom.Point) bool {
	if c.session == nil {
		return false
	}
	c.session.Moves++
	c.store.SetPosition(c.session.NodeID, pointer.Sub(c.session.Offset))
	if c.redraw != nil {
		c.redraw()
	}
	return true
}

// End clears the drag target flags and closes the session. It is a no-op
// without an active drag.
func (c *Controller) End() {
	if c.session == nil {
		return
	}
	s := c.session
	c.session = nil
	for _, other := range c.store.List() {
		if other.ID != s.NodeID {
			c.store.SetDragTarget(other.ID, false)
		}
	}
	observability.Diagram().OnDragEnd(s.NodeID, s.Moves)
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool { return c.session != nil }

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}
