// Package placement chooses the initial position of a newly rendered child
// node so that it sits in a row to the right of its parent without
// overlapping its neighbours.
//
// # Algorithm
//
// The first candidate column starts [Engine.Gap] units right of the parent's
// right edge, level with the parent's top. Any visible node that shares the
// candidate's vertical band and sits within Gap of the candidate horizontally
// is a conflict; the first conflict in draw order pushes the candidate to that
// node's right edge plus Gap and the check repeats. Candidates only ever move
// right, so each push clears the node that caused it.
//
// The search stops after [Engine.MaxIterations] conflict checks. On
// exhaustion the last candidate is accepted even though it may overlap: the
// engine targets a handful of visible nodes and prefers a visible glitch to an
// unbounded loop.
//
// Roots and nodes whose parent is not visible are left at the origin; the
// host positions them.
package placement

import (
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
)

// Defaults for [Engine].
const (
	DefaultGap           = 15.0
	DefaultMaxIterations = 100
)

// Engine configures the push-right search.
type Engine struct {
	// Gap is the minimum horizontal distance between a placed node and
	// both its parent and any node it was pushed past.
	Gap float64

	// MaxIterations bounds the number of conflict checks.
	MaxIterations int
}

// Default returns an engine with the standard 15 unit gap and 100 iteration
// budget.
func Default() Engine {
	return Engine{Gap: DefaultGap, MaxIterations: DefaultMaxIterations}
}

// Result is the outcome of a placement.
type Result struct {
	Position diagram.Position

	// Resolved is false when the node is a root or its parent is not among
	// the visible nodes; Position is then the origin.
	Resolved bool

	// Iterations counts conflict checks performed, including the final
	// conflict-free one.
	Iterations int

	// Exhausted is set when the iteration budget ran out before a free
	// column was found.
	Exhausted bool
}

// Place computes a position for node among existing. The node itself may
// appear in existing; it is ignored. Place does not modify its inputs.
func (e Engine) Place(node diagram.Node, existing []diagram.Node, resolver diagram.Resolver) Result {
	if resolver == nil {
		resolver = diagram.ResolveByID{}
	}
	parent, ok := resolver.Parent(node, existing)
	if !ok {
		return Result{}
	}

	pb := parent.Bounds()
	height := node.Size.Height
	if height <= 0 {
		height = pb.Height
	}

	budget := e.MaxIterations
	if budget <= 0 {
		budget = DefaultMaxIterations
	}

	x := pb.Right() + e.Gap
	res := Result{Resolved: true}
	for res.Iterations < budget {
		res.Iterations++
		blocker, found := e.firstConflict(node, existing, x, pb.Top, height)
		if !found {
			res.Position = diagram.Position{X: x, Y: pb.Top}
			return res
		}
		x = blocker.Right() + e.Gap
	}

	res.Position = diagram.Position{X: x, Y: pb.Top}
	res.Exhausted = true
	return res
}

// firstConflict returns the bounds of the first node, in draw order, that
// shares the band [top, top+height) and is within Gap of a box at x.
func (e Engine) firstConflict(node diagram.Node, existing []diagram.Node, x, top, height float64) (geom.Rect, bool) {
	for _, n := range existing {
		if n.ID == node.ID {
			continue
		}
		b := n.Bounds()
		if !b.OverlapsVertically(top, height) {
			continue
		}
		if !b.ClearsWithGap(x, node.Size.Width, e.Gap) {
			return b, true
		}
	}
	return geom.Rect{}, false
}
