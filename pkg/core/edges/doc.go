// Package edges derives the connecting lines of a diagram and draws them onto
// a shared [Surface].
//
// Edges are not stored anywhere. [Compute] walks a snapshot of visible nodes
// and produces at most one [Edge] per non-root node whose parent the
// [diagram.Resolver] can find; unresolved nodes simply get no line.
//
// # Anchors
//
// A line normally runs from the middle of the parent's right edge to the
// middle of the child's left edge. When the child has been dragged to the
// left of the parent, the origin moves to the parent's left edge so the line
// does not cut through the parent box; if the origin is then still right of
// the terminus, the terminus moves to the child's right edge so the line
// approaches from the near side.
//
// # Redraw policy
//
// [Renderer.Redraw] always clears the surface and draws every edge again.
// Diagrams hold a handful of nodes, so diffing would cost more than it saves.
package edges
