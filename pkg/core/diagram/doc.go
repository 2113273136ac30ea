// Package diagram holds the node data model and the ordered registry of
// visible nodes.
//
// A [Node] is one entity class rendered as a box. Its ID is the
// fully-qualified class name; its ParentID names the node it was drilled
// from, or is empty for a root. Edges are never stored: they are derived from
// ParentID whenever the diagram is drawn, using a [Resolver] to find the
// parent among the visible nodes.
//
// # Registry
//
// [Registry] is the single owner of node state. Insertion order is draw order
// and defines "last added". At most one node exists per ID; adding a duplicate
// is a silent no-op. [Registry.List] returns a snapshot so placement and edge
// computation never observe a half-updated collection.
//
// # Parent resolution
//
// [ResolveByID] matches ParentID against node IDs exactly. [ResolveByShortName]
// reproduces the legacy behaviour of matching on the last dot-separated
// segment only; with it, a.b.Order and x.y.Order are indistinguishable and the
// first one added wins.
package diagram
