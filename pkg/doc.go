// Package pkg provides the core libraries for entitymap entity-class diagrams.
//
// # Overview
//
// Entitymap draws entity classes as boxes. Drilling into a class shows a
// related class to the right of its parent, pushed further right until it
// clears every box it would overlap. Connectors run from each parent to its
// children and are redrawn whenever a box is placed, dragged or removed.
//
// # Architecture
//
// The typical data flow through entitymap:
//
//	Host event (add, drill, drag, remove)
//	         ↓
//	    [core/canvas] (registry, placement, drag, redraw)
//	         ↓
//	    [core/edges] (anchors and classes, drawn onto a Surface)
//	         ↓
//	    [core/render/sink] SVG, PNG or terminal grid
//
// # Quick Start
//
//	surface := sink.NewSVGSurface()
//	c := canvas.New(surface, canvas.WithResolver(diagram.ResolveByID{}))
//
//	c.Add(canvas.Ref{ID: "shop.Customer"})
//	c.Rendered("shop.Customer", diagram.Size{Width: 100, Height: 50})
//
//	c.Add(canvas.Ref{ID: "shop.Order", ParentID: "shop.Customer"})
//	pos, _ := c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
//	// pos is (115, 0)
//
//	svg := surface.Document(sink.Boxes(c.Nodes(), nil))
//
// # Main Packages
//
// ## Engine
//
// [core/geom] - Points and rectangles.
//
// [core/diagram] - Nodes, the node registry and parent resolution.
//
// [core/placement] - The push-right placement engine.
//
// [core/edges] - Edge geometry and the redraw that clears and repaints a
// surface.
//
// [core/drag] - Pointer drag sessions with the delete-control guard.
//
// [core/canvas] - The facade hosts drive.
//
// ## Output
//
// [core/render/sink] - SVG, PNG and terminal grid surfaces.
//
// [core/render/nodelink] - DOT export and Graphviz rendering.
//
// [core/render] - SVG to PDF conversion.
//
// ## Hosts
//
// [catalog] - Entity classes and asynchronous content loading.
//
// [scene] - Scripted host operations replayed against a canvas.
//
// [session] - Mutex-guarded canvases for concurrent hosts.
//
// [graph] - JSON snapshots of a canvas.
//
// [cache] - Artifact cache for rendered output.
//
// [core/canvas]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/canvas
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/geom
// [core/diagram]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/diagram
// [core/placement]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/placement
// [core/edges]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/edges
// [core/drag]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/drag
// [core/render]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/render
// [core/render/sink]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/render/sink
// [core/render/nodelink]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/core/render/nodelink
// [catalog]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/catalog
// [scene]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/scene
// [session]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/session
// [graph]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/entitymap/pkg/cache
package pkg
