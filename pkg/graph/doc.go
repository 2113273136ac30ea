// Package graph provides the serialization format for diagram snapshots.
//
// A [Diagram] captures everything needed to redraw or reload a canvas: the
// visible nodes with their positions and sizes, and the edges computed by
// the most recent redraw. It is the JSON served by the HTTP host, written by
// "entitymap render --format json", and read back by "--restore".
//
// # Format
//
//	{
//	  "id": "5f0c...",
//	  "version": 1,
//	  "resolve": "id",
//	  "nodes": [
//	    {"id": "shop.Order", "x": 0, "y": 0, "width": 100, "height": 50, "rendered": true},
//	    {"id": "shop.Customer", "parent": "shop.Order", "x": 115, "y": 0, ...}
//	  ],
//	  "edges": [
//	    {"parent": "shop.Order", "child": "shop.Customer",
//	     "from": {"x": 100, "y": 25}, "to": {"x": 115, "y": 20},
//	     "class": "edge-Order-Customer"}
//	  ]
//	}
//
// Nodes keep draw order, which is also placement order, so reloading a
// snapshot reproduces the same conflict checks for later additions.
//
// # Identity
//
// Every diagram carries a random UUID from [NewID]. Hosts keep one ID per
// session so cached renders and saved files can be traced back to it.
package graph
