// Package nodelink exports a placed diagram to Graphviz.
//
// The diagram's positions are already decided by the placement engine and
// by dragging, so nodes are written with pinned positions (pos="x,y!") and
// rendered with the neato engine, which honours them:
//
//	boxes, edges → ToDOT() → DOT → RenderSVG() → SVG
//
// The DOT text is useful on its own for further processing with the
// Graphviz tool chain. Graphviz uses a y-up coordinate system, so y values
// are negated on export.
package nodelink
