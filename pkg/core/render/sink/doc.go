// Package sink provides the drawing surfaces a diagram canvas renders onto,
// and writers that turn a drawn surface plus its node boxes into output.
//
// Every surface implements [edges.Surface], so the canvas can be mounted on
// any of them:
//
//   - [SVGSurface] records markers and segments and writes an SVG document with
//     [SVGSurface.WriteDocument].
//   - [PNGSurface] rasterises directly with gg and encodes with [PNGSurface.Encode].
//   - [GridSurface] is a terminal cell grid used by the interactive explorer.
//
// Edges are drawn first and node boxes on top, so a line never paints over
// a box's content.
package sink
