package sink

import (
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/fonts"
)

const diagramCSS = `
    .node { fill: #ffffff; stroke: #333333; stroke-width: 1; }
    .node.drag-target { stroke: #3b82f6; stroke-dasharray: 4 2; }
    .node-title { font-family: monospace; font-size: %.0fpx; font-weight: bold; fill: #111111; }
    .node-row { font-family: monospace; font-size: %.0fpx; fill: #444444; }
    .delete { fill: #f3f4f6; stroke: #9ca3af; }
    .delete-glyph { font-family: monospace; font-size: %.0fpx; fill: #6b7280; }
    .marker { fill: #555555; }
    .link { stroke: #555555; stroke-width: 1.2; fill: none; }`

// SVGOption configures [SVGSurface.WriteDocument].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	margin      float64
	padding     float64
	fontSize    float64
	deleteSize  float64
	interactive bool
}

// WithMargin sets the blank border around the drawing.
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithPadding sets the inner padding of node boxes.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithFontSize sets the text size in pixels.
func WithFontSize(s float64) SVGOption { return func(r *svgRenderer) { r.fontSize = s } }

// WithDeleteControl sets the side of the square delete control drawn in each
// box's top-right corner. Zero hides it.
func WithDeleteControl(side float64) SVGOption {
	return func(r *svgRenderer) { r.deleteSize = side }
}

// WithInteractive tags node groups with data attributes for a browser host.
func WithInteractive() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

type svgElement struct {
	marker bool
	from   geom.Point
	to     geom.Point
	radius float64
	class  string
}

// SVGSurface records edge drawing calls as SVG elements.
type SVGSurface struct {
	elems []svgElement
}

// NewSVGSurface returns an empty surface.
func NewSVGSurface() *SVGSurface {
	return &SVGSurface{}
}

func (s *SVGSurface) Clear() {
	s.elems = s.elems[:0]
}

func (s *SVGSurface) Marker(p geom.Point, r float64, class string) {
	s.elems = append(s.elems, svgElement{marker: true, from: p, radius: r, class: class})
}

func (s *SVGSurface) Segment(from, to geom.Point, class string) {
	s.elems = append(s.elems, svgElement{from: from, to: to, class: class})
}

// Len reports the number of recorded elements.
func (s *SVGSurface) Len() int {
	return len(s.elems)
}

// WriteElements writes only the edge layer, one element per line.
func (s *SVGSurface) WriteElements(w io.Writer) error {
	var buf bytes.Buffer
	s.writeElements(&buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (s *SVGSurface) writeElements(buf *bytes.Buffer) {
	for _, e := range s.elems {
		if e.marker {
			fmt.Fprintf(buf, `  <circle class="marker %s" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
				EscapeXML(e.class), e.from.X, e.from.Y, e.radius)
			continue
		}
		fmt.Fprintf(buf, `  <line class="link %s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			EscapeXML(e.class), e.from.X, e.from.Y, e.to.X, e.to.Y)
	}
}

// WriteDocument writes a standalone SVG holding the recorded edges and the
// given boxes. The view box follows the boxes, so nodes dragged to negative
// coordinates stay visible.
func (s *SVGSurface) WriteDocument(w io.Writer, boxes []Box, opts ...SVGOption) error {
	_, err := w.Write(s.Document(boxes, opts...))
	return err
}

// Document is [SVGSurface.WriteDocument] returning bytes.
func (s *SVGSurface) Document(boxes []Box, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	ext := Extent(boxes, r.margin)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		ext.Left, ext.Top, ext.Width, ext.Height, ext.Width, ext.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", fmt.Sprintf(diagramCSS, r.fontSize, r.fontSize, r.fontSize))

	buf.WriteString(`  <g class="edges">` + "\n")
	s.writeElements(&buf)
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, b := range boxes {
		r.renderBox(&buf, b)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{margin: 20, padding: 6, fontSize: 12, deleteSize: 16}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderBox(buf *bytes.Buffer, b Box) {
	id := EscapeXML(b.ID)
	class := "node"
	if b.DragTarget {
		class += " drag-target"
	}

	if r.interactive {
		fmt.Fprintf(buf, `    <g id="node-%s" data-node="%s">`+"\n", id, id)
	} else {
		fmt.Fprintf(buf, `    <g id="node-%s">`+"\n", id)
	}
	fmt.Fprintf(buf, `      <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3"/>`+"\n",
		class, b.Rect.Left, b.Rect.Top, b.Rect.Width, b.Rect.Height)

	line := r.fontSize * fonts.LineSpacing
	x := b.Rect.Left + r.padding
	y := b.Rect.Top + r.padding + r.fontSize
	fmt.Fprintf(buf, `      <text class="node-title" x="%.1f" y="%.1f">%s</text>`+"\n", x, y, EscapeXML(b.Title))
	for _, row := range b.Rows {
		y += line
		fmt.Fprintf(buf, `      <text class="node-row" x="%.1f" y="%.1f">%s</text>`+"\n", x, y, EscapeXML(row))
	}

	if r.deleteSize > 0 {
		d := b.Rect.CornerSquare(r.deleteSize)
		fmt.Fprintf(buf, `      <rect class="delete" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			d.Left, d.Top, d.Width, d.Height)
		fmt.Fprintf(buf, `      <text class="delete-glyph" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central">×</text>`+"\n",
			d.Left+d.Width/2, d.MidY())
	}
	buf.WriteString("    </g>\n")
}
