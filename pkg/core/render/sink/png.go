package sink

import (
	"io"

	"github.com/fogleman/gg"

	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/fonts"
)

// PNGOption configures a [PNGSurface].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	margin     float64
	padding    float64
	fontSize   float64
	deleteSize float64
}

// WithScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGMargin sets the blank border around the drawing.
func WithPNGMargin(m float64) PNGOption { return func(r *pngRenderer) { r.margin = m } }

// WithPNGPadding sets the inner padding of node boxes.
func WithPNGPadding(p float64) PNGOption { return func(r *pngRenderer) { r.padding = p } }

// WithPNGFontSize sets the text size in diagram units.
func WithPNGFontSize(s float64) PNGOption { return func(r *pngRenderer) { r.fontSize = s } }

// WithPNGDeleteControl sets the delete control side. Zero hides it.
func WithPNGDeleteControl(side float64) PNGOption {
	return func(r *pngRenderer) { r.deleteSize = side }
}

// PNGSurface rasterises edges and boxes with gg. The extent is fixed at
// construction, so size it from the boxes that will be drawn.
type PNGSurface struct {
	dc *gg.Context
	r  pngRenderer
}

// NewPNGSurface allocates a raster covering the boxes' extent.
func NewPNGSurface(boxes []Box, opts ...PNGOption) (*PNGSurface, error) {
	r := pngRenderer{scale: 2.0, margin: 20, padding: 6, fontSize: fonts.DefaultSize, deleteSize: 16}
	for _, opt := range opts {
		opt(&r)
	}
	face, err := fonts.Mono(r.fontSize * r.scale)
	if err != nil {
		return nil, err
	}

	ext := Extent(boxes, r.margin)
	dc := gg.NewContext(int(ext.Width*r.scale+0.5), int(ext.Height*r.scale+0.5))
	dc.Scale(r.scale, r.scale)
	dc.Translate(-ext.Left, -ext.Top)
	dc.SetFontFace(face.FontFace())

	s := &PNGSurface{dc: dc, r: r}
	s.Clear()
	return s, nil
}

func (s *PNGSurface) Clear() {
	s.dc.Push()
	s.dc.Identity()
	s.dc.SetRGB(1, 1, 1)
	s.dc.Clear()
	s.dc.Pop()
}

func (s *PNGSurface) Marker(p geom.Point, r float64, _ string) {
	s.dc.SetRGB255(0x55, 0x55, 0x55)
	s.dc.DrawCircle(p.X, p.Y, r)
	s.dc.Fill()
}

func (s *PNGSurface) Segment(from, to geom.Point, _ string) {
	s.dc.SetRGB255(0x55, 0x55, 0x55)
	s.dc.SetLineWidth(1.2)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
}

// DrawBoxes paints node boxes over whatever edges are on the surface.
func (s *PNGSurface) DrawBoxes(boxes []Box) {
	for _, b := range boxes {
		s.drawBox(b)
	}
}

func (s *PNGSurface) drawBox(b Box) {
	dc := s.dc
	rc := b.Rect

	dc.DrawRoundedRectangle(rc.Left, rc.Top, rc.Width, rc.Height, 3)
	dc.SetRGB(1, 1, 1)
	dc.FillPreserve()
	if b.DragTarget {
		dc.SetRGB255(0x3b, 0x82, 0xf6)
		dc.SetDash(4, 2)
	} else {
		dc.SetRGB255(0x33, 0x33, 0x33)
	}
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.SetDash()

	line := s.r.fontSize * fonts.LineSpacing
	x := rc.Left + s.r.padding
	y := rc.Top + s.r.padding + s.r.fontSize
	dc.SetRGB255(0x11, 0x11, 0x11)
	dc.DrawString(b.Title, x, y)
	dc.SetRGB255(0x44, 0x44, 0x44)
	for _, row := range b.Rows {
		y += line
		dc.DrawString(row, x, y)
	}

	if s.r.deleteSize > 0 {
		d := rc.CornerSquare(s.r.deleteSize)
		dc.DrawRectangle(d.Left, d.Top, d.Width, d.Height)
		dc.SetRGB255(0xf3, 0xf4, 0xf6)
		dc.FillPreserve()
		dc.SetRGB255(0x9c, 0xa3, 0xaf)
		dc.Stroke()
		dc.SetRGB255(0x6b, 0x72, 0x80)
		dc.DrawStringAnchored("x", d.Left+d.Width/2, d.MidY(), 0.5, 0.35)
	}
}

// Bounds reports the raster size in pixels.
func (s *PNGSurface) Bounds() (width, height int) {
	return s.dc.Width(), s.dc.Height()
}

// Encode writes the raster as PNG.
func (s *PNGSurface) Encode(w io.Writer) error {
	return s.dc.EncodePNG(w)
}
