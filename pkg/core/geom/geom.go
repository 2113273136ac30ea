package geom

// Point is a location on the canvas.
type Point struct {
	X, Y float64
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned bounding box anchored at its top-left corner.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// MidY returns the vertical center.
func (r Rect) MidY() float64 { return r.Top + r.Height/2 }

// MidLeft returns the middle of the left edge.
func (r Rect) MidLeft() Point { return Point{X: r.Left, Y: r.MidY()} }

// MidRight returns the middle of the right edge.
func (r Rect) MidRight() Point { return Point{X: r.Right(), Y: r.MidY()} }

// TopLeft returns the anchor corner.
func (r Rect) TopLeft() Point { return Point{X: r.Left, Y: r.Top} }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive so adjacent rects never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right() && p.Y >= r.Top && p.Y < r.Bottom()
}

// OverlapsVertically reports whether the half-open spans [r.Top, r.Bottom)
// and [top, top+height) intersect.
func (r Rect) OverlapsVertically(top, height float64) bool {
	return r.Top < top+height && top < r.Bottom()
}

// Overlaps reports whether r and o share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right() && o.Left < r.Right() && r.OverlapsVertically(o.Top, o.Height)
}

// ClearsWithGap reports whether a box starting at x with the given width
// keeps at least gap units of horizontal distance from r on both sides.
func (r Rect) ClearsWithGap(x, width, gap float64) bool {
	return r.Left >= x+width+gap || x >= r.Right()+gap
}

// CornerSquare returns the side×side square in r's top-right corner.
// A side larger than r is clamped to r's smaller dimension.
func (r Rect) CornerSquare(side float64) Rect {
	side = min(side, r.Width, r.Height)
	if side < 0 {
		side = 0
	}
	return Rect{Left: r.Right() - side, Top: r.Top, Width: side, Height: side}
}
