package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/entitymap/pkg/core/geom"
)

// Cell classes used by [GridSurface].
const (
	ClassEdge   = "edge"
	ClassMarker = "marker"
	ClassBox    = "box"
	ClassTitle  = "title"
	ClassDrag   = "drag"
	ClassDelete = "delete"
)

type cell struct {
	r     rune
	class string
}

// GridSurface is a character grid where one cell is one diagram unit. It
// backs the terminal explorer.
type GridSurface struct {
	width  int
	height int
	origin geom.Point
	cells  []cell
}

// NewGridSurface returns a blank grid of the given size.
func NewGridSurface(width, height int) *GridSurface {
	g := &GridSurface{}
	g.Resize(width, height)
	return g
}

// Resize reallocates the grid and blanks it.
func (g *GridSurface) Resize(width, height int) {
	g.width, g.height = max(width, 0), max(height, 0)
	g.cells = make([]cell, g.width*g.height)
	g.Clear()
}

// SetOrigin sets the diagram point shown in the top-left cell.
func (g *GridSurface) SetOrigin(p geom.Point) { g.origin = p }

// Origin returns the diagram point shown in the top-left cell.
func (g *GridSurface) Origin() geom.Point { return g.origin }

// Size returns the grid dimensions in cells.
func (g *GridSurface) Size() (width, height int) { return g.width, g.height }

func (g *GridSurface) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{r: ' '}
	}
}

func (g *GridSurface) Marker(p geom.Point, _ float64, _ string) {
	x, y := g.toCell(p)
	g.set(x, y, '●', ClassMarker)
}

// Segment plots a line between the cells nearest its end points.
func (g *GridSurface) Segment(from, to geom.Point, _ string) {
	x0, y0 := g.toCell(from)
	x1, y1 := g.toCell(to)

	r := '·'
	switch {
	case y0 == y1:
		r = '─'
	case x0 == x1:
		r = '│'
	}

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if !g.occupied(x0, y0) {
			g.set(x0, y0, r, ClassEdge)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawBoxes draws boxes with rounded borders over the edge layer.
func (g *GridSurface) DrawBoxes(boxes []Box, deleteControl bool) {
	for _, b := range boxes {
		g.drawBox(b, deleteControl)
	}
}

func (g *GridSurface) drawBox(b Box, deleteControl bool) {
	x0, y0 := g.toCell(b.Rect.TopLeft())
	w, h := int(math.Round(b.Rect.Width)), int(math.Round(b.Rect.Height))
	if w < 2 || h < 2 {
		return
	}
	x1, y1 := x0+w-1, y0+h-1

	border := ClassBox
	if b.DragTarget {
		border = ClassDrag
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.set(x, y, ' ', ClassBox)
		}
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, '─', border)
		g.set(x, y1, '─', border)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, '│', border)
		g.set(x1, y, '│', border)
	}
	g.set(x0, y0, '╭', border)
	g.set(x1, y0, '╮', border)
	g.set(x0, y1, '╰', border)
	g.set(x1, y1, '╯', border)

	inner := w - 4
	g.text(x0+2, y0+1, b.Title, inner, ClassTitle)
	for i, row := range b.Rows {
		if y0+2+i >= y1 {
			break
		}
		g.text(x0+2, y0+2+i, row, inner, ClassBox)
	}
	if deleteControl {
		g.set(x1-1, y0+1, '×', ClassDelete)
	}
}

func (g *GridSurface) text(x, y int, s string, limit int, class string) {
	i := 0
	for _, r := range s {
		if i >= limit {
			return
		}
		g.set(x+i, y, r, class)
		i++
	}
}

// Rune returns the rune at a cell, or a space outside the grid.
func (g *GridSurface) Rune(x, y int) rune {
	if !g.inside(x, y) {
		return ' '
	}
	return g.cells[y*g.width+x].r
}

// Lines returns the grid as plain text rows.
func (g *GridSurface) Lines() []string {
	out := make([]string, g.height)
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		sb.Reset()
		for x := 0; x < g.width; x++ {
			sb.WriteRune(g.cells[y*g.width+x].r)
		}
		out[y] = sb.String()
	}
	return out
}

// Render styles runs of cells by class and joins the rows.
func (g *GridSurface) Render(styles map[string]lipgloss.Style) string {
	rows := make([]string, g.height)
	var row, run strings.Builder
	for y := 0; y < g.height; y++ {
		row.Reset()
		run.Reset()
		class := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := styles[class]; ok {
				row.WriteString(st.Render(run.String()))
			} else {
				row.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			if c.class != class {
				flush()
				class = c.class
			}
			run.WriteRune(c.r)
		}
		flush()
		rows[y] = row.String()
	}
	return strings.Join(rows, "\n")
}

// CellToPoint maps a grid cell back to diagram coordinates.
func (g *GridSurface) CellToPoint(x, y int) geom.Point {
	return geom.Point{X: float64(x) + g.origin.X, Y: float64(y) + g.origin.Y}
}

func (g *GridSurface) toCell(p geom.Point) (int, int) {
	return int(math.Round(p.X - g.origin.X)), int(math.Round(p.Y - g.origin.Y))
}

func (g *GridSurface) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *GridSurface) occupied(x, y int) bool {
	return g.inside(x, y) && g.cells[y*g.width+x].class == ClassMarker
}

func (g *GridSurface) set(x, y int, r rune, class string) {
	if g.inside(x, y) {
		g.cells[y*g.width+x] = cell{r: r, class: class}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
