package edges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
)

type recordingSurface struct {
	clears   int
	markers  []geom.Point
	segments [][2]geom.Point
	classes  []string
}

func (s *recordingSurface) Clear() {
	s.clears++
	s.markers = nil
	s.segments = nil
	s.classes = nil
}

func (s *recordingSurface) Marker(p geom.Point, _ float64, _ string) {
	s.markers = append(s.markers, p)
}

func (s *recordingSurface) Segment(from, to geom.Point, class string) {
	s.segments = append(s.segments, [2]geom.Point{from, to})
	s.classes = append(s.classes, class)
}

func box(id, parent string, x, y, w, h float64) diagram.Node {
	return diagram.Node{
		ID:       id,
		ParentID: parent,
		Position: diagram.Position{X: x, Y: y},
		Size:     diagram.Size{Width: w, Height: h},
	}
}

func TestAnchorsDefault(t *testing.T) {
	parent := geom.Rect{Left: 0, Top: 0, Width: 100, Height: 50}
	child := geom.Rect{Left: 115, Top: 0, Width: 80, Height: 30}

	from, to := Anchors(parent, child)

	assert.Equal(t, geom.Point{X: 100, Y: 25}, from)
	assert.Equal(t, geom.Point{X: 115, Y: 15}, to)
}

func TestAnchorsChildLeftOfParent(t *testing.T) {
	parent := geom.Rect{Left: 300, Top: 0, Width: 100, Height: 50}
	child := geom.Rect{Left: 100, Top: 100, Width: 80, Height: 50}

	from, to := Anchors(parent, child)

	assert.Equal(t, 300.0, from.X, "origin flips to the parent's left edge")
	assert.Equal(t, 180.0, to.X, "terminus flips to the child's right edge")
	assert.Equal(t, 125.0, to.Y)
}

func TestAnchorsOverlappingColumns(t *testing.T) {
	// Columns overlap: the child starts just left of the parent.
	parent := geom.Rect{Left: 100, Top: 0, Width: 100, Height: 50}
	child := geom.Rect{Left: 90, Top: 100, Width: 40, Height: 50}

	from, to := Anchors(parent, child)

	assert.Equal(t, 100.0, from.X)
	assert.Equal(t, 130.0, to.X, "90 < 100 so the terminus also flips")

	child = geom.Rect{Left: 150, Top: 100, Width: 40, Height: 50}
	from, to = Anchors(parent, child)
	assert.Equal(t, 200.0, from.X, "child right of parent.Left keeps the right anchor")
	assert.Equal(t, 190.0, to.X, "origin 200 > 150 pushes the terminus to the right edge")
}

func TestComputeOneEdgePerResolvedChild(t *testing.T) {
	nodes := []diagram.Node{
		box("shop.Order", "", 0, 0, 100, 50),
		box("shop.Customer", "shop.Order", 115, 0, 80, 50),
		box("shop.Line", "shop.Order", 210, 0, 80, 50),
		box("shop.Orphan", "shop.Missing", 0, 100, 80, 50),
	}

	got := Compute(nodes, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "shop.Customer", got[0].ChildID)
	assert.Equal(t, "shop.Line", got[1].ChildID)
	assert.Equal(t, "edge-Order-Customer", got[0].Class)
	for _, e := range got {
		assert.NotEqual(t, "shop.Orphan", e.ChildID)
	}
}

func TestRedrawClearsThenDraws(t *testing.T) {
	nodes := []diagram.Node{
		box("shop.Order", "", 0, 0, 100, 50),
		box("shop.Customer", "shop.Order", 115, 0, 80, 50),
	}
	s := &recordingSurface{}
	r := NewRenderer(diagram.ResolveByID{})

	r.Redraw(nodes, s)
	drawn := r.Redraw(nodes, s)

	assert.Equal(t, 2, s.clears)
	require.Len(t, drawn, 1)
	assert.Len(t, s.markers, 2, "one marker per anchor")
	require.Len(t, s.segments, 1, "previous pass must not accumulate")
	assert.Equal(t, [2]geom.Point{{X: 100, Y: 25}, {X: 115, Y: 25}}, s.segments[0])
	assert.Equal(t, []string{"edge-Order-Customer"}, s.classes)
}

func TestRedrawNilSurface(t *testing.T) {
	nodes := []diagram.Node{
		box("shop.Order", "", 0, 0, 100, 50),
		box("shop.Customer", "shop.Order", 115, 0, 80, 50),
	}
	assert.Nil(t, NewRenderer(nil).Redraw(nodes, nil))
}

func TestRedrawDoesNotMutateNodes(t *testing.T) {
	nodes := []diagram.Node{
		box("shop.Order", "", 300, 0, 100, 50),
		box("shop.Customer", "shop.Order", 0, 0, 80, 50),
	}
	before := append([]diagram.Node(nil), nodes...)

	NewRenderer(nil).Redraw(nodes, &recordingSurface{})

	assert.Equal(t, before, nodes)
}
