package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/core/placement"
)

type countingSurface struct {
	clears   int
	segments int
}

func (s *countingSurface) Clear() {
	s.clears++
	s.segments = 0
}

func (s *countingSurface) Marker(geom.Point, float64, string) {}

func (s *countingSurface) Segment(geom.Point, geom.Point, string) {
	s.segments++
}

func TestRenderedPlacesChildRightOfParent(t *testing.T) {
	s := &countingSurface{}
	c := New(s)

	require.True(t, c.Add(Ref{ID: "shop.Order"}))
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	require.True(t, c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"}))

	pos, ok := c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 40})

	require.True(t, ok)
	assert.Equal(t, diagram.Position{X: 115, Y: 0}, pos)
	assert.Equal(t, 1, s.segments)
	require.Len(t, c.Edges(), 1)
	assert.Equal(t, "shop.Order", c.Edges()[0].ParentID)
}

func TestRenderedPushesPastSibling(t *testing.T) {
	c := New(&countingSurface{})

	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Invoice", ParentID: "shop.Order"})
	c.Rendered("shop.Invoice", diagram.Size{Width: 80, Height: 50})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})

	pos, _ := c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 50})

	assert.Equal(t, diagram.Position{X: 210, Y: 0}, pos)
}

func TestRenderedOnlyPlacesOnce(t *testing.T) {
	c := New(&countingSurface{})
	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})
	c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 50})

	require.True(t, c.BeginDrag("shop.Customer", geom.Point{X: 120, Y: 10}))
	c.MoveDrag(geom.Point{X: 420, Y: 210})
	c.EndDrag()

	pos, _ := c.Rendered("shop.Customer", diagram.Size{Width: 90, Height: 60})
	assert.Equal(t, diagram.Position{X: 415, Y: 200}, pos, "re-render keeps the dragged position")
}

func TestRootKeepsHostPosition(t *testing.T) {
	c := New(nil)
	c.Add(Ref{ID: "shop.Order", Position: diagram.Position{X: 40, Y: 60}})

	pos, ok := c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})

	require.True(t, ok)
	assert.Equal(t, diagram.Position{X: 40, Y: 60}, pos)
}

func TestRenderedUnknown(t *testing.T) {
	_, ok := New(nil).Rendered("shop.Nope", diagram.Size{})
	assert.False(t, ok)
}

func TestAddDuplicate(t *testing.T) {
	c := New(nil)
	assert.True(t, c.Add(Ref{ID: "shop.Order"}))
	assert.False(t, c.Add(Ref{ID: "shop.Order"}))
	assert.Equal(t, 1, c.Len())
}

func TestRemoveLastFiresResetOnce(t *testing.T) {
	resets := 0
	c := New(&countingSurface{}, WithResetFunc(func() { resets++ }))
	c.Add(Ref{ID: "shop.Order"})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})

	require.True(t, c.Remove("shop.Customer"))
	assert.Zero(t, resets)

	require.True(t, c.Remove("shop.Order"))
	assert.Empty(t, c.Nodes())
	assert.Equal(t, 1, resets)

	assert.False(t, c.Remove("shop.Order"))
	assert.Equal(t, 1, resets)
}

func TestClearDoesNotReset(t *testing.T) {
	resets := 0
	s := &countingSurface{}
	c := New(s, WithResetFunc(func() { resets++ }))
	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})
	c.Rendered("shop.Customer", diagram.Size{Width: 100, Height: 50})

	c.Clear()

	assert.Zero(t, c.Len())
	assert.Zero(t, resets)
	assert.Zero(t, s.segments)
}

func TestDragRedrawsPerMove(t *testing.T) {
	s := &countingSurface{}
	c := New(s)
	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})
	c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 50})
	origin, _ := c.Node("shop.Customer")

	before := s.clears
	require.True(t, c.BeginDrag("shop.Customer", geom.Point{X: 130, Y: 20}))
	c.MoveDrag(geom.Point{X: 145, Y: 15})
	c.MoveDrag(geom.Point{X: 160, Y: 10})

	n, _ := c.Node("shop.Customer")
	assert.Equal(t, origin.Position.Add(geom.Point{X: 30, Y: -10}), n.Position)
	assert.Equal(t, before+2, s.clears, "one redraw per move")

	id, ok := c.Dragging()
	assert.True(t, ok)
	assert.Equal(t, "shop.Customer", id)
	c.EndDrag()
	_, ok = c.Dragging()
	assert.False(t, ok)
}

func TestHit(t *testing.T) {
	c := New(nil, WithDeleteControl(10))
	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Note", Position: diagram.Position{X: 50, Y: 10}})
	c.Rendered("shop.Note", diagram.Size{Width: 100, Height: 50})

	n, onDelete, ok := c.Hit(geom.Point{X: 60, Y: 20})
	require.True(t, ok)
	assert.Equal(t, "shop.Note", n.ID, "last added is on top")
	assert.False(t, onDelete)

	n, onDelete, ok = c.Hit(geom.Point{X: 145, Y: 12})
	require.True(t, ok)
	assert.Equal(t, "shop.Note", n.ID)
	assert.True(t, onDelete)

	_, _, ok = c.Hit(geom.Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestMountRedraws(t *testing.T) {
	c := New(nil, WithEngine(placement.Engine{Gap: 5, MaxIterations: 10}))
	c.Add(Ref{ID: "shop.Order"})
	c.Rendered("shop.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "shop.Customer", ParentID: "shop.Order"})
	pos, _ := c.Rendered("shop.Customer", diagram.Size{Width: 80, Height: 50})
	assert.Equal(t, 105.0, pos.X)
	assert.Empty(t, c.Edges(), "nothing drawn without a surface")

	s := &countingSurface{}
	c.Mount(s)
	assert.Equal(t, 1, s.segments)
}

func TestShortNameResolverOption(t *testing.T) {
	c := New(&countingSurface{}, WithResolver(diagram.ResolveByShortName{}))
	c.Add(Ref{ID: "a.b.Order"})
	c.Rendered("a.b.Order", diagram.Size{Width: 100, Height: 50})
	c.Add(Ref{ID: "a.b.Line", ParentID: "x.y.Order"})
	pos, _ := c.Rendered("a.b.Line", diagram.Size{Width: 80, Height: 50})

	assert.Equal(t, 115.0, pos.X)
	assert.Len(t, c.Edges(), 1)
}

func TestRestoreKeepsPositions(t *testing.T) {
	s := &countingSurface{}
	c := New(s)
	c.Add(Ref{ID: "stale"})

	c.Restore([]diagram.Node{
		{ID: "shop.Order", Size: diagram.Size{Width: 100, Height: 50}, Rendered: true},
		{ID: "shop.Customer", ParentID: "shop.Order", Position: diagram.Position{X: 300, Y: 90},
			Size: diagram.Size{Width: 80, Height: 40}, Rendered: true, DragTarget: true},
		{ID: "shop.Order"},
	})

	require.Equal(t, 2, c.Len())
	_, ok := c.Node("stale")
	assert.False(t, ok)

	n, _ := c.Node("shop.Customer")
	assert.Equal(t, diagram.Position{X: 300, Y: 90}, n.Position)
	assert.False(t, n.DragTarget)
	assert.Equal(t, 1, s.segments)

	// Already rendered, so a later size report does not re-place it.
	pos, _ := c.Rendered("shop.Customer", diagram.Size{Width: 90, Height: 40})
	assert.Equal(t, diagram.Position{X: 300, Y: 90}, pos)
}
