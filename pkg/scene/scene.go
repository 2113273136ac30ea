package scene

import (
	"context"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/core/canvas"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/fonts"
)

// Operation kinds.
const (
	OpAdd    = "add"
	OpDrill  = "drill"
	OpDrag   = "drag"
	OpRemove = "remove"
	OpClear  = "clear"
	OpRedraw = "redraw"
)

// Op is one scripted interaction.
type Op struct {
	Do     string `toml:"do"`
	ID     string `toml:"id"`
	Parent string `toml:"parent"`

	// X and Y are the root position for add, or the drag destination of
	// the node's top-left corner.
	X float64 `toml:"x"`
	Y float64 `toml:"y"`

	// Steps is the number of pointer moves a drag is split into.
	Steps int `toml:"steps"`
}

// Scene is a parsed script.
type Scene struct {
	Resolve string `toml:"resolve"`
	Ops     []Op   `toml:"op"`
}

// Parse decodes and validates a scene.
func Parse(r io.Reader) (*Scene, error) {
	var s Scene
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks every operation's kind and required fields.
func (s *Scene) Validate() error {
	if err := errors.ValidateResolveMode(s.Resolve); err != nil {
		return err
	}
	for i, op := range s.Ops {
		if err := op.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "op %d (%s)", i+1, op.Do)
		}
	}
	return nil
}

// Validate checks that op names a known kind and carries the IDs it needs.
func (op Op) Validate() error {
	switch op.Do {
	case OpClear, OpRedraw:
		return nil
	case OpAdd, OpRemove, OpDrag:
		return errors.ValidateEntityID(op.ID)
	case OpDrill:
		if err := errors.ValidateEntityID(op.Parent); err != nil {
			return err
		}
		return errors.ValidateEntityID(op.ID)
	}
	return errors.New(errors.ErrCodeInvalidScene, "unknown op %q", op.Do)
}

// Source supplies node content and the relations drilling may follow.
// [catalog.Catalog] implements it.
type Source interface {
	catalog.Loader
	Related(id string) []string
}

// Measurer turns node content into a box size.
type Measurer interface {
	Measure(c catalog.Content) diagram.Size
}

// FaceMeasurer sizes boxes for the bundled monospace face with room for
// the delete control.
type FaceMeasurer struct {
	Face          *fonts.Face
	Padding       float64
	DeleteControl float64
}

// Measure implements [Measurer].
func (m FaceMeasurer) Measure(c catalog.Content) diagram.Size {
	w, h := m.Face.Measure(c.Lines(), m.Padding)
	return diagram.Size{Width: w + m.DeleteControl, Height: h}
}

// Player applies scenes to a canvas.
type Player struct {
	Canvas  *canvas.Canvas
	Source  Source
	Measure Measurer

	// Contents collects the loaded content of every added node.
	Contents map[string]catalog.Content
}

// NewPlayer returns a player over c.
func NewPlayer(c *canvas.Canvas, src Source, m Measurer) *Player {
	return &Player{Canvas: c, Source: src, Measure: m, Contents: make(map[string]catalog.Content)}
}

// Play runs every operation in order and stops at the first failure.
func (p *Player) Play(ctx context.Context, s *Scene) error {
	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Apply(ctx, op); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return errors.Wrap(code, err, "op %d (%s)", i+1, op.Do)
		}
	}
	return nil
}

// Apply runs one operation.
func (p *Player) Apply(ctx context.Context, op Op) error {
	switch op.Do {
	case OpAdd:
		return p.show(ctx, canvas.Ref{ID: op.ID, Position: diagram.Position{X: op.X, Y: op.Y}})
	case OpDrill:
		if _, ok := p.Canvas.Node(op.Parent); !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "parent %q is not shown", op.Parent)
		}
		if !slices.Contains(p.Source.Related(op.Parent), op.ID) {
			return errors.New(errors.ErrCodeClassNotFound, "%q is not related to %q", op.ID, op.Parent)
		}
		return p.show(ctx, canvas.Ref{ID: op.ID, ParentID: op.Parent})
	case OpDrag:
		return p.drag(op)
	case OpRemove:
		if !p.Canvas.Remove(op.ID) {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q is not shown", op.ID)
		}
		delete(p.Contents, op.ID)
		return nil
	case OpClear:
		p.Canvas.Clear()
		clear(p.Contents)
		return nil
	case OpRedraw:
		p.Canvas.RedrawEdges()
		return nil
	}
	return errors.New(errors.ErrCodeInvalidScene, "unknown op %q", op.Do)
}

func (p *Player) show(ctx context.Context, ref canvas.Ref) error {
	if !p.Canvas.Add(ref) {
		return errors.New(errors.ErrCodeConflict, "node %q is already shown", ref.ID)
	}
	content, err := p.Source.Load(ctx, ref.ID)
	if err != nil {
		p.Canvas.Remove(ref.ID)
		return err
	}
	p.Contents[ref.ID] = content
	p.Canvas.Rendered(ref.ID, p.Measure.Measure(content))
	return nil
}

// drag presses just inside the node's left edge, away from the delete
// control, and moves the pointer to the destination in equal steps.
func (p *Player) drag(op Op) error {
	n, ok := p.Canvas.Node(op.ID)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q is not shown", op.ID)
	}
	grip := geom.Point{X: 1, Y: n.Size.Height / 2}
	start := n.Position.Add(grip)
	if !p.Canvas.BeginDrag(op.ID, start) {
		return errors.New(errors.ErrCodeDragRejected, "cannot drag %q", op.ID)
	}
	defer p.Canvas.EndDrag()

	steps := max(op.Steps, 1)
	end := geom.Point{X: op.X, Y: op.Y}.Add(grip)
	delta := end.Sub(start)
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		p.Canvas.MoveDrag(geom.Point{X: start.X + delta.X*f, Y: start.Y + delta.Y*f})
	}
	return nil
}

// Expand shows root at the origin and drills breadth first through its
// relations until depth levels below it are shown. Each class is visited
// once, so cycles in the catalog terminate. Classes already on the canvas
// are walked through but not drilled again.
func (p *Player) Expand(ctx context.Context, root string, depth int) error {
	if _, ok := p.Canvas.Node(root); !ok {
		if err := p.Apply(ctx, Op{Do: OpAdd, ID: root}); err != nil {
			return err
		}
	}
	visited := map[string]bool{root: true}
	level := []string{root}
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []string
		for _, parent := range level {
			for _, child := range p.Source.Related(parent) {
				if visited[child] {
					continue
				}
				visited[child] = true
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, shown := p.Canvas.Node(child); !shown {
					if err := p.Apply(ctx, Op{Do: OpDrill, ID: child, Parent: parent}); err != nil {
						return err
					}
				}
				next = append(next, child)
			}
		}
		level = next
	}
	return nil
}

// Restore replaces the canvas with saved nodes, keeping their positions and
// sizes, and reloads their content. Nodes whose class cannot be loaded stay
// on the canvas with an empty body; the first such error is returned.
func (p *Player) Restore(ctx context.Context, nodes []diagram.Node) error {
	p.Canvas.Restore(nodes)
	clear(p.Contents)
	var first error
	for _, n := range p.Canvas.Nodes() {
		content, err := p.Source.Load(ctx, n.ID)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			if first == nil {
				first = err
			}
			continue
		}
		p.Contents[n.ID] = content
	}
	return first
}
