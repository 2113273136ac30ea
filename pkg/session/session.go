// Package session holds live diagrams for hosts that serve more than one
// caller.
//
// A [Session] is a canvas with its SVG surface and scene player behind a
// mutex. Hosts run every canvas operation through [Session.Do], which
// serialises callers and records activity. A [Store] keeps sessions in
// memory by ID and drops the ones that have been idle longer than its TTL.
//
// # Usage
//
//	store := session.NewStore(session.DefaultTTL, func(id string) *session.Session {
//	    return session.New(id, session.Options{Source: catalog.Builtin(), Measure: m})
//	})
//	sess := store.Create()
//	err := sess.Do(func(p *scene.Player) error {
//	    return p.Apply(ctx, scene.Op{Do: scene.OpAdd, ID: "shop.Customer"})
//	})
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/entitymap/pkg/core/canvas"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/drag"
	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/placement"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
	"github.com/matzehuels/entitymap/pkg/graph"
	"github.com/matzehuels/entitymap/pkg/scene"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 2 * time.Hour

// Options configures the canvas behind a session.
type Options struct {
	Resolver      diagram.Resolver
	Engine        placement.Engine
	DeleteControl float64
	MarkerRadius  float64

	Source  scene.Source
	Measure scene.Measurer
}

// Session is one live diagram.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	touched  time.Time
	resets   int
	svg      *sink.SVGSurface
	canvas   *canvas.Canvas
	player   *scene.Player
	renderer *edges.Renderer
}

// New creates an empty session. An empty id gets a random one.
func New(id string, opts Options) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	if opts.Engine == (placement.Engine{}) {
		opts.Engine = placement.Default()
	}
	if opts.DeleteControl == 0 {
		opts.DeleteControl = drag.DefaultDeleteControlSize
	}
	if opts.MarkerRadius == 0 {
		opts.MarkerRadius = edges.DefaultMarkerRadius
	}

	now := time.Now()
	s := &Session{ID: id, CreatedAt: now, touched: now, svg: sink.NewSVGSurface()}
	s.canvas = canvas.New(s.svg,
		canvas.WithResolver(opts.Resolver),
		canvas.WithEngine(opts.Engine),
		canvas.WithDeleteControl(opts.DeleteControl),
		canvas.WithMarkerRadius(opts.MarkerRadius),
		canvas.WithResetFunc(func() { s.resets++ }),
	)
	s.player = scene.NewPlayer(s.canvas, opts.Source, opts.Measure)
	s.renderer = &edges.Renderer{Resolver: s.canvas.Resolver(), MarkerRadius: opts.MarkerRadius}
	return s
}

// Do runs fn with exclusive access to the session's player and canvas.
// It reports whether fn emptied the canvas by removing its last node.
func (s *Session) Do(fn func(p *scene.Player) error) (reset bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	before := s.resets
	err = fn(s.player)
	return s.resets > before, err
}

// Snapshot returns the diagram as it was last drawn.
func (s *Session) Snapshot() graph.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.FromCanvas(s.ID, s.canvas)
}

// SVG renders the session as a standalone document.
func (s *Session) SVG(opts ...sink.SVGOption) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svg.Document(s.boxes(), opts...)
}

// DrawEdges draws the current edges onto another surface, such as a PNG
// raster, without touching the session's own surface.
func (s *Session) DrawEdges(dst edges.Surface) []edges.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Redraw(s.canvas.Nodes(), dst)
}

// Boxes returns the drawable nodes with their content rows.
func (s *Session) Boxes() []sink.Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boxes()
}

func (s *Session) boxes() []sink.Box {
	return sink.Boxes(s.canvas.Nodes(), func(id string) []string {
		return s.player.Contents[id].Rows
	})
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
