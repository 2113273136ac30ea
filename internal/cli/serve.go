package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/buildinfo"
	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/observability"
	"github.com/matzehuels/entitymap/pkg/scene"
	"github.com/matzehuels/entitymap/pkg/session"
)

// defaultSessionID names the session served under /api without a session
// prefix. It never expires.
const defaultSessionID = "default"

// Drag phases accepted by POST /api/drag.
const (
	phaseBegin = "begin"
	phaseMove  = "move"
	phaseEnd   = "end"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live diagrams over HTTP",
		Long: `Serve exposes canvases over a JSON API. The default canvas lives under /api;
more can be created under /api/sessions. Rendered SVG is cached by snapshot
hash until the diagram changes.`,
		Example: `  entitymap serve --addr :8080
  curl -X POST localhost:8080/api/nodes -d '{"id":"shop.Customer"}'
  curl localhost:8080/diagram.svg`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			ch, err := newCache(noCache || !c.Config.Server.Cache)
			if err != nil {
				return err
			}
			defer ch.Close()

			srv, err := c.newServer(cat, ch, ttl)
			if err != nil {
				return err
			}
			return srv.listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "render SVG on every request")
	cmd.Flags().DurationVar(&ttl, "session-ttl", session.DefaultTTL, "drop sessions idle for longer than this")

	return cmd
}

// server is the HTTP host. Every canvas operation goes through
// [session.Session.Do], which serialises concurrent requests.
type server struct {
	cli   *CLI
	cat   *catalog.Catalog
	def   *session.Session
	store *session.Store
	cache cache.Cache
	keys  cache.Keyer
}

func (c *CLI) newServer(cat *catalog.Catalog, ch cache.Cache, ttl time.Duration) (*server, error) {
	// Fail on a bad font or resolve mode before serving anything.
	def, err := c.newSession(defaultSessionID, cat, "")
	if err != nil {
		return nil, err
	}
	store := session.NewStore(ttl, func(id string) *session.Session {
		sess, err := c.newSession(id, cat, "")
		if err != nil {
			panic(err) // unreachable: the same options built def
		}
		return sess
	})
	return &server{cli: c, cat: cat, def: def, store: store, cache: ch, keys: cache.NewDefaultKeyer()}, nil
}

func (s *server) listen(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)
	observability.SetHTTPHooks(httpLogger{logger})

	hs := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	logger.Infof("Serving on http://%s", addr)
	base := "http://" + addr
	out := s.cli.print()
	out.keyValue("Diagram", StyleLink.Render(base+"/diagram.svg"))
	out.keyValue("Snapshot", StyleLink.Render(base+"/api/diagram"))
	if ids := s.cat.IDs(); len(ids) > 0 {
		out.nextStep("Add a class", fmt.Sprintf(`curl -X POST %s/api/nodes -d '{"id":%q}'`, base, ids[0]))
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down")
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// sweep drops idle sessions until ctx is done.
func (s *server) sweep(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.store.Cleanup(now); n > 0 {
				loggerFromContext(ctx).Debugf("Dropped %d idle sessions", n)
			}
		}
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.health)
	r.Get("/diagram.svg", s.withSession(defaultSessionID, s.svg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/classes", s.classes)
		r.Get("/classes/{id}", s.class)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionContext(func(*http.Request) string { return defaultSessionID }))
			s.canvasRoutes(r)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)
			r.Route("/{sid}", func(r chi.Router) {
				r.Use(s.sessionContext(func(r *http.Request) string { return chi.URLParam(r, "sid") }))
				r.Delete("/", s.deleteSession)
				r.Get("/diagram.svg", s.svg)
				s.canvasRoutes(r)
			})
		})
	})
	return r
}

func (s *server) canvasRoutes(r chi.Router) {
	r.Post("/nodes", s.addNode)
	r.Delete("/nodes", s.clearNodes)
	r.Delete("/nodes/{id}", s.removeNode)
	r.Post("/drag", s.drag)
	r.Post("/redraw", s.redraw)
	r.Get("/diagram", s.diagram)
}

// observe reports every request to the registered HTTP hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// =============================================================================
// Session lookup
// =============================================================================

type sessionKey struct{}

func (s *server) sessionContext(id func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := id(r)
			sess, ok := s.lookup(sid)
			if !ok {
				writeError(w, errors.New(errors.ErrCodeNotFound, "session %q not found", sid))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
		})
	}
}

// lookup finds a session by ID. The default session lives outside the store
// so it never expires.
func (s *server) lookup(id string) (*session.Session, bool) {
	if id == defaultSessionID {
		return s.def, true
	}
	return s.store.Get(id)
}

func (s *server) withSession(id string, h http.HandlerFunc) http.HandlerFunc {
	mw := s.sessionContext(func(*http.Request) string { return id })
	return mw(h).ServeHTTP
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

// =============================================================================
// Handlers
// =============================================================================

type classJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rows        []string `json:"rows"`
	Related     []string `json:"related"`
}

func (s *server) classJSON(cl catalog.Class) classJSON {
	return classJSON{
		ID:          cl.ID,
		Name:        diagram.ShortName(cl.ID),
		Description: cl.Description,
		Rows:        s.cat.Rows(cl.ID),
		Related:     s.cat.Related(cl.ID),
	}
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.store.Len() + 1,
	})
}

func (s *server) classes(w http.ResponseWriter, _ *http.Request) {
	classes := s.cat.Classes()
	out := make([]classJSON, len(classes))
	for i, cl := range classes {
		out[i] = s.classJSON(cl)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) class(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cl, ok := s.cat.Lookup(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeClassNotFound, "class %q not in catalog", id))
		return
	}
	writeJSON(w, http.StatusOK, s.classJSON(cl))
}

type addRequest struct {
	ID     string   `json:"id"`
	Parent string   `json:"parent,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

func (s *server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	op := scene.Op{Do: scene.OpAdd, ID: req.ID}
	if req.Parent != "" {
		op = scene.Op{Do: scene.OpDrill, ID: req.ID, Parent: req.Parent}
	}
	if req.X != nil {
		op.X = *req.X
	}
	if req.Y != nil {
		op.Y = *req.Y
	}
	if err := validatePoint(op.X, op.Y); err != nil {
		writeError(w, err)
		return
	}
	s.apply(w, r, http.StatusCreated, op)
}

func (s *server) removeNode(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, http.StatusOK, scene.Op{Do: scene.OpRemove, ID: chi.URLParam(r, "id")})
}

func (s *server) clearNodes(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, http.StatusOK, scene.Op{Do: scene.OpClear})
}

func (s *server) redraw(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, http.StatusOK, scene.Op{Do: scene.OpRedraw})
}

// apply runs op and responds with the new snapshot.
func (s *server) apply(w http.ResponseWriter, r *http.Request, status int, op scene.Op) {
	if err := op.Validate(); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	reset, err := sess.Do(func(p *scene.Player) error { return p.Apply(r.Context(), op) })
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, map[string]any{"reset": reset, "diagram": sess.Snapshot()})
}

type dragRequest struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phase string  `json:"phase"`
}

// drag forwards pointer events to the canvas. Coordinates are the pointer
// position in canvas space, as a browser front end would report them.
func (s *server) drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validatePoint(req.X, req.Y); err != nil {
		writeError(w, err)
		return
	}
	pt := geom.Point{X: req.X, Y: req.Y}

	sess := sessionFrom(r)
	var moved bool
	_, err := sess.Do(func(p *scene.Player) error {
		switch req.Phase {
		case phaseBegin:
			if err := errors.ValidateEntityID(req.ID); err != nil {
				return err
			}
			if _, ok := p.Canvas.Node(req.ID); !ok {
				return errors.New(errors.ErrCodeNodeNotFound, "node %q is not shown", req.ID)
			}
			if !p.Canvas.BeginDrag(req.ID, pt) {
				return errors.New(errors.ErrCodeDragRejected, "cannot drag %q from (%g,%g)", req.ID, req.X, req.Y)
			}
		case phaseMove:
			moved = p.Canvas.MoveDrag(pt)
		case phaseEnd:
			p.Canvas.EndDrag()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "phase must be %s, %s or %s", phaseBegin, phaseMove, phaseEnd)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "diagram": sess.Snapshot()})
}

func (s *server) diagram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

// svg renders the session, reusing the cached document while the snapshot
// is unchanged.
func (s *server) svg(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	interactive, _ := strconv.ParseBool(r.URL.Query().Get("interactive"))

	snap, err := json.Marshal(sess.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	rc := s.cli.Config.Render
	keys := cache.NewScopedKeyer(s.keys, "session:"+sess.ID+":")
	key := keys.ArtifactKey(cache.Hash(snap), cache.ArtifactKeyOpts{
		Format:        formatSVG,
		Margin:        rc.Margin,
		Padding:       rc.Padding,
		FontSize:      rc.FontSize,
		DeleteControl: s.cli.Config.Drag.DeleteControl,
		Interactive:   interactive,
	})

	data, ok, err := s.cache.Get(r.Context(), key)
	if err != nil {
		loggerFromContext(r.Context()).Warn("cache read failed", "err", err)
	}
	if !ok {
		var extra []sink.SVGOption
		if interactive {
			extra = append(extra, sink.WithInteractive())
		}
		data = sess.SVG(s.cli.svgOptions(extra...)...)
		ttl := s.cli.Config.Server.CacheTTL.Duration
		if err := s.cache.Set(r.Context(), key, data, ttl); err != nil {
			loggerFromContext(r.Context()).Warn("cache write failed", "err", err)
		}
		// Remember the newest artifact so deleting the session can drop it.
		_ = s.cache.Set(r.Context(), keys.DiagramKey(sess.ID), []byte(key), ttl)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}

func (s *server) listSessions(w http.ResponseWriter, _ *http.Request) {
	ids := append([]string{defaultSessionID}, s.store.IDs()...)
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *server) createSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	writeJSON(w, http.StatusCreated, map[string]any{"id": sess.ID})
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess.ID == defaultSessionID {
		writeError(w, errors.New(errors.ErrCodeConflict, "the default session cannot be deleted"))
		return
	}
	s.store.Delete(sess.ID)
	s.forget(r.Context(), sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// forget drops the cached artifact last rendered for a session.
func (s *server) forget(ctx context.Context, id string) {
	keys := cache.NewScopedKeyer(s.keys, "session:"+id+":")
	ref := keys.DiagramKey(id)
	if key, ok, _ := s.cache.Get(ctx, ref); ok {
		_ = s.cache.Delete(ctx, string(key))
	}
	_ = s.cache.Delete(ctx, ref)
}

// =============================================================================
// JSON helpers
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}

func validatePoint(x, y float64) error {
	if err := errors.ValidateCoordinate("x", x); err != nil {
		return err
	}
	return errors.ValidateCoordinate("y", y)
}
