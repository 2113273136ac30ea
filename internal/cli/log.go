// Package cli implements the entitymap command-line interface.
//
// This package provides commands for rendering entity-class diagrams from
// scene scripts, exploring a catalog interactively in the terminal or a
// line-oriented shell, and serving a live diagram over HTTP. The CLI is
// built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Replay a scene and write SVG, PNG, PDF, JSON or DOT
//   - explore: Terminal canvas with mouse dragging
//   - shell: Readline REPL over a canvas
//   - serve: HTTP host for a browser front end
//   - catalog: List, show and validate entity catalogs
//   - cache: Manage the rendered artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. Engine events reach the log through the
// observability hooks installed at startup.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Placed 5 nodes (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// diagramLogger logs engine events at debug level.
type diagramLogger struct{ l *log.Logger }

func (d diagramLogger) OnPlace(id string, iterations int, exhausted bool) {
	if exhausted {
		d.l.Warn("placement budget exhausted", "node", id, "iterations", iterations)
		return
	}
	d.l.Debug("placed", "node", id, "iterations", iterations)
}

func (d diagramLogger) OnRedraw(nodes, edges int) {
	d.l.Debug("redraw", "nodes", nodes, "edges", edges)
}

func (d diagramLogger) OnDragStart(id string) { d.l.Debug("drag start", "node", id) }

func (d diagramLogger) OnDragEnd(id string, moves int) {
	d.l.Debug("drag end", "node", id, "moves", moves)
}

// cacheLogger logs artifact cache traffic at debug level.
type cacheLogger struct{ l *log.Logger }

func (c cacheLogger) OnCacheHit(_ context.Context, keyType string) {
	c.l.Debug("cache hit", "type", keyType)
}

func (c cacheLogger) OnCacheMiss(_ context.Context, keyType string) {
	c.l.Debug("cache miss", "type", keyType)
}

func (c cacheLogger) OnCacheSet(_ context.Context, keyType string, size int) {
	c.l.Debug("cache set", "type", keyType, "bytes", size)
}

// httpLogger logs every served request.
type httpLogger struct{ l *log.Logger }

func (h httpLogger) OnRequest(_ context.Context, method, path string) {
	h.l.Debug("request", "method", method, "path", path)
}

func (h httpLogger) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.l.Info(method+" "+path, "status", status, "took", d.Round(time.Microsecond))
}
