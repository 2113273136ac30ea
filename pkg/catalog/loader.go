package catalog

import (
	"context"
	"time"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// Content is what a host renders inside a node.
type Content struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Rows    []string `json:"rows"`
	Related []string `json:"related,omitempty"`
}

// Lines returns the title followed by the rows.
func (c Content) Lines() []string {
	return append([]string{c.Title}, c.Rows...)
}

// Loader fetches node content. Implementations may block and must honour
// ctx cancellation.
type Loader interface {
	Load(ctx context.Context, id string) (Content, error)
}

// Load implements [Loader] directly over the catalog.
func (c *Catalog) Load(ctx context.Context, id string) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	if _, ok := c.Lookup(id); !ok {
		return Content{}, errors.New(errors.ErrCodeClassNotFound, "class %q not in catalog", id)
	}
	return Content{
		ID:      id,
		Title:   shortName(id),
		Rows:    c.Rows(id),
		Related: c.Related(id),
	}, nil
}

type delayed struct {
	next  Loader
	delay time.Duration
}

// WithLatency wraps a loader so every load waits d first, the way a remote
// metadata service would. A non-positive d returns next unchanged.
func WithLatency(next Loader, d time.Duration) Loader {
	if d <= 0 {
		return next
	}
	return delayed{next: next, delay: d}
}

func (l delayed) Load(ctx context.Context, id string) (Content, error) {
	t := time.NewTimer(l.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Content{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "load %s", id)
	case <-t.C:
	}
	return l.next.Load(ctx, id)
}
