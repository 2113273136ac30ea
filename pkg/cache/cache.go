// Package cache stores rendered diagram artifacts keyed by snapshot hash.
//
// The HTTP host renders "/diagram.svg" on demand. Between edits the
// snapshot does not change, so the rendered bytes are cached under a key
// derived from [Hash] of the snapshot JSON and the render options. Any
// placement, drag or removal changes the snapshot and therefore the key.
//
// Two backends are provided: [FileCache] for a cache directory that
// survives restarts, and [NullCache] to disable caching. [Observed] wraps
// either with the registered observability cache hooks.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/entitymap/pkg/observability"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

type observed struct {
	Cache
}

// Observed reports hits, misses and writes of c to [observability.Cache].
// The key type passed to the hooks is "artifact", "diagram" or "unknown".
func Observed(c Cache) Cache {
	return observed{Cache: c}
}

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	for _, t := range []string{"artifact", "diagram"} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "unknown"
}
