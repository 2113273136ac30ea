package cache

// ScopedKeyer wraps a Keyer with a prefix so several diagrams served by one
// process never share entries.
//
//	keys := NewScopedKeyer(NewDefaultKeyer(), "session:"+diagramID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}

// DiagramKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) DiagramKey(diagramID string) string {
	return k.prefix + k.inner.DiagramKey(diagramID)
}
