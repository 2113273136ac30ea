package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	Margin        float64 `json:"margin,omitempty"`
	Padding       float64 `json:"padding,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	DeleteControl float64 `json:"delete_control,omitempty"`
	Interactive   bool    `json:"interactive,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey keys a rendered output of the snapshot with the given hash.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string

	// DiagramKey keys a saved snapshot by diagram ID.
	DiagramKey(diagramID string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>" over the hash and options.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}

// DiagramKey returns "diagram:<id>".
func (DefaultKeyer) DiagramKey(diagramID string) string {
	return "diagram:" + diagramID
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
