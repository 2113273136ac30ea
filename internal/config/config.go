// Package config loads entitymap settings from TOML, .env files and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, the process
// environment (after .env files are loaded into it), then command flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/entitymap/pkg/core/drag"
	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/placement"
	apperrors "github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/fonts"
)

// Environment variables that override the config file.
const (
	EnvCatalog = "ENTITYMAP_CATALOG"
	EnvResolve = "ENTITYMAP_RESOLVE"
	EnvAddr    = "ENTITYMAP_ADDR"
	EnvGap     = "ENTITYMAP_GAP"
)

// Config holds entitymap configuration.
type Config struct {
	// Catalog is the path of the entity catalog. Empty uses the bundled one.
	Catalog string `toml:"catalog"`

	Layout  LayoutConfig  `toml:"layout"`
	Drag    DragConfig    `toml:"drag"`
	Render  RenderConfig  `toml:"render"`
	Server  ServerConfig  `toml:"server"`
	Explore ExploreConfig `toml:"explore"`
}

// LayoutConfig controls placement.
type LayoutConfig struct {
	Gap           float64 `toml:"gap"`
	MaxIterations int     `toml:"max_iterations"`
	Resolve       string  `toml:"resolve"` // "id" or "short-name"
}

// DragConfig controls pointer handling.
type DragConfig struct {
	DeleteControl float64 `toml:"delete_control"`
}

// RenderConfig controls SVG and PNG output.
type RenderConfig struct {
	MarkerRadius float64 `toml:"marker_radius"`
	Padding      float64 `toml:"padding"`
	FontSize     float64 `toml:"font_size"`
	Margin       float64 `toml:"margin"`
	Scale        float64 `toml:"scale"`
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Addr     string   `toml:"addr"`
	Cache    bool     `toml:"cache"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// ExploreConfig controls the terminal explorer, which lays out in cells.
type ExploreConfig struct {
	Gap     float64  `toml:"gap"`
	Latency Duration `toml:"latency"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Gap:           placement.DefaultGap,
			MaxIterations: placement.DefaultMaxIterations,
			Resolve:       "id",
		},
		Drag: DragConfig{DeleteControl: drag.DefaultDeleteControlSize},
		Render: RenderConfig{
			MarkerRadius: edges.DefaultMarkerRadius,
			Padding:      6,
			FontSize:     fonts.DefaultSize,
			Margin:       20,
			Scale:        2,
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			Cache:    true,
			CacheTTL: Duration{time.Hour},
		},
		Explore: ExploreConfig{
			Gap:     3,
			Latency: Duration{150 * time.Millisecond},
		},
	}
}

// Dir returns the entitymap config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "entitymap")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. Unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "load %s", p)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from the ENTITYMAP_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv(EnvResolve); v != "" {
		c.Layout.Resolve = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvGap); v != "" {
		gap, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s", EnvGap)
		}
		c.Layout.Gap = gap
	}
	return nil
}

// Validate rejects settings the engine cannot use.
func (c *Config) Validate() error {
	if err := apperrors.ValidateResolveMode(c.Layout.Resolve); err != nil {
		return err
	}
	if c.Layout.Gap < 0 || c.Explore.Gap < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "gap must not be negative")
	}
	if c.Layout.MaxIterations < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout.max_iterations must be at least 1")
	}
	if c.Drag.DeleteControl < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "drag.delete_control must not be negative")
	}
	if c.Render.FontSize <= 0 || c.Render.Scale <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "render.font_size and render.scale must be positive")
	}
	return nil
}

// Engine returns the placement engine the config describes.
func (c *Config) Engine() placement.Engine {
	return placement.Engine{Gap: c.Layout.Gap, MaxIterations: c.Layout.MaxIterations}
}
