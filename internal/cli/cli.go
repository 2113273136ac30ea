// Package cli implements the entitymap command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/internal/config"
	"github.com/matzehuels/entitymap/pkg/buildinfo"
	"github.com/matzehuels/entitymap/pkg/cache"
	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
	"github.com/matzehuels/entitymap/pkg/fonts"
	"github.com/matzehuels/entitymap/pkg/observability"
	"github.com/matzehuels/entitymap/pkg/scene"
	"github.com/matzehuels/entitymap/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "entitymap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	out         io.Writer
	status      io.Writer
	verbose     bool
	configPath  string
	catalogPath string
	resolve     string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
		status: w,
	}
}

// print returns a printer on the CLI's result output.
func (c *CLI) print() printer { return printer{c.out} }

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Entitymap lays out entity-class diagrams",
		Long: `Entitymap draws entity classes as boxes and places every drilled-into class
to the right of its parent without overlapping its neighbours. Connectors
follow the boxes as they are dragged.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	flags.StringVar(&c.catalogPath, "catalog", "", "entity catalog TOML (default: bundled shop catalog)")
	flags.StringVar(&c.resolve, "resolve", "", "parent resolution: id or short-name")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// setup loads configuration in precedence order and installs the logger
// and observability hooks before any command runs.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg

	observability.SetDiagramHooks(diagramLogger{c.Logger})
	observability.SetCacheHooks(cacheLogger{c.Logger})
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// loadConfig merges the config file, .env files, the environment and root
// flags, in increasing precedence.
func (c *CLI) loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if c.catalogPath != "" {
		cfg.Catalog = c.catalogPath
	}
	if c.resolve != "" {
		cfg.Layout.Resolve = c.resolve
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// Engine Factories
// =============================================================================

// loadCatalog returns the configured catalog, or the bundled one.
func (c *CLI) loadCatalog() (*catalog.Catalog, error) {
	if c.Config.Catalog == "" {
		return catalog.Builtin(), nil
	}
	return catalog.Load(c.Config.Catalog)
}

// measurer sizes boxes with the bundled font at the configured size.
func (c *CLI) measurer() (scene.Measurer, error) {
	face, err := fonts.Mono(c.Config.Render.FontSize)
	if err != nil {
		return nil, err
	}
	return scene.FaceMeasurer{
		Face:          face,
		Padding:       c.Config.Render.Padding,
		DeleteControl: c.Config.Drag.DeleteControl,
	}, nil
}

// newSession builds a live diagram over src. An empty resolve mode uses the
// configured one.
func (c *CLI) newSession(id string, src scene.Source, resolve string) (*session.Session, error) {
	if resolve == "" {
		resolve = c.Config.Layout.Resolve
	}
	resolver, err := diagram.ParseResolveMode(resolve)
	if err != nil {
		return nil, err
	}
	m, err := c.measurer()
	if err != nil {
		return nil, err
	}
	return session.New(id, session.Options{
		Resolver:      resolver,
		Engine:        c.Config.Engine(),
		DeleteControl: c.Config.Drag.DeleteControl,
		MarkerRadius:  c.Config.Render.MarkerRadius,
		Source:        src,
		Measure:       m,
	}), nil
}

// svgOptions maps the render config onto SVG document options.
func (c *CLI) svgOptions(extra ...sink.SVGOption) []sink.SVGOption {
	r := c.Config.Render
	opts := []sink.SVGOption{
		sink.WithMargin(r.Margin),
		sink.WithPadding(r.Padding),
		sink.WithFontSize(r.FontSize),
		sink.WithDeleteControl(c.Config.Drag.DeleteControl),
	}
	return append(opts, extra...)
}

// pngOptions maps the render config onto PNG surface options.
func (c *CLI) pngOptions(deleteControl bool) []sink.PNGOption {
	r := c.Config.Render
	side := c.Config.Drag.DeleteControl
	if !deleteControl {
		side = 0
	}
	return []sink.PNGOption{
		sink.WithScale(r.Scale),
		sink.WithPNGMargin(r.Margin),
		sink.WithPNGPadding(r.Padding),
		sink.WithPNGFontSize(r.FontSize),
		sink.WithPNGDeleteControl(side),
	}
}

// newCache opens the artifact cache, or a null cache when disabled or when
// no cache directory can be determined.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Observed(fc), nil
}
