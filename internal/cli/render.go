package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/core/render"
	"github.com/matzehuels/entitymap/pkg/core/render/nodelink"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/graph"
	"github.com/matzehuels/entitymap/pkg/scene"
	"github.com/matzehuels/entitymap/pkg/session"
)

// Output formats.
const (
	formatSVG      = "svg"
	formatPNG      = "png"
	formatPDF      = "pdf"
	formatJSON     = "json"
	formatDOT      = "dot"
	formatGraphviz = "graphviz"
)

// validFormats lists the supported output formats in help order.
var validFormats = []string{formatSVG, formatPNG, formatPDF, formatJSON, formatDOT, formatGraphviz}

// formatExt maps formats to file extensions. Graphviz output is SVG too,
// so it gets a compound extension to sit beside the native SVG.
var formatExt = map[string]string{
	formatSVG:      ".svg",
	formatPNG:      ".png",
	formatPDF:      ".pdf",
	formatJSON:     ".json",
	formatDOT:      ".dot",
	formatGraphviz: ".neato.svg",
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string   // output file, base path for several formats, or "-" for stdout
	formats       []string // output formats
	restore       string   // saved diagram JSON to start from
	root          string   // class to expand from
	depth         int      // relation levels to expand below root
	detailed      bool     // list rows in DOT labels
	noDelete      bool     // hide the delete control in static output
	interactive   bool     // add data attributes for a browser front end
	diagramID     string   // snapshot ID, random when empty
	failOnMissing bool     // fail when a restored class is missing from the catalog
}

// renderCommand creates the render command. It builds a diagram from a
// scene script, a saved snapshot or an expanded root class, then writes it
// in one or more formats.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{depth: 1}

	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Render a diagram to SVG, PNG, PDF, JSON or DOT",
		Long: `Render builds a diagram and writes it out.

The diagram comes from a scene script (a list of add, drill, drag, remove and
clear operations), from a saved JSON snapshot (--restore), or from a root
class expanded through its relations (--root, --depth). They can be combined:
the snapshot is loaded first, then the scene is played, then the root is
expanded.`,
		Example: `  entitymap render examples/scenes/orders.toml
  entitymap render --root shop.Customer --depth 2 -f svg,png -o customer
  entitymap render --restore saved.json -f graphviz -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && opts.restore == "" && opts.root == "" {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to render: pass a scene file, --restore or --root")
			}
			if opts.root != "" {
				if err := errors.ValidateEntityID(opts.root); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (one format) or base path (several); "-" writes to stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(validFormats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().StringVar(&opts.restore, "restore", "", "start from a saved diagram JSON")
	cmd.Flags().StringVar(&opts.root, "root", "", "expand from this class")
	cmd.Flags().IntVar(&opts.depth, "depth", opts.depth, "relation levels to expand below --root")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include rows in DOT labels")
	cmd.Flags().BoolVar(&opts.noDelete, "no-delete-control", false, "hide the × control in static output")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "add data attributes for scripting the SVG")
	cmd.Flags().StringVar(&opts.diagramID, "id", "", "snapshot ID (default: random)")
	cmd.Flags().BoolVar(&opts.failOnMissing, "strict", false, "fail when a restored class is missing from the catalog")

	return cmd
}

// parseFormats parses the --format flag. Empty means svg.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{formatSVG}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := errors.ValidateFormat(f, validFormats...); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// outputPath returns where a format is written. A single format goes to
// output verbatim when given; otherwise the format's extension is appended
// to a base path derived from output or the input name.
func outputPath(output, input, format string, single bool) string {
	if output == "-" {
		return "-"
	}
	if single && output != "" {
		return output
	}
	return basePath(output, input) + formatExt[format]
}

// basePath strips a known format extension from output, or derives a base
// from the input file name.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Longest extension first so ".neato.svg" wins over ".svg".
	exts := make([]string, 0, len(formatExt))
	for _, ext := range formatExt {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	for _, ext := range exts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// runRender builds the diagram and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cat, err := c.loadCatalog()
	if err != nil {
		return err
	}

	var (
		sc    *scene.Scene
		saved *graph.Diagram
	)
	resolve := ""
	if opts.restore != "" {
		d, err := graph.ReadFile(opts.restore)
		if err != nil {
			return err
		}
		saved = &d
		resolve = d.Resolve
		if opts.diagramID == "" {
			opts.diagramID = d.ID
		}
	}
	if input != "" {
		if sc, err = scene.Load(input); err != nil {
			return err
		}
		if sc.Resolve != "" {
			resolve = sc.Resolve
		}
	}

	sess, err := c.newSession(opts.diagramID, cat, resolve)
	if err != nil {
		return err
	}

	_, err = sess.Do(func(p *scene.Player) error {
		if saved != nil {
			if err := p.Restore(ctx, saved.DiagramNodes()); err != nil {
				if opts.failOnMissing {
					return err
				}
				logger.Warn("restored with missing classes", "err", errors.UserMessage(err))
			}
		}
		if sc != nil {
			logger.Infof("Playing %s (%d ops)", input, len(sc.Ops))
			if err := p.Play(ctx, sc); err != nil {
				return err
			}
		}
		if opts.root != "" {
			logger.Infof("Expanding %s to depth %d", opts.root, opts.depth)
			return p.Expand(ctx, opts.root, opts.depth)
		}
		return nil
	})
	if err != nil {
		return err
	}

	snap := sess.Snapshot()
	prog.done(fmt.Sprintf("Placed %d nodes, %d edges", len(snap.Nodes), len(snap.Edges)))

	single := len(opts.formats) == 1
	for _, format := range opts.formats {
		data, err := c.renderFormat(ctx, sess, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := outputPath(opts.output, input, format, single)
		if err := writeOutput(path, data); err != nil {
			return err
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))
		if path != "-" {
			c.print().file(path)
			if format == formatJSON {
				c.print().nextStep("Restore with", appName+" render --restore "+path)
			}
		}
	}
	return nil
}

// renderFormat renders the session in one format.
func (c *CLI) renderFormat(ctx context.Context, sess *session.Session, format string, opts *renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		return sess.SVG(c.staticSVGOptions(opts)...), nil
	case formatPNG:
		return c.renderPNG(sess, opts)
	case formatPDF:
		return c.spin(ctx, "Converting to PDF...", func() ([]byte, error) {
			return render.ToPDF(ctx, sess.SVG(c.staticSVGOptions(opts)...))
		})
	case formatJSON:
		return graph.Marshal(sess.Snapshot())
	case formatDOT:
		return []byte(sessionDOT(sess, opts.detailed)), nil
	case formatGraphviz:
		return c.spin(ctx, "Rendering with Graphviz...", func() ([]byte, error) {
			return nodelink.RenderSVG(ctx, sessionDOT(sess, opts.detailed))
		})
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}

func (c *CLI) staticSVGOptions(opts *renderOpts) []sink.SVGOption {
	var extra []sink.SVGOption
	if opts.noDelete {
		extra = append(extra, sink.WithDeleteControl(0))
	}
	if opts.interactive {
		extra = append(extra, sink.WithInteractive())
	}
	return c.svgOptions(extra...)
}

// renderPNG rasterises edges first and boxes on top, as the canvas layers
// them.
func (c *CLI) renderPNG(sess *session.Session, opts *renderOpts) ([]byte, error) {
	boxes := sess.Boxes()
	surface, err := sink.NewPNGSurface(boxes, c.pngOptions(!opts.noDelete)...)
	if err != nil {
		return nil, err
	}
	sess.DrawEdges(surface)
	surface.DrawBoxes(boxes)

	var buf bytes.Buffer
	if err := surface.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sessionDOT(sess *session.Session, detailed bool) string {
	return nodelink.ToDOT(sess.Boxes(), sess.Snapshot().DiagramEdges(), nodelink.Options{Detailed: detailed})
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout for "" and "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
