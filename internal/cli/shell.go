package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/internal/config"
	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/graph"
	"github.com/matzehuels/entitymap/pkg/scene"
	"github.com/matzehuels/entitymap/pkg/session"
)

// errQuit ends the shell loop.
var errQuit = stderrors.New("quit")

// shellCommands lists the commands with their usage, in help order.
var shellCommands = []struct{ name, usage, help string }{
	{"add", "add <class> [x y]", "show a class as a root"},
	{"drill", "drill <parent> <class>", "show a related class right of its parent"},
	{"rm", "rm <class>", "remove a node"},
	{"clear", "clear", "remove every node"},
	{"drag", "drag <class> <x> <y> [steps]", "drag a node's top-left corner to x,y"},
	{"redraw", "redraw", "redraw all edges"},
	{"ls", "ls", "list nodes with position and size"},
	{"edges", "edges", "list drawn edges"},
	{"classes", "classes", "list catalog classes"},
	{"related", "related <class>", "list classes a class relates to"},
	{"mode", "mode [id|short-name]", "show or change parent resolution"},
	{"save", "save <file.json>", "save a snapshot"},
	{"load", "load <file.json>", "replace the canvas with a snapshot"},
	{"render", "render <file>", "write svg, png, pdf, json or dot by extension"},
	{"help", "help", "show this help"},
	{"quit", "quit", "leave the shell"},
}

func (c *CLI) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [script]",
		Short: "Drive a canvas from an interactive prompt",
		Long: `Shell opens a prompt over a live canvas. Type help for the command list.
With a script argument the commands are read from the file instead and the
shell exits after the last one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			sh, err := c.newShell(cat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				return sh.runScript(cmd.Context(), f)
			}
			return sh.runInteractive(cmd.Context())
		},
	}
}

// shell executes text commands against one session.
type shell struct {
	cli  *CLI
	cat  *catalog.Catalog
	sess *session.Session
	mode string
	out  io.Writer
}

func (c *CLI) newShell(cat *catalog.Catalog, out io.Writer) (*shell, error) {
	mode := c.Config.Layout.Resolve
	sess, err := c.newSession("", cat, mode)
	if err != nil {
		return nil, err
	}
	return &shell{cli: c, cat: cat, sess: sess, mode: mode, out: out}, nil
}

func (s *shell) runInteractive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          StyleHighlight.Render(appName) + "> ",
		HistoryFile:     filepath.Join(config.Dir(), "history"),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(s.out, StyleDim.Render("Type help for commands, quit to leave."))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := rl.Readline()
		if stderrors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.exec(ctx, line); err != nil {
			if stderrors.Is(err, errQuit) {
				return nil
			}
			s.fail(err)
		}
	}
}

// runScript executes one command per line and stops at the first error.
// Blank lines and lines starting with # are skipped.
func (s *shell) runScript(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(ctx, line); err != nil {
			if stderrors.Is(err, errQuit) {
				return nil
			}
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

func (s *shell) completer() *readline.PrefixCompleter {
	classes := readline.PcItemDynamic(func(string) []string { return s.cat.IDs() })
	items := make([]readline.PrefixCompleterInterface, 0, len(shellCommands))
	for _, cmd := range shellCommands {
		switch cmd.name {
		case "add", "rm", "drag", "related":
			items = append(items, readline.PcItem(cmd.name, classes))
		case "drill":
			items = append(items, readline.PcItem(cmd.name, readline.PcItemDynamic(
				func(string) []string { return s.cat.IDs() }, classes)))
		case "mode":
			items = append(items, readline.PcItem(cmd.name,
				readline.PcItem(diagram.ModeID), readline.PcItem(diagram.ModeShortName)))
		default:
			items = append(items, readline.PcItem(cmd.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// exec runs one command line.
func (s *shell) exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]

	switch name {
	case "add":
		if len(args) != 1 && len(args) != 3 {
			return usageError("add")
		}
		op := scene.Op{Do: scene.OpAdd, ID: args[0]}
		if len(args) == 3 {
			x, y, err := parseXY(args[1], args[2])
			if err != nil {
				return err
			}
			op.X, op.Y = x, y
		}
		return s.apply(ctx, op)
	case "drill":
		if len(args) != 2 {
			return usageError("drill")
		}
		return s.apply(ctx, scene.Op{Do: scene.OpDrill, Parent: args[0], ID: args[1]})
	case "rm", "remove":
		if len(args) != 1 {
			return usageError("rm")
		}
		return s.apply(ctx, scene.Op{Do: scene.OpRemove, ID: args[0]})
	case "clear":
		return s.apply(ctx, scene.Op{Do: scene.OpClear})
	case "drag":
		if len(args) != 3 && len(args) != 4 {
			return usageError("drag")
		}
		x, y, err := parseXY(args[1], args[2])
		if err != nil {
			return err
		}
		op := scene.Op{Do: scene.OpDrag, ID: args[0], X: x, Y: y}
		if len(args) == 4 {
			if op.Steps, err = strconv.Atoi(args[3]); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "steps")
			}
		}
		return s.apply(ctx, op)
	case "redraw":
		return s.apply(ctx, scene.Op{Do: scene.OpRedraw})
	case "ls":
		s.listNodes()
	case "edges":
		s.listEdges()
	case "classes":
		for _, id := range s.cat.IDs() {
			fmt.Fprintln(s.out, id)
		}
	case "related":
		if len(args) != 1 {
			return usageError("related")
		}
		if _, ok := s.cat.Lookup(args[0]); !ok {
			return errors.New(errors.ErrCodeClassNotFound, "class %q not in catalog", args[0])
		}
		for _, id := range s.cat.Related(args[0]) {
			fmt.Fprintln(s.out, id)
		}
	case "mode":
		if len(args) == 0 {
			fmt.Fprintln(s.out, s.modeName())
			return nil
		}
		return s.setMode(ctx, args[0])
	case "save":
		if len(args) != 1 {
			return usageError("save")
		}
		if err := graph.WriteFile(s.sess.Snapshot(), args[0]); err != nil {
			return err
		}
		s.ok("saved %s", args[0])
	case "load":
		if len(args) != 1 {
			return usageError("load")
		}
		return s.load(ctx, args[0])
	case "render":
		if len(args) != 1 {
			return usageError("render")
		}
		return s.render(ctx, args[0])
	case "help", "?":
		s.help()
	case "quit", "exit":
		return errQuit
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown command %q (try help)", name)
	}
	return nil
}

func (s *shell) apply(ctx context.Context, op scene.Op) error {
	if err := op.Validate(); err != nil {
		return err
	}
	reset, err := s.sess.Do(func(p *scene.Player) error { return p.Apply(ctx, op) })
	if err != nil {
		return err
	}
	if reset {
		s.ok("canvas is empty")
	}
	return nil
}

func (s *shell) setMode(ctx context.Context, mode string) error {
	if err := errors.ValidateResolveMode(mode); err != nil {
		return err
	}
	nodes := s.sess.Snapshot().DiagramNodes()
	sess, err := s.cli.newSession(s.sess.ID, s.cat, mode)
	if err != nil {
		return err
	}
	if _, err := sess.Do(func(p *scene.Player) error { return p.Restore(ctx, nodes) }); err != nil {
		return err
	}
	s.sess, s.mode = sess, mode
	s.ok("resolving parents by %s", s.modeName())
	return nil
}

func (s *shell) load(ctx context.Context, path string) error {
	d, err := graph.ReadFile(path)
	if err != nil {
		return err
	}
	mode := d.Resolve
	if mode == "" {
		mode = s.mode
	}
	sess, err := s.cli.newSession(d.ID, s.cat, mode)
	if err != nil {
		return err
	}
	if _, err := sess.Do(func(p *scene.Player) error { return p.Restore(ctx, d.DiagramNodes()) }); err != nil {
		s.warn("%s", errors.UserMessage(err))
	}
	s.sess, s.mode = sess, mode
	s.ok("loaded %d nodes", len(d.Nodes))
	return nil
}

func (s *shell) render(ctx context.Context, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := errors.ValidateFormat(format, formatSVG, formatPNG, formatPDF, formatJSON, formatDOT); err != nil {
		return err
	}
	data, err := s.cli.renderFormat(ctx, s.sess, format, &renderOpts{})
	if err != nil {
		return err
	}
	if err := writeOutput(path, data); err != nil {
		return err
	}
	s.ok("wrote %s", path)
	return nil
}

func (s *shell) modeName() string {
	if s.mode == "" {
		return diagram.ModeID
	}
	return s.mode
}

func (s *shell) listNodes() {
	d := s.sess.Snapshot()
	if len(d.Nodes) == 0 {
		fmt.Fprintln(s.out, StyleDim.Render("(empty)"))
		return
	}
	for _, n := range d.Nodes {
		parent := ""
		if n.ParentID != "" {
			parent = StyleDim.Render(" ← " + n.ParentID)
		}
		fmt.Fprintf(s.out, "%-20s %s %s%s\n", n.ID,
			StyleNumber.Render(fmt.Sprintf("(%g,%g)", n.X, n.Y)),
			StyleDim.Render(fmt.Sprintf("%gx%g", n.Width, n.Height)),
			parent)
	}
}

func (s *shell) listEdges() {
	for _, e := range s.sess.Snapshot().Edges {
		fmt.Fprintf(s.out, "%s %s %s  %s\n", e.ParentID, StyleDim.Render(iconArrow), e.ChildID, StyleDim.Render(e.Class))
	}
}

func (s *shell) help() {
	for _, cmd := range shellCommands {
		fmt.Fprintf(s.out, "  %-30s %s\n", styleCommand.Render(cmd.usage), StyleDim.Render(cmd.help))
	}
}

func (s *shell) ok(format string, args ...any) {
	printer{s.out}.success(format, args...)
}

func (s *shell) warn(format string, args ...any) {
	printer{s.out}.warn(format, args...)
}

func (s *shell) fail(err error) {
	printer{s.out}.fail(err)
}

func usageError(name string) error {
	for _, cmd := range shellCommands {
		if cmd.name == name {
			return errors.New(errors.ErrCodeInvalidInput, "usage: %s", cmd.usage)
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "usage: %s", name)
}

func parseXY(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "x")
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "y")
	}
	if err := errors.ValidateCoordinate("x", x); err != nil {
		return 0, 0, err
	}
	return x, y, errors.ValidateCoordinate("y", y)
}
