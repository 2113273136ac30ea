package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes each node's rows in its label.
	// When false, only the short name is shown.
	Detailed bool
}

// ToDOT converts placed boxes and their edges to Graphviz DOT with every
// node pinned at its diagram position. Edges whose end points are missing
// from boxes are skipped.
func ToDOT(boxes []sink.Box, es []edges.Edge, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=12, fixedsize=true];\n")
	buf.WriteString("  edge [arrowhead=dot, arrowtail=dot, dir=both, arrowsize=0.4];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(boxes))
	for _, b := range boxes {
		known[b.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", b.ID, strings.Join(fmtAttrs(b, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range es {
		if !known[e.ParentID] || !known[e.ChildID] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [class=%q];\n", e.ParentID, e.ChildID, e.Class)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b sink.Box, detailed bool) string {
	if !detailed || len(b.Rows) == 0 {
		return b.Title
	}
	return b.Title + "\n" + strings.Join(b.Rows, "\n")
}

func fmtAttrs(b sink.Box, detailed bool) []string {
	cx := b.Rect.Left + b.Rect.Width/2
	cy := b.Rect.MidY()
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(b, detailed)),
		fmt.Sprintf(`pos="%s,%s!"`, num(cx), num(-cy)),
		fmt.Sprintf("width=%s", num(b.Rect.Width/72)),
		fmt.Sprintf("height=%s", num(b.Rect.Height/72)),
	}
	if b.DragTarget {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT to SVG with the neato engine so pinned positions
// are kept.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
