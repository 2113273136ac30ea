package sink

import (
	"bytes"
	"encoding/xml"

	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
)

// Box is everything needed to draw one node.
type Box struct {
	ID         string
	Title      string
	Rows       []string
	Rect       geom.Rect
	DragTarget bool
}

// ContentFunc returns the descriptive rows shown inside a node.
type ContentFunc func(id string) []string

// Boxes builds boxes for the rendered nodes in draw order. Nodes that have
// not reported a size yet are skipped.
func Boxes(nodes []diagram.Node, content ContentFunc) []Box {
	out := make([]Box, 0, len(nodes))
	for _, n := range nodes {
		if !n.Rendered {
			continue
		}
		b := Box{
			ID:         n.ID,
			Title:      n.ShortName(),
			Rect:       n.Bounds(),
			DragTarget: n.DragTarget,
		}
		if content != nil {
			b.Rows = content(n.ID)
		}
		out = append(out, b)
	}
	return out
}

// Extent returns the smallest rect holding every box, grown by margin on each
// side. With no boxes it is a margin-sized square at the origin.
func Extent(boxes []Box, margin float64) geom.Rect {
	if len(boxes) == 0 {
		return geom.Rect{Width: 2 * margin, Height: 2 * margin}
	}
	minX, minY := boxes[0].Rect.Left, boxes[0].Rect.Top
	maxX, maxY := boxes[0].Rect.Right(), boxes[0].Rect.Bottom()
	for _, b := range boxes[1:] {
		minX = min(minX, b.Rect.Left)
		minY = min(minY, b.Rect.Top)
		maxX = max(maxX, b.Rect.Right())
		maxY = max(maxY, b.Rect.Bottom())
	}
	return geom.Rect{
		Left:   minX - margin,
		Top:    minY - margin,
		Width:  maxX - minX + 2*margin,
		Height: maxY - minY + 2*margin,
	}
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
