package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/entitymap/pkg/core/edges"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
)

func sample() ([]sink.Box, []edges.Edge) {
	boxes := []sink.Box{
		{ID: "shop.Customer", Title: "Customer", Rows: []string{"id: uuid"}, Rect: geom.Rect{Width: 100, Height: 50}},
		{ID: "shop.Order", Title: "Order", Rect: geom.Rect{Left: 115, Width: 80, Height: 40}},
	}
	es := []edges.Edge{{ParentID: "shop.Customer", ChildID: "shop.Order", Class: "edge-Customer-Order"}}
	return boxes, es
}

func TestToDOT_Basic(t *testing.T) {
	boxes, es := sample()
	dot := ToDOT(boxes, es, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, "layout=neato;") {
		t.Error("ToDOT() output missing neato layout")
	}
	if !strings.Contains(dot, `"shop.Customer" -> "shop.Order" [class="edge-Customer-Order"];`) {
		t.Errorf("ToDOT() output missing edge:\n%s", dot)
	}
}

func TestToDOT_PinnedPositions(t *testing.T) {
	boxes, es := sample()
	dot := ToDOT(boxes, es, Options{})

	if !strings.Contains(dot, `pos="50,-25!"`) {
		t.Errorf("Customer not pinned at its center:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="155,-20!"`) {
		t.Errorf("Order not pinned at its center:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	boxes, es := sample()

	plain := ToDOT(boxes, es, Options{})
	if strings.Contains(plain, "id: uuid") {
		t.Error("plain labels should not include rows")
	}
	detailed := ToDOT(boxes, es, Options{Detailed: true})
	if !strings.Contains(detailed, `label="Customer\nid: uuid"`) {
		t.Errorf("detailed label missing rows:\n%s", detailed)
	}
}

func TestToDOT_SkipsDanglingEdges(t *testing.T) {
	boxes, _ := sample()
	es := []edges.Edge{{ParentID: "shop.Customer", ChildID: "shop.Missing"}}

	if dot := ToDOT(boxes, es, Options{}); strings.Contains(dot, "->") {
		t.Errorf("dangling edge exported:\n%s", dot)
	}
}

func TestToDOT_DragTarget(t *testing.T) {
	boxes, es := sample()
	boxes[1].DragTarget = true

	if dot := ToDOT(boxes, es, Options{}); !strings.Contains(dot, "dashed") {
		t.Error("drag targets should be dashed")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := string(normalizeViewBox(in))

	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
