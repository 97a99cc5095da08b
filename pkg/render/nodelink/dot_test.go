package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		Nodes: []graph.Node{
			{ID: "1", Name: "Ana", BirthDate: "1950-01-01", Gender: "F", X: 72, Y: 0},
			{ID: "2", Name: "Luis", Depth: 1, X: 0, Y: 144},
			{ID: "3", Depth: 1, X: 144, Y: 144},
		},
		Links: []graph.Link{
			{From: "1", To: "2"},
			{From: "1", To: "3"},
			{From: "2", To: "3", Extra: true},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	for _, want := range []string{
		"digraph G",
		`"1" [label="Ana"]`,
		`"3" [label="3"]`,
		`"1" -> "2";`,
		`"2" -> "3" [style=dashed`,
		"constraint=false",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Ana\nnac.: 1950-01-01\ngénero: F"`) {
		t.Errorf("ToDOT() detailed output missing fields:\n%s", dot)
	}
}

func TestToDOT_Pinned(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Pinned: true})
	if !strings.Contains(dot, `pos="1,0!"`) || !strings.Contains(dot, `pos="2,-2!"`) {
		t.Errorf("ToDOT() pinned output missing positions:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	if got := fmtLabel(graph.Node{ID: "x"}, false); got != "x" {
		t.Errorf("fmtLabel() = %q, want id fallback", got)
	}
	if got := fmtLabel(graph.Node{ID: "x", Name: "Equis"}, true); got != "Equis" {
		t.Errorf("fmtLabel() detailed without fields = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if same := normalizeViewBox([]byte("<svg>")); string(same) != "<svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
