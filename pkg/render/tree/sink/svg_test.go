package sink

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/persona"
)

func testLayout(t *testing.T, presets avatar.Presets, people ...persona.Person) graph.Layout {
	t.Helper()
	res, err := layout.Compute(people, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return graph.FromResult(res, presets)
}

func family(t *testing.T, presets avatar.Presets) graph.Layout {
	return testLayout(t, presets,
		persona.Person{ID: "1", Name: "Ana", Gender: "F"},
		persona.Person{ID: "2", Name: "Luis & Co", Parents: []string{"1"}},
		persona.Person{ID: "3", Parents: []string{"1", "2"}},
	)
}

func TestRenderSVGWellFormed(t *testing.T) {
	svg := RenderSVG(family(t, avatar.DefaultPresets()), WithTitle("Familia <A>"))
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVGStructure(t *testing.T) {
	svg := string(RenderSVG(family(t, nil)))

	checks := []struct {
		name string
		want string
	}{
		{"viewBox", `viewBox="-120 -80 800 400"`},
		{"primary link", `<path d="M60,0C60,70,0,70,0,140" fill="none" stroke="#9CA3AF" stroke-width="1.2"/>`},
		{"extra link", `<path class="extra" d="M0,140C0,140,120,140,120,140" fill="none" stroke="#6b7280" stroke-width="1" stroke-dasharray="4 4"/>`},
		{"node group", `<g class="node" data-id="1" transform="translate(60,0)">`},
		{"fallback circle", `<circle r="18" fill="#fff" stroke="#2563eb"/>`},
		{"escaped label", `<text dy="0.35em" x="26">Luis &amp; Co</text>`},
		{"id label", `<text dy="0.35em" x="26">3</text>`},
	}
	for _, c := range checks {
		if !strings.Contains(svg, c.want) {
			t.Errorf("%s: missing %q in\n%s", c.name, c.want, svg)
		}
	}
	if strings.Contains(svg, "<image") {
		t.Error("no presets and no avatars should draw no images")
	}
}

func TestRenderSVGAvatars(t *testing.T) {
	l := testLayout(t, avatar.DefaultPresets(),
		persona.Person{ID: "a.1", Avatar: "/uploads/a.png"},
	)
	svg := string(RenderSVG(l, WithBaseURL("http://localhost:8000")))

	for _, want := range []string{
		`<clipPath id="clip-a1"><circle r="18" cx="0" cy="0"/></clipPath>`,
		`href="http://localhost:8000/uploads/a.png"`,
		`xlink:href="http://localhost:8000/uploads/a.png"`,
		`x="-18" y="-18" width="36" height="36" clip-path="url(#clip-a1)"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %q in\n%s", want, svg)
		}
	}
}

func TestRenderSVGInlined(t *testing.T) {
	l := testLayout(t, nil,
		persona.Person{ID: "a", Avatar: "/uploads/a.png"},
		persona.Person{ID: "b", Avatar: "/uploads/b.png"},
	)
	svg := string(RenderSVG(l, WithInlinedAvatars(map[string]string{
		"/uploads/a.png": "data:image/png;base64,AAAA",
	})))

	if !strings.Contains(svg, `href="data:image/png;base64,AAAA"`) {
		t.Error("inlined avatar missing")
	}
	if strings.Contains(svg, "/uploads/b.png") {
		t.Error("avatars without inlined data must not be referenced")
	}
	if strings.Count(svg, "<circle r=\"18\" fill") != 1 {
		t.Error("node without inlined data should fall back to a circle")
	}
}

func TestRenderSVGWithoutAvatars(t *testing.T) {
	svg := string(RenderSVG(family(t, avatar.DefaultPresets()), WithoutAvatars()))
	if strings.Contains(svg, "<image") {
		t.Error("WithoutAvatars should not draw images")
	}
}

func TestRenderSVGExcludesVirtualRoot(t *testing.T) {
	l := testLayout(t, nil, persona.Person{ID: "a"}, persona.Person{ID: "b"})
	svg := string(RenderSVG(l))
	if strings.Contains(svg, `data-id="root"`) {
		t.Error("virtual root rendered")
	}
	if got := strings.Count(svg, `class="node"`); got != 2 {
		t.Errorf("rendered %d nodes, want 2", got)
	}
	if strings.Contains(svg, "<path") {
		t.Error("edges from the virtual root rendered")
	}
}

func TestClipID(t *testing.T) {
	tests := []struct{ id, want string }{
		{"1", "clip-1"},
		{"José María", "clip-JosMara"},
		{"a_b-c", "clip-a_b-c"},
	}
	for _, tt := range tests {
		if got := ClipID(tt.id); got != tt.want {
			t.Errorf("ClipID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	used := map[string]int{}
	if a, b := uniqueClipID("a.b", used), uniqueClipID("ab", used); a == b {
		t.Errorf("clip ids collide: %q", a)
	}
}

func TestLinkPath(t *testing.T) {
	if got := LinkPath(0, 0, 120, 140); got != "M0,0C0,70,120,70,120,140" {
		t.Errorf("LinkPath = %q", got)
	}
}
