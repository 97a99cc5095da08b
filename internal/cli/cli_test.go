package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/graph"
)

const familyCSV = `id,nombre,fecha_nacimiento,genero,padres
1,Abuela,3/4/1950,F,
2,Madre,,F,1
3,Tío,,M,1;9
`

// runCLI executes the root command with isolated config and cache
// directories and returns everything written to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	var buf bytes.Buffer
	oldOut, oldSpin := out, spinnerOut
	out, spinnerOut = &buf, io.Discard
	t.Cleanup(func() { out, spinnerOut = oldOut, oldSpin })

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&buf)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseToStdout(t *testing.T) {
	in := writeFile(t, "familia.csv", familyCSV)
	got, err := runCLI(t, "parse", in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"nombre": "Abuela"`, `"fecha_nacimiento": "1950-04-03"`, `"padres": [`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}

func TestParseToCSV(t *testing.T) {
	in := writeFile(t, "familia.csv", familyCSV)
	dst := filepath.Join(t.TempDir(), "personas.csv")

	got, err := runCLI(t, "parse", in, "-o", dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Imported 3 people") {
		t.Errorf("summary missing:\n%s", got)
	}
	if !strings.Contains(got, "Padre/madre referenciado no existe: 9 (en 3)") {
		t.Errorf("dangling parent not reported:\n%s", got)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "id,nombre,fecha_nacimiento,genero,padres\n") {
		t.Errorf("unexpected CSV:\n%s", data)
	}
}

func TestParseUnsupported(t *testing.T) {
	in := writeFile(t, "familia.txt", "nope")
	if _, err := runCLI(t, "parse", in); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		want    string
	}{
		{"clean", `[{"id":"1"},{"id":"2","padres":["1"]}]`, false, "2 people, no problems found"},
		{"cycle", `[{"id":"a","padres":["b"]},{"id":"b","padres":["a"]}]`, true, "Se detectaron ciclos en las relaciones: [[a b]]"},
		{"duplicate", `[{"id":"a"},{"id":"a"}]`, true, "ID duplicado: a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := writeFile(t, "personas.json", tt.content)
			got, err := runCLI(t, "validate", in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("missing %q in\n%s", tt.want, got)
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	in := writeFile(t, "personas.json", `[{"id":"1"},{"id":"2","padres":["1"]},{"id":"3","padres":["1"]}]`)
	dst := filepath.Join(t.TempDir(), "layout.json")

	if _, err := runCLI(t, "layout", in, "-o", dst, "--min-gap", "200", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	l, err := graph.ReadLayoutFile(dst)
	if err != nil {
		t.Fatal(err)
	}

	xs := map[string]float64{}
	for _, n := range l.Nodes {
		xs[n.ID] = n.X
	}
	want := map[string]float64{"1": 100, "2": 0, "3": 200}
	if diff := cmp.Diff(want, xs); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if l.MinGap != 200 || l.VirtualRoot {
		t.Errorf("layout = min_gap %v virtual %v", l.MinGap, l.VirtualRoot)
	}
}

func TestLayoutCommandConfig(t *testing.T) {
	in := writeFile(t, "personas.json", `[{"id":"a"},{"id":"b"}]`)
	cfg := writeFile(t, "kintree.toml", "[layout]\nmin_gap = 50.0\n")

	got, err := runCLI(t, "--config", cfg, "layout", in, "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	l, err := graph.UnmarshalLayout([]byte(got))
	if err != nil {
		t.Fatalf("stdout is not a layout: %v\n%s", err, got)
	}
	b, _ := l.NodeByID("b")
	if b.X != 50 || !l.VirtualRoot {
		t.Errorf("b.X = %v, virtual root %v", b.X, l.VirtualRoot)
	}
}

func TestBadConfig(t *testing.T) {
	cfg := writeFile(t, "kintree.toml", "[cache]\nbackend = \"memcached\"\n")
	if _, err := runCLI(t, "--config", cfg, "config", "show"); err == nil {
		t.Error("expected an invalid backend to fail")
	}
}

func TestRenderCommand(t *testing.T) {
	in := writeFile(t, "familia.csv", familyCSV)
	base := strings.TrimSuffix(in, ".csv")

	got, err := runCLI(t, "render", in, "-f", "svg,dot,layout", "--title", "Familia")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Rendered 3 files") {
		t.Errorf("summary missing:\n%s", got)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<title>Familia</title>") {
		t.Error("svg title missing")
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("unexpected dot output:\n%s", dot)
	}
	if _, err := graph.ReadLayoutFile(base + ".layout.json"); err != nil {
		t.Error(err)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	in := writeFile(t, "personas.json", `[{"id":"1"}]`)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"render", in, "-f", "gif"}},
		{"unknown renderer", []string{"render", in, "-t", "radial"}},
		{"overwrite input", []string{"render", in, "-f", "json"}},
		{"negative gap", []string{"render", in, "--min-gap", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default", "in/fam.csv", "", []string{"svg"}, map[string]string{"svg": "in/fam.svg"}},
		{"explicit file", "fam.csv", "out/arbol.svg", []string{"svg"}, map[string]string{"svg": "out/arbol.svg"}},
		{"base path", "fam.csv", "out/arbol", []string{"svg", "png", "layout"},
			map[string]string{"svg": "out/arbol.svg", "png": "out/arbol.png", "layout": "out/arbol.layout.json"}},
		{"json from csv", "fam.csv", "", []string{"json"}, map[string]string{"json": "fam.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPaths(tt.input, tt.output, tt.formats)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := outputPaths("fam.csv", "", []string{"csv"}); err == nil {
		t.Error("overwriting the input should fail")
	}
}

func TestConfigShow(t *testing.T) {
	got, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[server]", `addr = ":8000"`, "[layout]", "min_gap = 120.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	got, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), filepath.Join("cache", "kintree")) {
		t.Errorf("cache path = %q", got)
	}

	got, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Cleared file cache") {
		t.Errorf("clear output = %q", got)
	}
}

func TestCompletion(t *testing.T) {
	got, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "kintree") {
		t.Error("completion script should mention the binary")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestCompletionCandidates(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"person file", []string{"parse", ""}, []string{"json", "csv", "xlsx"}},
		{"renderer", []string{"render", "fam.csv", "--type", ""}, []string{"tree", "nodelink"}},
		{"format list", []string{"render", "fam.csv", "--format", "svg,p"}, []string{"svg,pdf", "svg,png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, append([]string{cobra.ShellCompRequestCmd}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want+"\n") {
					t.Errorf("missing %q in\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatCompletions(t *testing.T) {
	got, _ := formatCompletions(nil, nil, "png,s")
	if diff := cmp.Diff([]string{"png,svg"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	got, _ = formatCompletions(nil, nil, "svg,")
	if slices.Contains(got, "svg,svg") || !slices.Contains(got, "svg,layout") {
		t.Errorf("completions = %v", got)
	}
}

func TestGenerations(t *testing.T) {
	tests := []struct {
		name string
		l    graph.Layout
		want int
	}{
		{"empty", graph.Layout{}, 0},
		{"single root", graph.Layout{TreeHeight: 2, Nodes: []graph.Node{{ID: "a"}}}, 3},
		{"virtual root", graph.Layout{TreeHeight: 2, VirtualRoot: true, Nodes: []graph.Node{{ID: "a"}}}, 2},
	}
	for _, tt := range tests {
		if got := generations(tt.l); got != tt.want {
			t.Errorf("%s: generations = %d, want %d", tt.name, got, tt.want)
		}
	}
}
