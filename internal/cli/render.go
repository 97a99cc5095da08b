package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	layout   layoutFlags
	output   string // output file (single format) or base path (several)
	formats  string // comma-separated formats
	renderer string // tree or nodelink
	title    string
	baseURL  string
	detailed bool
	pinned   bool
	scale    float64
}

// renderCommand lays out a person list and writes one file per format.
//
// Defaults:
//   - format: svg
//   - renderer: tree (the family tree drawing; nodelink uses Graphviz)
//   - output: the input path with the format's extension
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a family tree to SVG, PNG, PDF or DOT",
		Long: `Render a person list (JSON, CSV or XLSX).

Formats: svg, png, pdf, dot, layout, json, csv. PNG and PDF need rsvg-convert
on PATH for the tree renderer; the nodelink renderer draws them in-process
with Graphviz.

Examples:
  kintree render personas.json                      # personas.svg
  kintree render personas.json -f svg,png -o out/arbol
  kintree render familia.xlsx -t nodelink -f svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.layout.register(cmd)
	cmd.ValidArgsFunction = personFileArgs
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several formats)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, layout, json, csv (comma-separated)")
	cmd.Flags().StringVarP(&opts.renderer, "type", "t", pipeline.RendererTree, "renderer: tree, nodelink")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG title")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "prefix for relative avatar URLs in SVG output (default server.base_url)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add birth date and gender to nodelink labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep the computed positions in nodelink output")
	cmd.Flags().Float64Var(&opts.scale, "scale", render.DefaultScale, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletions)
	_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(
		[]string{pipeline.RendererTree, pipeline.RendererNodelink}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, ro *renderOpts) error {
	ctx := cmd.Context()

	opts := c.pipelineOptions()
	ro.layout.apply(cmd, &opts)
	opts.Formats = pipeline.ParseFormats(ro.formats)
	opts.Renderer = strings.ToLower(ro.renderer)
	opts.Title = ro.title
	opts.Detailed = ro.detailed
	opts.Pinned = ro.pinned
	opts.Scale = ro.scale
	if cmd.Flags().Changed("base-url") {
		opts.BaseURL = ro.baseURL
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	paths, err := outputPaths(input, ro.output, opts.Formats)
	if err != nil {
		return err
	}

	people, err := c.loadPeople(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.layout.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spin.Start()
	res, err := runner.Execute(ctx, people, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	for _, f := range opts.Formats {
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", plural(len(opts.Formats), "file", "files"))
	printStats(res.Stats.People, res.Stats.Links, generations(res.Layout), res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	for _, f := range opts.Formats {
		printFile(paths[f])
	}
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// output that already has an extension is written there as is; otherwise the
// format's extension is appended to the output (or the input) without its
// extension. Overwriting the input is refused.
func outputPaths(input, output string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
	} else {
		base := output
		if base == "" {
			base = strings.TrimSuffix(input, filepath.Ext(input))
		}
		for _, f := range formats {
			paths[f] = base + formatExt(f)
		}
	}

	for f, p := range paths {
		if filepath.Clean(p) == filepath.Clean(input) {
			return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "%s output would overwrite %s, use -o", f, input)
		}
	}
	return paths, nil
}

func formatExt(format string) string {
	if format == pipeline.FormatLayout {
		return ".layout.json"
	}
	return "." + format
}
