package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/persona"
)

// layoutFlags override the [layout] section of the config file.
type layoutFlags struct {
	rowSpacing float64
	minGap     float64
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.rowSpacing, "row-spacing", layout.DefaultRowSpacing, "vertical distance between generations")
	cmd.Flags().Float64Var(&f.minGap, "min-gap", layout.DefaultMinGap, "minimum horizontal distance between people of a generation")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout and artifact cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// apply copies explicitly set flags over opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("row-spacing") {
		opts.Layout.RowSpacing = f.rowSpacing
	}
	if cmd.Flags().Changed("min-gap") {
		opts.Layout.MinGap = f.minGap
	}
	opts.Refresh = f.refresh
}

// layoutCommand computes node positions and writes them as layout JSON,
// which the render command and the editor can consume.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Compute the family tree layout of a person list",
		Long: `Compute the position of every person and write the result as layout JSON.

Each person is placed under their first listed parent that exists in the file;
other parents become extra links. Disconnected families hang from a virtual
root that is not drawn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			return c.runLayout(cmd, args[0], output, flags.noCache, opts)
		},
	}

	cmd.ValidArgsFunction = personFileArgs
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options) error {
	ctx := cmd.Context()
	people, err := c.loadPeople(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	l, hit, err := runner.LayoutWithCacheInfo(ctx, people, opts)
	if err != nil {
		return err
	}
	prog.done("computed layout")

	if output == "" {
		return graph.WriteLayout(l, cmd.OutOrStdout())
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return err
	}
	printSuccess("Layout computed")
	printStats(len(l.Nodes), len(l.Links), generations(l), hit)
	printFile(output)
	return nil
}

// loadPeople parses and normalizes input, logging validation problems.
// Problems never stop a layout: dangling parents are dropped by the engine.
func (c *CLI) loadPeople(cmd *cobra.Command, input string) ([]persona.Person, error) {
	report, err := pipeline.ParseFile(input)
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(cmd.Context())
	for _, p := range report.Errores {
		logger.Warn(p)
	}
	return report.Personas, nil
}

// generations counts the depth levels holding real people.
func generations(l graph.Layout) int {
	if len(l.Nodes) == 0 {
		return 0
	}
	if l.VirtualRoot {
		return l.TreeHeight
	}
	return l.TreeHeight + 1
}
