package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

// inspectCommand opens an interactive browser over a computed layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse people, generations and positions interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			report, err := pipeline.ParseFile(args[0])
			if err != nil {
				return err
			}

			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			l, err := runner.Layout(ctx, report.Personas, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewPersonListModel(l, report.Errores),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	cmd.ValidArgsFunction = personFileArgs
	flags.register(cmd)
	return cmd
}
