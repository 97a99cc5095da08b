package cli

import (
	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// validateCommand reports missing parents, duplicate ids and cycles. It
// fails when any problem is found, so it can gate scripts.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a person list for missing parents, duplicates and cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := pipeline.ParseFile(args[0])
			if err != nil {
				return err
			}
			if !report.HasErrors() {
				printSuccess("%s, no problems found", plural(len(report.Personas), "person", "people"))
				return nil
			}
			printProblems(report.Errores)
			return kerrors.New(kerrors.ErrCodeInvalidInput, "%s found", plural(len(report.Errores), "problem", "problems"))
		},
		ValidArgsFunction: personFileArgs,
	}
}
