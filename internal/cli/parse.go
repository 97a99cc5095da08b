package cli

import (
	"github.com/spf13/cobra"

	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// parseCommand converts a CSV, XLSX or JSON person file into the canonical
// JSON (or CSV) list, normalizing dates and reporting problems.
func (c *CLI) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Import a CSV, XLSX or JSON person list",
		Long: `Import a person list and write it back in canonical form.

Column and key aliases (nombre/name, padres/parents, fecha_nacimiento/dob/fecha,
genero/sex/gender, id/ID/identificador) are resolved and birth dates are
normalized to YYYY-MM-DD. Problems such as missing parents or cycles are
reported but do not stop the import.

Examples:
  kintree parse familia.xlsx -o personas.json
  kintree parse personas.json -o personas.csv
  kintree parse familia.csv > personas.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], output)
		},
	}

	cmd.ValidArgsFunction = personFileArgs
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, CSV when it ends in .csv (stdout if empty)")
	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, input, output string) error {
	logger := loggerFromContext(cmd.Context())

	report, err := pipeline.ParseFile(input)
	if err != nil {
		return err
	}

	if output == "" {
		for _, p := range report.Errores {
			logger.Warn(p)
		}
		return kio.WriteJSON(report.Personas, cmd.OutOrStdout())
	}

	if err := kio.ExportFile(report.Personas, output); err != nil {
		return err
	}
	printSuccess("Imported %s", plural(len(report.Personas), "person", "people"))
	printFile(output)
	printProblems(report.Errores)
	printNextStep("Render it", "kintree render "+output)
	return nil
}
