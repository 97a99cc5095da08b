package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --config: TOML config file (default $XDG_CONFIG_HOME/kintree/kintree.toml)
//   - --verbose (-v): debug logging plus pipeline, cache and request hooks
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "kintree",
		Short: "kintree lays out and renders family trees",
		Long: `kintree turns a flat list of person records into a family tree layout
and renders it as SVG, PNG, PDF or Graphviz DOT. It also serves the HTTP API
used by the editor.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kintree/kintree.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
