package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"depviz/pkg/buildinfo"
)

// rootOpts holds flags shared by every command.
type rootOpts struct {
	configPath string
}

// Execute runs the depviz CLI. ctx carries the signal-aware context from
// main; every command inherits it.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug. The logger travels through the command context and is retrieved
// with loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "depviz",
		Short:        "depviz analyzes and visualizes package dependency graphs",
		Long:         `depviz builds the dependency graph of a Python package, detects dependency cycles, computes a deterministic installation order, and exports the graph in Graphviz DOT format.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newDepsCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newInteractiveCmd(opts))
	root.AddCommand(newCacheCmd(opts))

	return root.ExecuteContext(ctx)
}
