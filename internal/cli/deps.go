package cli

import (
	"github.com/spf13/cobra"
)

// newDepsCmd creates the deps command, which lists the direct dependencies
// of a single package without building the full graph.
func newDepsCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "deps [package]",
		Short: "List the direct dependencies of a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.PackageName = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			prov, closeProvider, err := newProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			deps, err := prov.Deps(ctx, cfg.PackageName)
			if err != nil {
				return err
			}

			if len(deps) == 0 {
				printInfo("%s has no direct dependencies", cfg.PackageName)
				return nil
			}

			printInfo("Direct dependencies of %s", cfg.PackageName)
			for i, dep := range deps {
				printDetail("%2d. %s", i+1, dep)
			}
			printNewline()
			printDetail("%d total", len(deps))
			return nil
		},
	}
}
