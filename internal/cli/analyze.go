package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"depviz/pkg/config"
	"depviz/pkg/graph"
	"depviz/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	stage  string
	depth  int
	filter string
	output string
}

// newAnalyzeCmd creates the analyze command, the main entry point of the
// tool. It runs the pipeline up to --stage and reports each stage's
// results; at the export stage the DOT document is written to the
// configured output path.
func newAnalyzeCmd(root *rootOpts) *cobra.Command {
	opts := analyzeOpts{}

	cmd := &cobra.Command{
		Use:   "analyze [package]",
		Short: "Build and analyze a package dependency graph",
		Long: `Analyze builds the bounded dependency graph of a package, detects
cycles, computes the installation order, and exports the graph as DOT.

The --stage flag stops the pipeline early:
  build    graph construction only
  cycles   + cycle detection
  order    + installation order
  export   + DOT export (default)

Examples:
  depviz analyze requests
  depviz analyze flask --max-depth 2 --stage cycles
  depviz analyze --config depviz.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			applyAnalyzeFlags(cmd, cfg, &opts, args)
			if err := cfg.Validate(); err != nil {
				return err
			}

			stage, err := pipeline.ParseStage(opts.stage)
			if err != nil {
				return err
			}

			return runAnalyze(cmd, cfg, stage)
		},
	}

	cmd.Flags().StringVar(&opts.stage, "stage", "", "pipeline stage to stop at (build, cycles, order, export)")
	cmd.Flags().IntVar(&opts.depth, "max-depth", 0, "maximum dependency depth (overrides config)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "exclude dependencies containing this substring")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "DOT output path (overrides config)")

	return cmd
}

// applyAnalyzeFlags merges explicitly set flags and the positional package
// argument over the loaded configuration.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *analyzeOpts, args []string) {
	if len(args) > 0 {
		cfg.PackageName = args[0]
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = opts.depth
	}
	if cmd.Flags().Changed("filter") {
		cfg.FilterSubstring = opts.filter
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = opts.output
	}
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, stage pipeline.Stage) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	prov, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %s...", cfg.PackageName))
	spinner.Start()

	prog := newProgress(logger)
	res, err := pipeline.NewRunner(prov).Run(ctx, pipeline.Options{
		Package:  cfg.PackageName,
		MaxDepth: cfg.MaxDepth,
		Filter:   cfg.FilterSubstring,
		Stage:    stage,
		Logf:     func(format string, args ...any) { logger.Warnf(format, args...) },
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %s", cfg.PackageName))
	logger.Debugf("run %s finished in %s", res.RunID, res.Elapsed)

	printSuccess("Analyzed %s (depth %d)", cfg.PackageName, cfg.MaxDepth)
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), len(res.Cycles))

	if stage.Includes(pipeline.StageCycles) {
		printCycles(res.Cycles)
	}
	if stage.Includes(pipeline.StageOrder) {
		printOrder(res.Order, res.Excluded)
	}
	if stage.Includes(pipeline.StageExport) {
		if err := os.WriteFile(cfg.Output, []byte(res.DOT), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output, err)
		}
		printNewline()
		printInfo("Graph exported")
		printFile(cfg.Output)
	}
	return nil
}

func printCycles(cycles []graph.Cycle) {
	printNewline()
	if len(cycles) == 0 {
		printInfo("No dependency cycles")
		return
	}
	printWarning("%d dependency cycle(s) detected", len(cycles))
	for _, c := range cycles {
		line := ""
		for i, n := range c {
			if i > 0 {
				line += " " + iconArrow + " "
			}
			line += n
		}
		printDetail("%s", line)
	}
}

func printOrder(order, excluded []string) {
	printNewline()
	if len(order) == 0 {
		printWarning("No installable packages (every node depends on a cycle)")
	} else {
		printInfo("Installation order (dependencies first)")
		for i, n := range order {
			printDetail("%2d. %s", i+1, n)
		}
	}
	if len(excluded) > 0 {
		printWarning("Excluded from ordering (cyclic or depending on a cycle)")
		for _, n := range excluded {
			printDetail("%s", n)
		}
	}
}
