package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"depviz/pkg/config"
	"depviz/pkg/pipeline"
	"depviz/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format string
	depth  int
	filter string
	output string
}

// newExportCmd creates the export command, which runs the full pipeline
// and writes the graph as DOT text or a rendered image.
func newExportCmd(root *rootOpts) *cobra.Command {
	opts := exportOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "export [package]",
		Short: "Export the dependency graph as DOT, SVG, or PNG",
		Long: `Export builds the dependency graph and writes it to a file.

The dot format is plain Graphviz text; svg and png are rendered through
the embedded Graphviz engine. Cyclic edges are highlighted in red.

Examples:
  depviz export requests -o requests.dot
  depviz export flask --format svg -o flask.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.PackageName = args[0]
			}
			if cmd.Flags().Changed("max-depth") {
				cfg.MaxDepth = opts.depth
			}
			if cmd.Flags().Changed("filter") {
				cfg.FilterSubstring = opts.filter
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			format := strings.ToLower(opts.format)
			switch format {
			case "dot", "svg", "png":
			default:
				return fmt.Errorf("unknown format %q: want dot, svg, or png", opts.format)
			}

			output := opts.output
			if output == "" {
				output = outputPath(cfg.Output, format)
			}

			return runExport(cmd, cfg, format, output)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (dot, svg, png)")
	cmd.Flags().IntVar(&opts.depth, "max-depth", 0, "maximum dependency depth (overrides config)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "exclude dependencies containing this substring")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (defaults to the configured output)")

	return cmd
}

// outputPath rewrites the configured output extension to match format.
func outputPath(configured, format string) string {
	ext := filepath.Ext(configured)
	return strings.TrimSuffix(configured, ext) + "." + format
}

func runExport(cmd *cobra.Command, cfg *config.Config, format, output string) error {
	ctx := cmd.Context()
	pkg := cfg.PackageName

	prov, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s...", pkg))
	spinner.Start()

	res, err := pipeline.NewRunner(prov).Run(ctx, pipeline.Options{
		Package:  pkg,
		MaxDepth: cfg.MaxDepth,
		Filter:   cfg.FilterSubstring,
		Stage:    pipeline.StageExport,
	})
	if err != nil {
		spinner.Stop()
		return err
	}

	var data []byte
	switch format {
	case "dot":
		data = []byte(res.DOT)
	case "svg":
		data, err = render.RenderSVG(ctx, res.DOT)
	case "png":
		data, err = render.RenderPNG(ctx, res.DOT)
	}
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Exported %s as %s", pkg, strings.ToUpper(format))
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), len(res.Cycles))
	printFile(output)
	return nil
}
