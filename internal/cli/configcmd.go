package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"depviz/pkg/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(root))
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

// newConfigShowCmd creates "config show", printing the effective
// configuration as key-value pairs.
func newConfigShowCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Configuration"))
			printNewline()
			printKeyValue("package_name", cfg.PackageName)
			printKeyValue("repository_url", cfg.RepositoryURL)
			printKeyValue("test_repository_path", cfg.TestRepositoryPath)
			printKeyValue("test_mode", strconv.FormatBool(cfg.TestMode))
			printKeyValue("max_depth", strconv.Itoa(cfg.MaxDepth))
			printKeyValue("filter_substring", cfg.FilterSubstring)
			printKeyValue("output", cfg.Output)
			printKeyValue("cache.backend", cfg.Cache.Backend)
			printKeyValue("cache.ttl", cfg.Cache.TTL)
			return nil
		},
	}
}

// newConfigInitCmd creates "config init", writing a commented starter file.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "depviz.yaml"
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.Example()), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			printSuccess("Wrote starter configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
