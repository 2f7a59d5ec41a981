package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"depviz/pkg/config"
	"depviz/pkg/pipeline"
)

var (
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	menuNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	menuDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// menuAction identifies what the user picked from the interactive menu.
type menuAction int

const (
	actionNone menuAction = iota
	actionShowConfig
	actionAnalyze
	actionSetPackage
	actionToggleTestMode
	actionSetDepth
	actionSetFilter
	actionQuit
)

type menuItem struct {
	action menuAction
	label  string
}

// menuModel is the bubbletea model for the interactive session menu.
type menuModel struct {
	items    []menuItem
	cursor   int
	selected menuAction
}

func newMenuModel(cfg *config.Config) menuModel {
	mode := "registry"
	if cfg.TestMode {
		mode = "fixture"
	}
	return menuModel{
		items: []menuItem{
			{actionShowConfig, "Show configuration"},
			{actionAnalyze, fmt.Sprintf("Analyze %s", cfg.PackageName)},
			{actionSetPackage, "Change package"},
			{actionToggleTestMode, fmt.Sprintf("Toggle lookup mode (currently %s)", mode)},
			{actionSetDepth, fmt.Sprintf("Set analysis depth (currently %d)", cfg.MaxDepth)},
			{actionSetFilter, "Set dependency filter"},
			{actionQuit, "Quit"},
		},
	}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			m.selected = actionQuit
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.items[m.cursor].action
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("depviz"))
	b.WriteString("\n")
	b.WriteString(menuDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := cursor + item.label
		if i == m.cursor {
			b.WriteString(menuSelectedStyle.Render(line))
		} else {
			b.WriteString(menuNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// newInteractiveCmd creates the interactive command: a menu-driven session
// that edits the in-memory configuration and runs analyses until the user
// quits. Changes are not written back to the config file.
func newInteractiveCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Menu-driven analysis session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runInteractive(cmd, cfg)
		},
	}
}

func runInteractive(cmd *cobra.Command, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		model, err := tea.NewProgram(newMenuModel(cfg), tea.WithContext(cmd.Context())).Run()
		if err != nil {
			return err
		}
		menu, ok := model.(menuModel)
		if !ok {
			return fmt.Errorf("unexpected model type %T", model)
		}

		switch menu.selected {
		case actionQuit, actionNone:
			return nil

		case actionShowConfig:
			showConfig(cfg)

		case actionAnalyze:
			if err := cfg.Validate(); err != nil {
				printError("%s", err)
				continue
			}
			if err := runAnalyze(cmd, cfg, pipeline.StageExport); err != nil {
				printError("analysis failed: %s", err)
			}

		case actionSetPackage:
			name := prompt(reader, "Package name: ")
			if name == "" {
				printWarning("Package name cannot be empty")
				continue
			}
			cfg.PackageName = name
			printSuccess("Package set to %s", name)

		case actionToggleTestMode:
			cfg.TestMode = !cfg.TestMode
			if cfg.TestMode {
				printSuccess("Lookup mode: fixture repository (%s)", cfg.TestRepositoryPath)
			} else {
				printSuccess("Lookup mode: registry (%s)", cfg.RepositoryURL)
			}

		case actionSetDepth:
			input := prompt(reader, fmt.Sprintf("Analysis depth (0-%d): ", config.MaxDepthLimit))
			depth, err := strconv.Atoi(input)
			if err != nil || depth < 0 || depth > config.MaxDepthLimit {
				printWarning("Depth must be an integer between 0 and %d", config.MaxDepthLimit)
				continue
			}
			cfg.MaxDepth = depth
			printSuccess("Depth set to %d", depth)

		case actionSetFilter:
			cfg.FilterSubstring = prompt(reader, "Filter substring (empty to clear): ")
			if cfg.FilterSubstring == "" {
				printSuccess("Filter cleared")
			} else {
				printSuccess("Filter set to %q", cfg.FilterSubstring)
			}
		}
	}
}

func showConfig(cfg *config.Config) {
	fmt.Println(StyleTitle.Render("Configuration"))
	printKeyValue("package_name", cfg.PackageName)
	printKeyValue("repository_url", cfg.RepositoryURL)
	printKeyValue("test_repository_path", cfg.TestRepositoryPath)
	printKeyValue("test_mode", strconv.FormatBool(cfg.TestMode))
	printKeyValue("max_depth", strconv.Itoa(cfg.MaxDepth))
	printKeyValue("filter_substring", cfg.FilterSubstring)
	printKeyValue("output", cfg.Output)
	printNewline()
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(StyleDim.Render(label))
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
