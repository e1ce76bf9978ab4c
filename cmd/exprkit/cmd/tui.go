package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/msto63/exprkit/internal/tui/repl"
	"github.com/msto63/exprkit/pkg/core/version"
)

var (
	tuiDB     string
	tuiLegacy bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Full-screen interactive evaluator",
	Long: `Starts the terminal UI.

Keys:
  Enter        evaluate
  Ctrl+T       toggle tree view
  Ctrl+L       clear the transcript
  PgUp/PgDn    scroll
  Esc, Ctrl+C  quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiDB, "db", "", "SQLite database for persistent variables")
	tuiCmd.Flags().BoolVar(&tuiLegacy, "legacy", false, "use the lenient legacy grammar")
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newLocalService(tuiDB, tuiLegacy)
	if err != nil {
		return err
	}
	defer cleanup()

	model := repl.New(repl.Config{
		Service:  svc,
		Prompt:   appConfig.TUI.Prompt,
		ShowTree: appConfig.TUI.ShowTree,
		Version:  version.Version,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
