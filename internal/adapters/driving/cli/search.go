package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/adapters/driving/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [collection-id]",
	Short: "Launch the interactive search UI",
	Long: `Launch the interactive terminal user interface for querying a
collection. Without an argument a collection picker is shown first.

Controls:
  Enter    - Search / Select
  ↑/↓      - Browse matches
  Esc      - Back / Quit
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	collectionID := ""
	if len(args) == 1 {
		collectionID = args[0]
	}

	app, err := tui.NewApp(knowledgeService, collectionID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
