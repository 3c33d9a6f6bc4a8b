package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// newProgram builds the bubbletea program. Tests replace it.
var newProgram = func(model tea.Model) interface{ Run() (tea.Model, error) } {
	return tea.NewProgram(model, tea.WithAltScreen())
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the full-screen reader.

Cached document sets load immediately and a sync runs in the background.
The last tab and position are restored on start.

Controls:
  tab, shift+tab  - Switch between choose, read and history
  ↑/k, ↓/j        - Move
  ←/h, →/l        - Previous / next section
  [, ]            - Previous / next collection
  enter           - Select
  space           - Toggle a secondary set
  r               - Sync now
  ?               - Toggle help
  q               - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	ports := &tui.Ports{
		Reader:    readerService,
		Selection: selectionService,
		Sync:      syncService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	// The program owns the terminal; stray log lines would tear the display.
	prev := logger.SetOutput(io.Discard)
	defer logger.SetOutput(prev)

	if _, err := newProgram(app).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
