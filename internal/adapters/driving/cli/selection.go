package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

var secondaryClear bool

var primaryCmd = &cobra.Command{
	Use:   "primary [code]",
	Short: "Show or select the primary document set",
	Long: `Without arguments, prints the primary document set.
With a code, selects it. Codes are matched case-insensitively and the
new primary is removed from the secondary sets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrimary,
}

var secondaryCmd = &cobra.Command{
	Use:   "secondary [codes...]",
	Short: "Show or select the secondary document sets",
	Long: `Without arguments, prints the secondary document sets.
With codes, replaces the selection. Unknown codes and the primary are
dropped. Use --clear to show no secondary sets.`,
	RunE: runSecondary,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently read positions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var gotoCmd = &cobra.Command{
	Use:   "goto <collection> <section> <item>",
	Short: "Record a position and make it the current one",
	Args:  cobra.ExactArgs(3),
	RunE:  runGoto,
}

var tabCmd = &cobra.Command{
	Use:   "tab [choose|read|history]",
	Short: "Show or set the tab the TUI opens on",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTab,
}

func init() {
	secondaryCmd.Flags().BoolVar(&secondaryClear, "clear", false, "remove every secondary set")
	rootCmd.AddCommand(primaryCmd)
	rootCmd.AddCommand(secondaryCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(tabCmd)
}

func runPrimary(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return errors.New("selection service not configured")
	}
	if err := ensureLoaded(cmd); err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 0 {
		cmd.Println(orNone(selectionService.PrimaryCode(ctx)))
		return nil
	}

	if !selectionService.SetPrimaryCode(ctx, args[0]) {
		return fmt.Errorf("%w: %q is not a cached document set", domain.ErrInvalidSelection, args[0])
	}
	cmd.Printf("Primary set: %s\n", selectionService.PrimaryCode(ctx))
	return nil
}

func runSecondary(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return errors.New("selection service not configured")
	}

	ctx := cmd.Context()
	if len(args) == 0 && !secondaryClear {
		cmd.Println(orNone(strings.Join(selectionService.SecondaryCodes(ctx), ", ")))
		return nil
	}
	if err := ensureLoaded(cmd); err != nil {
		return err
	}

	if secondaryClear {
		args = nil
	}
	kept, ok := selectionService.SetSecondaryCodes(ctx, args)
	if !ok {
		return errors.New("secondary sets could not be saved")
	}
	if dropped := len(args) - len(kept); dropped > 0 {
		cmd.Printf("Ignored %d unknown or primary code(s).\n", dropped)
	}
	cmd.Printf("Secondary sets: %s\n", orNone(strings.Join(kept, ", ")))
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if selectionService == nil || readerService == nil {
		return errors.New("selection service not configured")
	}

	history := selectionService.PositionHistory(cmd.Context())
	if len(history) == 0 {
		cmd.Println("No positions recorded yet.")
		return nil
	}

	// Collection names are best effort; history is readable offline.
	if syncService != nil && !syncService.Status().Ready {
		_, _ = syncService.LoadCached(cmd.Context())
	}

	for _, h := range history {
		name, ok := readerService.GetCollectionName(h.Collection)
		if !ok {
			name = fmt.Sprintf("#%d", h.Collection)
		}
		cmd.Printf("%-20s %s %d:%d\n", h.VisitedAt.Local().Format(time.DateTime), name, h.Section, h.Item)
	}
	return nil
}

func runGoto(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return errors.New("selection service not configured")
	}

	pos, err := domain.ParsePosition(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	selectionService.RecordRawPosition(ctx, args[0], args[1], args[2])
	if err := selectionService.SetCurrentPosition(ctx, pos); err != nil {
		return err
	}
	cmd.Printf("Current position: %s\n", pos)
	return nil
}

func runTab(cmd *cobra.Command, args []string) error {
	if selectionService == nil {
		return errors.New("selection service not configured")
	}

	ctx := cmd.Context()
	if len(args) == 0 {
		cmd.Println(selectionService.SelectedTab(ctx))
		return nil
	}

	tab := domain.Tab(strings.ToLower(args[0]))
	if err := selectionService.SetSelectedTab(ctx, tab); err != nil {
		return fmt.Errorf("failed to set tab: %w", err)
	}
	cmd.Printf("Tab: %s\n", tab)
	return nil
}
