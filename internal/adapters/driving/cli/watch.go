package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync whenever the local mirror changes",
	Long: `Loads every document set, then watches the mirror directory set by
mirror.dir and runs a sync each time its catalog.json changes.
Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	if watchMirror == nil {
		return errors.New("no mirror configured; set mirror.dir first")
	}

	ctx := cmd.Context()
	if err := syncService.Initialize(ctx, func(report domain.PassReport) {
		printPassReport(cmd, &report)
	}); err != nil {
		return fmt.Errorf("initial sync failed: %w", storageHint(cmd, err))
	}

	cmd.Println("Watching mirror for changes...")
	return watchMirror(ctx, func() {
		report, err := syncService.Sync(ctx)
		if err != nil {
			cmd.PrintErrf("sync failed: %v\n", err)
			return
		}
		printPassReport(cmd, report)
	})
}
