package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the local cache with the catalog",
	Long: `Loads the cached catalog, then downloads the published catalog and
fetches every document set that is missing or out of date.
A failure on one document set does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is cached and selected",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Synchronising document sets...")

	err := syncService.Initialize(cmd.Context(), func(report domain.PassReport) {
		printPassReport(cmd, &report)
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", storageHint(cmd, err))
	}

	status := syncService.Status()
	cmd.Printf("%d document sets ready.\n", status.Documents)
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	if _, err := syncService.LoadCached(cmd.Context()); err != nil {
		return storageHint(cmd, err)
	}

	status := syncService.Status()
	cmd.Printf("Ready:      %t\n", status.Ready)
	cmd.Printf("Documents:  %d\n", status.Documents)
	cmd.Printf("Primary:    %s\n", orNone(status.PrimaryCode))
	cmd.Printf("Secondary:  %s\n", orNone(strings.Join(status.SecondaryCodes, ", ")))
	return nil
}

// printPassReport writes a one-line summary of a pass followed by any
// per-entry failures.
func printPassReport(cmd *cobra.Command, report *domain.PassReport) {
	cmd.Printf("[%s] %d entries in %s: %d fetched, %d refreshed, %d loaded, %d unchanged, %d failed\n",
		report.Source,
		report.Total,
		report.Duration.Round(time.Millisecond),
		report.Count(domain.OutcomeFetched),
		report.Count(domain.OutcomeRefreshed),
		report.Count(domain.OutcomeLoaded),
		report.Count(domain.OutcomeRevalidated),
		len(report.Failures),
	)
	for _, f := range report.Failures {
		cmd.Printf("  ! %s\n", f.Error())
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
