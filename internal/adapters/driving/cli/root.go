// Package cli provides the cobra command tree for jesoes.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// version is set at build time via SetVersion.
var version = "dev"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// DataDir overrides the storage.data_dir setting.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool

	// Ephemeral keeps the cache and selections in memory for this run.
	Ephemeral bool
}

// Services are the core services the commands drive.
type Services struct {
	Sync      driving.SyncService
	Reader    driving.ReaderService
	Selection driving.SelectionService
	Settings  driving.SettingsService

	// Watch blocks, calling onChange whenever the local mirror's catalog
	// changes. Nil when no mirror is configured.
	Watch func(ctx context.Context, onChange func()) error

	// Close releases storage. Optional.
	Close func() error
}

// Bootstrap builds Services from the global flags.
type Bootstrap func(opts Options) (*Services, error)

var (
	syncService      driving.SyncService
	readerService    driving.ReaderService
	selectionService driving.SelectionService
	settingsService  driving.SettingsService
	watchMirror      func(ctx context.Context, onChange func()) error
	closeServices    func() error
)

var (
	bootstrap  Bootstrap
	globalOpts Options
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "jesoes",
	Short: "Offline-first reader for published Bible translations",
	Long: `jesoes keeps a local cache of published Bible translations and reads
them side by side from the terminal, a full-screen TUI, or an MCP client.

The first sync downloads the catalog and every translation it lists.
Later runs read from the cache and only download what has changed.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.jesoes)")
	flags.StringVar(&globalOpts.DataDir, "data-dir", "", "directory holding the cache database")
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&globalOpts.Ephemeral, "ephemeral", false, "keep the cache in memory and write nothing to disk")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	svc, err := bootstrap(globalOpts)
	if err != nil {
		return fmt.Errorf("start-up failed: %w", err)
	}
	useServices(svc)
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	return closeServices()
}

func useServices(svc *Services) {
	syncService = svc.Sync
	readerService = svc.Reader
	selectionService = svc.Selection
	settingsService = svc.Settings
	watchMirror = svc.Watch
	closeServices = svc.Close
}

// ensureLoaded makes sure document sets are in memory. The cache is tried
// first; a network pass only runs when nothing has been cached yet.
func ensureLoaded(cmd *cobra.Command) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	if syncService.Status().Ready {
		return nil
	}

	ctx := cmd.Context()
	report, err := syncService.LoadCached(ctx)
	if err != nil {
		return storageHint(cmd, err)
	}
	if report != nil && syncService.Status().Ready {
		return nil
	}

	cmd.Println("Nothing cached yet, downloading the catalog...")
	if err := syncService.Initialize(ctx, nil); err != nil {
		return storageHint(cmd, err)
	}
	if !syncService.Status().Ready {
		return domain.ErrNotReady
	}
	return nil
}

// storageHint explains a storage failure. The store resets itself before
// reporting, so running the command again is the recovery.
func storageHint(cmd *cobra.Command, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		cmd.PrintErrln("The local cache could not be opened and has been reset. Please run the command again.")
	}
	return err
}
