package main

import (
	"context"
	"fmt"

	"github.com/HMaxF/jesoes.com/internal/adapters/driven/config/file"
	"github.com/HMaxF/jesoes.com/internal/adapters/driven/remote"
	"github.com/HMaxF/jesoes.com/internal/adapters/driven/remote/mirror"
	"github.com/HMaxF/jesoes.com/internal/adapters/driven/storage/memory"
	"github.com/HMaxF/jesoes.com/internal/adapters/driven/storage/sqlite"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/cli"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/core/services"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// wire builds the services for one command run.
func wire(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}

	src, watch, err := newSource(settings)
	if err != nil {
		return nil, err
	}

	schema := driven.DefaultSchema(settings.Storage.SchemaVersion)
	opt := services.ManagerOptions{Concurrency: settings.Fetch.Concurrency}

	var manager *services.Manager
	var closeStore func() error
	if opts.Ephemeral {
		logger.Debug("ephemeral run: cache kept in memory")
		store := memory.NewKVStore(schema)
		manager = services.NewManager(store, memory.NewStateStore(), src, src, opt)
		closeStore = store.Close
	} else {
		dataDir := settings.Storage.DataDir
		if opts.DataDir != "" {
			dataDir = opts.DataDir
		}
		store, err := sqlite.NewStore(dataDir, schema)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		manager = services.NewManager(store, store.StateStore(), src, src, opt)
		store.OnOpenError(func(err error) {
			logger.Warn("cache reset after open failure: %v", err)
			manager.ClearMemory()
		})
		closeStore = store.Close
	}

	return &cli.Services{
		Sync:      manager,
		Reader:    manager,
		Selection: manager,
		Settings:  settingsService,
		Watch:     watch,
		Close:     closeStore,
	}, nil
}

// newSource picks the mirror directory when one is configured and the
// publisher otherwise. The watch function is nil without a mirror.
func newSource(settings *domain.AppSettings) (driven.Source, func(context.Context, func()) error, error) {
	if settings.Mirror.Enabled() {
		src, err := mirror.NewSource(settings.Mirror.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("reading from mirror %s", src.Dir())
		return src, mirror.NewWatcher(src.Dir(), 0).Watch, nil
	}

	client, err := remote.NewClient(remote.Config{
		CatalogURL: settings.Catalog.URL,
		Timeout:    settings.Fetch.Timeout,
		UserAgent:  settings.Fetch.UserAgent,
		RateLimit: remote.RateLimitConfig{
			RequestsPerSecond: settings.Fetch.RatePerSecond,
			BurstSize:         settings.Fetch.Burst,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("catalog client: %w", err)
	}
	return client, nil, nil
}
