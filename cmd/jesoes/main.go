// Command jesoes reads published Bible translations from a local cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/cli"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the driven adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	logger.SetVerbose(opts.Verbose)

	app, err := wire(opts)
	if err != nil {
		return nil, fmt.Errorf("wiring services: %w", err)
	}
	return app, nil
}
