// Package tui provides an interactive terminal user interface for jesoes.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reader answers lookups against the loaded document sets.
	Reader driving.ReaderService

	// Selection reads and writes the persisted selections.
	Selection driving.SelectionService

	// Sync loads and refreshes the cache.
	Sync driving.SyncService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Reader == nil {
		return ErrMissingReader
	}
	if p.Selection == nil {
		return ErrMissingSelection
	}
	if p.Sync == nil {
		return ErrMissingSync
	}
	return nil
}
