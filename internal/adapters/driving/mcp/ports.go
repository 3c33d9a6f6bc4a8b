package mcp

import (
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reader answers text lookups against the loaded document sets.
	Reader driving.ReaderService

	// Selection reads and writes the reader's persisted selections.
	Selection driving.SelectionService

	// Sync reports load status. Optional.
	Sync driving.SyncService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reader == nil {
		return ErrMissingReader
	}
	if p.Selection == nil {
		return ErrMissingSelection
	}
	return nil
}
