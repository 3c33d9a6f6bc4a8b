// Package services implements the driving port interfaces.
// Services hold the cache policy and selection rules and orchestrate
// calls to driven ports (adapters).
//
// The Manager is the single entry point used by the CLI, MCP and TUI
// adapters. It owns a Library of loaded document sets, a FetchEngine
// that keeps the cache fresh, and a SelectionStore for reader state.
package services
