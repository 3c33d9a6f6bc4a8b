// Package mcp provides an MCP (Model Context Protocol) server adapter for jesoes.
// It lets AI assistants read the cached document sets and manage the
// reader's primary and secondary selections.
package mcp

import "errors"

// ErrMissingReader is returned when the reader service is not provided.
var ErrMissingReader = errors.New("mcp: reader service is required")

// ErrMissingSelection is returned when the selection service is not provided.
var ErrMissingSelection = errors.New("mcp: selection service is required")
