package tui

import "errors"

// ErrMissingReader is returned when the reader service is not provided.
var ErrMissingReader = errors.New("tui: reader service is required")

// ErrMissingSelection is returned when the selection service is not provided.
var ErrMissingSelection = errors.New("tui: selection service is required")

// ErrMissingSync is returned when the sync service is not provided.
var ErrMissingSync = errors.New("tui: sync service is required")
