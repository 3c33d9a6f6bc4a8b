package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Storage Errors.

	// ErrStorageUnavailable indicates the persistent store could not be opened
	// or its version conflict could not be migrated. The store has been reset
	// and the caller should offer a retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnknownCollection indicates a write to a collection that was never declared.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrDataIntegrity indicates a persisted value could not be decoded.
	// The value is dropped and rebuilt from the remote copy.
	ErrDataIntegrity = errors.New("data integrity")

	// Remote Errors.

	// ErrNetwork indicates a remote fetch failed or returned an error status.
	ErrNetwork = errors.New("network error")

	// ErrRateLimited indicates the remote host asked us to slow down.
	ErrRateLimited = errors.New("rate limited")

	// Catalog and Selection Errors.

	// ErrInvalidEntry indicates a catalog entry cannot produce a cache key.
	ErrInvalidEntry = errors.New("invalid catalog entry")

	// ErrInvalidSelection indicates a code that matches no loaded document set.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrSyncInProgress indicates a catalog pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrNotReady indicates no document set has been loaded yet.
	ErrNotReady = errors.New("no document set loaded")
)
