// Package domain defines the core entities for the jesoes document cache.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentSet: A versioned, published text (one Bible translation)
//   - Catalog: The remote listing of available document sets
//   - Record: A persisted cache value tagged with its version
//   - Position: A collection/section/item coordinate
//   - HistoryEntry: A visited position with its timestamp
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
