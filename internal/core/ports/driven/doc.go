// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - KVStore: Versioned cache of catalogs and document bodies
//   - StateStore: Persisted selection state (primary, history, tab)
//   - CatalogSource: Downloads the catalog
//   - DocumentSource: Downloads document bodies
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
