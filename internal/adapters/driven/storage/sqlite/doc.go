// Package sqlite provides a SQLite-based implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - KVStore: Versioned cache of catalogs and document bodies
//   - StateStore: Persisted selection state
//
// # Schema
//
// Table layout is managed through migrations stored in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// The cache contents are versioned separately through PRAGMA user_version.
// When the stored version is older than the Schema version the cache is
// migrated according to the Schema's MigrationPolicy. A newer stored version
// cannot be understood and triggers a destructive reset.
//
// # Data Location
//
// By default, the database is stored at ~/.jesoes/data/jesoes.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
