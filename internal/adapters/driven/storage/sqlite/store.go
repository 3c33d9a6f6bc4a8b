package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/HMaxF/jesoes.com/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// dbFileName is the database file within the data directory.
const dbFileName = "jesoes.db"

// Store is a SQLite-based storage that provides the KVStore and
// StateStore interfaces through a single database.
type Store struct {
	mu          sync.RWMutex
	db          *sql.DB
	path        string
	schema      driven.Schema
	declared    map[string]struct{}
	onOpenError func(error)
}

// Ensure Store implements the interface.
var _ driven.KVStore = (*Store)(nil)

// NewStore creates a store at the specified data directory. The database
// is not touched until Open is called.
// If dataDir is empty, defaults to ~/.jesoes/data/jesoes.db.
func NewStore(dataDir string, schema driven.Schema) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".jesoes", "data")
	}

	return &Store{
		path:     filepath.Join(dataDir, dbFileName),
		schema:   schema,
		declared: make(map[string]struct{}),
	}, nil
}

// OnOpenError registers a callback invoked after a failed Open has reset
// the store. Callers use it to clear session caches and prompt for a retry.
func (s *Store) OnOpenError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpenError = fn
}

// Open opens the database, applies table migrations and reconciles the
// cache version. Calling Open on an open store is a no-op.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := s.open(ctx); err != nil {
		return s.resetAfterFailure(err)
	}
	return nil
}

// open performs the actual open (caller must hold lock).
func (s *Store) open(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	s.db = db
	if err := s.reconcile(ctx); err != nil {
		s.db = nil
		db.Close()
		return err
	}
	return nil
}

// reconcile compares the stored cache version against the schema
// (caller must hold lock).
func (s *Store) reconcile(ctx context.Context) error {
	var stored int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&stored); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	switch {
	case stored == 0:
		logger.Info("creating cache schema version %d", s.schema.Version)
		return s.recreate(ctx)
	case stored == s.schema.Version:
		return s.loadDeclared(ctx)
	case stored < s.schema.Version:
		logger.Info("migrating cache from version %d to %d (%s)", stored, s.schema.Version, s.schema.Policy)
		switch s.schema.Policy {
		case driven.MigrationWipeAndRecreate:
			return s.recreate(ctx)
		default:
			return fmt.Errorf("unsupported migration policy %d", s.schema.Policy)
		}
	default:
		return fmt.Errorf("stored schema version %d is newer than %d", stored, s.schema.Version)
	}
}

// recreate drops every record and declaration, declares the schema's
// collections and stamps the version (caller must hold lock).
func (s *Store) recreate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_records"); err != nil {
		return fmt.Errorf("dropping records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_collections"); err != nil {
		return fmt.Errorf("dropping collections: %w", err)
	}
	for _, name := range s.schema.Collections {
		if _, err := tx.ExecContext(ctx, "INSERT INTO kv_collections (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("declaring collection %s: %w", name, err)
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", s.schema.Version)); err != nil {
		return fmt.Errorf("stamping schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}

	s.declared = make(map[string]struct{}, len(s.schema.Collections))
	for _, name := range s.schema.Collections {
		s.declared[name] = struct{}{}
	}
	return nil
}

// loadDeclared reads the declared collections (caller must hold lock).
func (s *Store) loadDeclared(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM kv_collections")
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	declared := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning collection: %w", err)
		}
		declared[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.declared = declared
	return nil
}

// resetAfterFailure deletes the database files so the next Open starts
// clean, notifies the callback and reports the store unavailable
// (caller must hold lock).
func (s *Store) resetAfterFailure(cause error) error {
	logger.Error("storage open failed, resetting %s: %v", s.path, cause)

	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	s.declared = make(map[string]struct{})

	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing %s: %v", p, err)
		}
	}

	if s.onOpenError != nil {
		s.onOpenError(cause)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, cause)
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StateStore returns a StateStore interface backed by this store.
func (s *Store) StateStore() driven.StateStore {
	return &stateStore{store: s}
}

// Collections lists the declared collections in name order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.declared))
	for name := range s.declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Put stores or replaces a record.
func (s *Store) Put(ctx context.Context, collection, key string, record domain.Record) error {
	db, declared, err := s.handle(collection)
	if err != nil {
		return err
	}
	if !declared {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}

	if record.StoredAt.IsZero() {
		record.StoredAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO kv_records (collection, key, value, version, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, key) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			stored_at = excluded.stored_at
	`, collection, key, record.Value, record.Version, record.StoredAt)
	if err != nil {
		return fmt.Errorf("saving record %s/%s: %w", collection, key, err)
	}
	return nil
}

// Get retrieves a record. Undeclared collections read as absent.
func (s *Store) Get(ctx context.Context, collection, key string) (*domain.Record, bool, error) {
	db, declared, err := s.handle(collection)
	if err != nil {
		return nil, false, err
	}
	if !declared {
		logger.Warn("get from undeclared collection %q", collection)
		return nil, false, nil
	}

	row := db.QueryRowContext(ctx, `
		SELECT value, version, stored_at FROM kv_records
		WHERE collection = ? AND key = ?
	`, collection, key)

	var record domain.Record
	var storedAt sql.NullTime
	if err := row.Scan(&record.Value, &record.Version, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scanning record %s/%s: %w", collection, key, err)
	}
	if storedAt.Valid {
		record.StoredAt = storedAt.Time
	}
	return &record, true, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	db, declared, err := s.handle(collection)
	if err != nil {
		return err
	}
	if !declared {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}

	if _, err := db.ExecContext(ctx,
		"DELETE FROM kv_records WHERE collection = ? AND key = ?", collection, key); err != nil {
		return fmt.Errorf("deleting record %s/%s: %w", collection, key, err)
	}
	return nil
}

// Keys lists the keys in a collection in key order.
func (s *Store) Keys(ctx context.Context, collection string) ([]string, error) {
	db, declared, err := s.handle(collection)
	if err != nil {
		return nil, err
	}
	if !declared {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		"SELECT key FROM kv_records WHERE collection = ? ORDER BY key", collection)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Reset drops every record and restores the declared schema.
// Selection state is untouched.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return domain.ErrStorageUnavailable
	}
	return s.recreate(ctx)
}

// handle returns the open database and whether collection is declared.
func (s *Store) handle(collection string) (*sql.DB, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, false, fmt.Errorf("%w: store is not open", domain.ErrStorageUnavailable)
	}
	_, ok := s.declared[collection]
	return s.db, ok, nil
}

// migrate runs all pending table migrations.
func migrate(ctx context.Context, db *sql.DB, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
