package driven

import (
	"context"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// Collection names declared by the default schema.
const (
	// CollectionCatalog holds the last downloaded catalog under CatalogKey.
	CollectionCatalog = "catalog"

	// CollectionDocuments holds document bodies keyed by CatalogEntry.CacheKey.
	CollectionDocuments = "documents"

	// CatalogKey is the single key used within CollectionCatalog.
	CatalogKey = "current"
)

// KVStore is durable, versioned storage for cache records.
// Records are grouped into collections that must be declared by the
// store's schema before use.
type KVStore interface {
	// Open prepares the store, creating or migrating the schema.
	// Returns domain.ErrStorageUnavailable if the store could not be
	// opened. In that case it has already been reset so a retry starts
	// from an empty store.
	Open(ctx context.Context) error

	// Put writes a record, replacing any existing value for the key.
	// Returns domain.ErrUnknownCollection for undeclared collections.
	Put(ctx context.Context, collection, key string, record domain.Record) error

	// Get reads a record. The boolean is false when the key is absent
	// or the collection is undeclared.
	Get(ctx context.Context, collection, key string) (*domain.Record, bool, error)

	// Delete removes a record. Deleting an absent key is not an error.
	Delete(ctx context.Context, collection, key string) error

	// Keys lists the keys stored in a collection.
	Keys(ctx context.Context, collection string) ([]string, error)

	// Collections lists the declared collections.
	Collections() []string

	// Reset destroys every record and restores the declared schema.
	Reset(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// MigrationPolicy decides what happens to cached records when the stored
// schema version is older than the expected one.
type MigrationPolicy int

const (
	// MigrationWipeAndRecreate drops every record and declaration and
	// recreates the expected collections. No data is carried forward.
	MigrationWipeAndRecreate MigrationPolicy = iota
)

// String returns the policy name.
func (p MigrationPolicy) String() string {
	switch p {
	case MigrationWipeAndRecreate:
		return "wipe-and-recreate"
	default:
		return "unknown"
	}
}

// Schema declares the expected store layout.
type Schema struct {
	// Version is stamped on the store. Bump it to invalidate every record.
	Version int

	// Collections are declared when the schema is created.
	Collections []string

	// Policy applies when an older version is found.
	Policy MigrationPolicy
}

// DefaultSchema returns the catalog and document collections at version.
func DefaultSchema(version int) Schema {
	return Schema{
		Version:     version,
		Collections: []string{CollectionCatalog, CollectionDocuments},
		Policy:      MigrationWipeAndRecreate,
	}
}

// Declares reports whether the schema declares collection.
func (s Schema) Declares(collection string) bool {
	for _, c := range s.Collections {
		if c == collection {
			return true
		}
	}
	return false
}
