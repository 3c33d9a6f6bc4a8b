package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// Ensure KVStore implements the interface.
var _ driven.KVStore = (*KVStore)(nil)

// KVStore is an in-memory implementation of driven.KVStore.
// Records do not survive the process. It is used when persistent
// storage is disabled and in tests.
type KVStore struct {
	mu      sync.RWMutex
	schema  driven.Schema
	records map[string]map[string]domain.Record
}

// NewKVStore creates an in-memory store declaring the schema's collections.
func NewKVStore(schema driven.Schema) *KVStore {
	s := &KVStore{schema: schema}
	s.recreate()
	return s
}

// Open is a no-op; the store is ready once constructed.
func (s *KVStore) Open(_ context.Context) error {
	return nil
}

// Put stores or replaces a record.
func (s *KVStore) Put(_ context.Context, collection, key string, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.records[collection]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}
	if record.StoredAt.IsZero() {
		record.StoredAt = time.Now().UTC()
	}
	record.Value = append([]byte(nil), record.Value...)
	records[key] = record
	return nil
}

// Get retrieves a record. Undeclared collections read as absent.
func (s *KVStore) Get(_ context.Context, collection, key string) (*domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[collection]
	if !ok {
		logger.Warn("get from undeclared collection %q", collection)
		return nil, false, nil
	}
	record, ok := records[key]
	if !ok {
		return nil, false, nil
	}
	record.Value = append([]byte(nil), record.Value...)
	return &record, true, nil
}

// Delete removes a record.
func (s *KVStore) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.records[collection]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}
	delete(records, key)
	return nil
}

// Keys lists the keys in a collection in key order.
func (s *KVStore) Keys(_ context.Context, collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records[collection]))
	for k := range s.records[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Collections lists the declared collections in name order.
func (s *KVStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every record and restores the declared schema.
func (s *KVStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recreate()
	return nil
}

// Close is a no-op.
func (s *KVStore) Close() error {
	return nil
}

// recreate declares empty collections (caller must hold lock or own s).
func (s *KVStore) recreate() {
	s.records = make(map[string]map[string]domain.Record, len(s.schema.Collections))
	for _, name := range s.schema.Collections {
		s.records[name] = make(map[string]domain.Record)
	}
}
