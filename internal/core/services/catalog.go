package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// CatalogSynchronizer downloads the catalog and keeps a cached copy.
// The cached copy exists only so something can be shown before the
// download completes; every download overwrites it.
type CatalogSynchronizer struct {
	source driven.CatalogSource
	store  driven.KVStore
	now    func() time.Time
}

// NewCatalogSynchronizer creates a new catalog synchronizer.
func NewCatalogSynchronizer(source driven.CatalogSource, store driven.KVStore) *CatalogSynchronizer {
	return &CatalogSynchronizer{
		source: source,
		store:  store,
		now:    time.Now,
	}
}

// Fetch downloads the catalog and persists it, replacing any cached copy.
// A persist failure is logged and the downloaded catalog is still returned.
func (c *CatalogSynchronizer) Fetch(ctx context.Context) (*domain.Catalog, error) {
	catalog, err := c.source.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	logger.Info("fetched catalog with %d entries", len(catalog.Entries))

	value, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	record := domain.Record{
		Value:    value,
		Version:  catalog.PublishedAt,
		StoredAt: c.now().UTC(),
	}
	if err := c.store.Put(ctx, driven.CollectionCatalog, driven.CatalogKey, record); err != nil {
		logger.Warn("persist catalog: %v", err)
	}

	return catalog, nil
}

// Cached returns the last persisted catalog without touching the network.
// The boolean is false when nothing is cached. An undecodable record is
// dropped and reported as domain.ErrDataIntegrity.
func (c *CatalogSynchronizer) Cached(ctx context.Context) (*domain.Catalog, bool, error) {
	record, ok, err := c.store.Get(ctx, driven.CollectionCatalog, driven.CatalogKey)
	if err != nil {
		return nil, false, fmt.Errorf("read cached catalog: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(record.Value, &catalog); err != nil {
		if derr := c.store.Delete(ctx, driven.CollectionCatalog, driven.CatalogKey); derr != nil {
			logger.Warn("drop cached catalog: %v", derr)
		}
		return nil, false, fmt.Errorf("%w: cached catalog: %v", domain.ErrDataIntegrity, err)
	}
	return &catalog, true, nil
}
