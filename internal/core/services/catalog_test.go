package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
)

func TestCatalogSynchronizer_FetchPersists(t *testing.T) {
	ctx := context.Background()
	store := newTestKV()
	src := newFakeSource(entry("AMP", 2015, "2024-08-14T18:29:03Z"))
	sync := NewCatalogSynchronizer(src, store)

	_, ok, err := sync.Cached(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	catalog, err := sync.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, catalog.Entries, 1)

	cached, ok, err := sync.Cached(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, catalog.Entries, cached.Entries)
}

func TestCatalogSynchronizer_FetchOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestKV()
	src := newFakeSource(entry("AMP", 2015, "v1"))
	sync := NewCatalogSynchronizer(src, store)

	_, err := sync.Fetch(ctx)
	require.NoError(t, err)

	src.setEntries(entry("AMP", 2015, "v2"), entry("BIS", 1985, "v1"))
	_, err = sync.Fetch(ctx)
	require.NoError(t, err)

	cached, ok, err := sync.Cached(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached.Entries, 2)
	assert.Equal(t, "v2", cached.Entries[0].LastUpdatedAt)
}

func TestCatalogSynchronizer_FetchError(t *testing.T) {
	src := newFakeSource()
	src.failCatalog(fmt.Errorf("%w: offline", domain.ErrNetwork))
	sync := NewCatalogSynchronizer(src, newTestKV())

	_, err := sync.Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestCatalogSynchronizer_CorruptCacheDropped(t *testing.T) {
	ctx := context.Background()
	store := newTestKV()
	require.NoError(t, store.Put(ctx, driven.CollectionCatalog, driven.CatalogKey, domain.Record{Value: []byte("{not json")}))
	sync := NewCatalogSynchronizer(newFakeSource(), store)

	_, ok, err := sync.Cached(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	_, present, err := store.Get(ctx, driven.CollectionCatalog, driven.CatalogKey)
	require.NoError(t, err)
	assert.False(t, present)
}
