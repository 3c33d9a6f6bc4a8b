package driven

import (
	"context"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// CatalogSource retrieves the current catalog from its publisher.
type CatalogSource interface {
	// FetchCatalog downloads and decodes the catalog.
	// Implementations bypass intermediary caches on every call.
	// Failures wrap domain.ErrNetwork.
	FetchCatalog(ctx context.Context) (*domain.Catalog, error)
}

// DocumentSource retrieves document bodies.
type DocumentSource interface {
	// FetchDocument downloads the body published for entry and returns
	// the raw JSON so callers can persist it unchanged.
	// Failures wrap domain.ErrNetwork.
	FetchDocument(ctx context.Context, entry domain.CatalogEntry) ([]byte, error)
}

// Source is a publisher that offers both a catalog and document bodies.
type Source interface {
	CatalogSource
	DocumentSource
}
