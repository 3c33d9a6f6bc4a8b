package domain

import (
	"fmt"
	"time"
)

// DefaultCatalogURL is the published catalog of document sets.
const DefaultCatalogURL = "https://storage.googleapis.com/jesoes/bible-json/bible_list_2025-10-07_20-43-59.json"

// DefaultSchemaVersion is the persistent store layout version.
// Bump it when the cached bodies or collections change shape.
const DefaultSchemaVersion = 20241006

// AppSettings holds all application configuration.
type AppSettings struct {
	Catalog CatalogSettings
	Storage StorageSettings
	Fetch   FetchSettings
	Mirror  MirrorSettings
	Verbose bool
}

// CatalogSettings configures where the catalog is published.
type CatalogSettings struct {
	// URL is the catalog location.
	URL string
}

// StorageSettings configures the persistent cache.
type StorageSettings struct {
	// DataDir holds the database file. Empty means ~/.jesoes/data.
	DataDir string

	// SchemaVersion is the expected store version.
	SchemaVersion int
}

// FetchSettings configures remote downloads.
type FetchSettings struct {
	// Concurrency bounds parallel document downloads.
	Concurrency int

	// Timeout applies to each HTTP request.
	Timeout time.Duration

	// RatePerSecond is the sustained request rate.
	RatePerSecond float64

	// Burst is the token bucket size.
	Burst int

	// UserAgent is sent with every request.
	UserAgent string
}

// MirrorSettings configures an optional local mirror of the remote catalog.
type MirrorSettings struct {
	// Dir holds catalog.json and the document bodies it references.
	// Empty disables the mirror.
	Dir string
}

// Enabled reports whether a mirror directory is configured.
func (m MirrorSettings) Enabled() bool {
	return m.Dir != ""
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Catalog: CatalogSettings{URL: DefaultCatalogURL},
		Storage: StorageSettings{SchemaVersion: DefaultSchemaVersion},
		Fetch: FetchSettings{
			Concurrency:   4,
			Timeout:       30 * time.Second,
			RatePerSecond: 8,
			Burst:         8,
			UserAgent:     "jesoes-cli",
		},
	}
}

// Validate checks the settings are usable.
func (s *AppSettings) Validate() error {
	if s.Catalog.URL == "" && !s.Mirror.Enabled() {
		return fmt.Errorf("%w: catalog url or mirror dir is required", ErrInvalidInput)
	}
	if s.Storage.SchemaVersion <= 0 {
		return fmt.Errorf("%w: schema version must be positive", ErrInvalidInput)
	}
	if s.Fetch.Concurrency < 1 {
		return fmt.Errorf("%w: fetch concurrency must be at least 1", ErrInvalidInput)
	}
	if s.Fetch.Timeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidInput)
	}
	if s.Fetch.RatePerSecond <= 0 || s.Fetch.Burst < 1 {
		return fmt.Errorf("%w: fetch rate and burst must be positive", ErrInvalidInput)
	}
	return nil
}
