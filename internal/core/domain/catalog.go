package domain

import (
	"fmt"
	"strings"
)

// Catalog is the remote listing of published document sets.
type Catalog struct {
	// Name optionally labels the catalog.
	Name string `json:"name,omitempty"`

	// Description is optional publisher text.
	Description string `json:"description,omitempty"`

	// PublishedAt is the optional publication stamp of the listing itself.
	PublishedAt string `json:"published_at,omitempty"`

	// Entries are the document sets on offer, in display order.
	Entries []CatalogEntry `json:"bibles"`
}

// CatalogEntry describes one downloadable document set.
type CatalogEntry struct {
	// Locale is the language tag of the set.
	Locale string `json:"locale"`

	// Code identifies the set.
	Code string `json:"code"`

	// Year is the publication year.
	Year int `json:"year"`

	// DownloadURL is where the full body can be fetched.
	DownloadURL string `json:"download_url"`

	// LastUpdatedAt is the version the remote currently publishes.
	LastUpdatedAt string `json:"last_update_DT"`

	// Name is the optional display title.
	Name string `json:"name,omitempty"`

	// Language is the optional human-readable language name.
	Language string `json:"language,omitempty"`
}

// CacheKey returns the persistence key "{locale}_{code}_{year}".
// Returns ErrInvalidEntry if any component is missing.
func (e CatalogEntry) CacheKey() (string, error) {
	if strings.TrimSpace(e.Locale) == "" {
		return "", fmt.Errorf("%w: missing locale", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.Code) == "" {
		return "", fmt.Errorf("%w: missing code", ErrInvalidEntry)
	}
	if e.Year <= 0 {
		return "", fmt.Errorf("%w: missing year for %s", ErrInvalidEntry, e.Code)
	}
	return fmt.Sprintf("%s_%s_%d", e.Locale, e.Code, e.Year), nil
}

// Validate checks the entry can be cached and fetched.
func (e CatalogEntry) Validate() error {
	if _, err := e.CacheKey(); err != nil {
		return err
	}
	if strings.TrimSpace(e.DownloadURL) == "" {
		return fmt.Errorf("%w: missing download_url for %s", ErrInvalidEntry, e.Code)
	}
	return nil
}

// Find returns the first entry whose code matches, ignoring case.
func (c *Catalog) Find(code string) (CatalogEntry, bool) {
	for _, e := range c.Entries {
		if strings.EqualFold(e.Code, code) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
