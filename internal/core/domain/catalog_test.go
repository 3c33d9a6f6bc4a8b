package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalog_DecodeWireFormat tests decoding the published catalog
func TestCatalog_DecodeWireFormat(t *testing.T) {
	body := `{"bibles": [
		{"locale": "en", "code": "AMP", "year": 2015,
		 "download_url": "https://example.com/amp.json", "last_update_DT": "2024-09-01 00:00:00"},
		{"locale": "id", "code": "TB", "year": 1974,
		 "download_url": "https://example.com/tb.json", "last_update_DT": "2024-09-02 00:00:00", "name": "Terjemahan Baru"}
	]}`

	var catalog Catalog
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	require.Len(t, catalog.Entries, 2)
	assert.Equal(t, "https://example.com/amp.json", catalog.Entries[0].DownloadURL)
	assert.Equal(t, "Terjemahan Baru", catalog.Entries[1].Name)

	entry, ok := catalog.Find("tb")
	require.True(t, ok)
	assert.Equal(t, "TB", entry.Code)

	_, ok = catalog.Find("nope")
	assert.False(t, ok)
}

// TestCatalogEntry_CacheKey tests key construction and validation
func TestCatalogEntry_CacheKey(t *testing.T) {
	tests := []struct {
		name    string
		entry   CatalogEntry
		want    string
		wantErr bool
	}{
		{"valid", CatalogEntry{Locale: "en", Code: "AMP", Year: 2015}, "en_AMP_2015", false},
		{"missing locale", CatalogEntry{Code: "AMP", Year: 2015}, "", true},
		{"blank code", CatalogEntry{Locale: "en", Code: "  ", Year: 2015}, "", true},
		{"missing year", CatalogEntry{Locale: "en", Code: "AMP"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.entry.CacheKey()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidEntry))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCatalogEntry_Validate tests that a download URL is required
func TestCatalogEntry_Validate(t *testing.T) {
	entry := CatalogEntry{Locale: "en", Code: "AMP", Year: 2015}
	assert.ErrorIs(t, entry.Validate(), ErrInvalidEntry)

	entry.DownloadURL = "https://example.com/amp.json"
	assert.NoError(t, entry.Validate())
}

// TestRecord_Stale tests version comparison is exact equality
func TestRecord_Stale(t *testing.T) {
	r := &Record{Version: "2024-09-01 00:00:00"}
	assert.False(t, r.Stale("2024-09-01 00:00:00"))
	assert.True(t, r.Stale("2024-09-01 00:00:01"))
	assert.True(t, r.Stale(""))
}
