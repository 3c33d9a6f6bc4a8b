package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/HMaxF/jesoes.com/internal/adapters/driven/storage/memory"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
)

// fakeSource serves a catalog and document bodies from memory and counts
// document downloads per code.
type fakeSource struct {
	mu         sync.Mutex
	catalog    *domain.Catalog
	catalogErr error
	bodies     map[string][]byte
	failing    map[string]bool
	downloads  map[string]int
}

func newFakeSource(entries ...domain.CatalogEntry) *fakeSource {
	src := &fakeSource{
		catalog:   &domain.Catalog{Name: "test", Entries: entries},
		bodies:    make(map[string][]byte),
		failing:   make(map[string]bool),
		downloads: make(map[string]int),
	}
	for _, e := range entries {
		src.bodies[strings.ToLower(e.Code)] = documentBody(e, "In the beginning")
	}
	return src
}

func (f *fakeSource) FetchCatalog(_ context.Context) (*domain.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	clone := *f.catalog
	clone.Entries = append([]domain.CatalogEntry(nil), f.catalog.Entries...)
	return &clone, nil
}

func (f *fakeSource) FetchDocument(_ context.Context, entry domain.CatalogEntry) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := strings.ToLower(entry.Code)
	f.downloads[code]++
	if f.failing[code] {
		return nil, fmt.Errorf("%w: %s unreachable", domain.ErrNetwork, entry.Code)
	}
	body, ok := f.bodies[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s not published", domain.ErrNetwork, entry.Code)
	}
	return body, nil
}

func (f *fakeSource) setEntries(entries ...domain.CatalogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog.Entries = entries
	for _, e := range entries {
		f.bodies[strings.ToLower(e.Code)] = documentBody(e, "In the beginning")
	}
}

func (f *fakeSource) fail(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[strings.ToLower(code)] = true
}

func (f *fakeSource) failCatalog(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogErr = err
}

func (f *fakeSource) downloadCount(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads[strings.ToLower(code)]
}

var _ driven.Source = (*fakeSource)(nil)

func entry(code string, year int, updated string) domain.CatalogEntry {
	return domain.CatalogEntry{
		Locale:        "en",
		Code:          code,
		Year:          year,
		DownloadURL:   "https://example.com/" + strings.ToLower(code) + ".json",
		LastUpdatedAt: updated,
		Name:          code + " Bible",
		Language:      "English",
	}
}

// documentBody renders a two-collection set whose first verse carries
// prefix so tests can tell versions apart.
func documentBody(e domain.CatalogEntry, prefix string) []byte {
	set := domain.DocumentSet{
		Language:      e.Language,
		Locale:        e.Locale,
		Code:          e.Code,
		DisplayName:   e.Name,
		Year:          e.Year,
		LastUpdatedAt: e.LastUpdatedAt,
		Collections: []domain.Collection{
			{Name: "Genesis", Sections: []domain.Section{
				{prefix + " " + e.Code, "And the earth", "And God said"},
				{"Thus the heavens"},
			}},
			{Name: "Exodus", Sections: []domain.Section{
				{"Now these are the names", ""},
			}},
		},
	}
	body, err := json.Marshal(set)
	if err != nil {
		panic(err)
	}
	return body
}

func newTestKV() *memory.KVStore {
	return memory.NewKVStore(driven.DefaultSchema(domain.DefaultSchemaVersion))
}
