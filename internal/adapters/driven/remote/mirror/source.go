// Package mirror serves the catalog and document bodies from a local
// directory, for offline bundles and self-hosted copies of the publisher.
//
// The directory holds catalog.json and the bodies it references. Each
// entry's download_url is reduced to its final path element and looked
// up in the directory, so a mirror can be made by downloading the
// published files as-is.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
)

// CatalogFile is the catalog's file name within the mirror directory.
const CatalogFile = "catalog.json"

// Ensure Source implements the source ports at compile time.
var _ driven.Source = (*Source)(nil)

// Source reads a mirror directory.
type Source struct {
	dir string
}

// NewSource returns a Source for dir. The directory must exist.
func NewSource(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("mirror dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: mirror %s is not a directory", domain.ErrInvalidInput, dir)
	}
	return &Source{dir: dir}, nil
}

// Dir returns the mirror directory.
func (s *Source) Dir() string {
	return s.dir
}

// FetchCatalog reads and decodes catalog.json.
func (s *Source) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	data, err := s.read(ctx, CatalogFile)
	if err != nil {
		return nil, err
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrNetwork, CatalogFile, err)
	}
	return &catalog, nil
}

// FetchDocument reads the body named by entry's download_url.
func (s *Source) FetchDocument(ctx context.Context, entry domain.CatalogEntry) ([]byte, error) {
	name, err := fileName(entry.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidEntry, entry.Code, err)
	}
	return s.read(ctx, name)
}

func (s *Source) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: mirror read %s: %v", domain.ErrNetwork, name, err)
	}
	return data, nil
}

// fileName extracts the last path element of a download URL.
func fileName(downloadURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(downloadURL))
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("download_url %q has no file name", downloadURL)
	}
	return name, nil
}
