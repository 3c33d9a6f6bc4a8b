package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// DefaultFetchConcurrency bounds parallel downloads when none is configured.
const DefaultFetchConcurrency = 4

// FetchEngine decides, per catalog entry, whether the cached body can be
// reused or must be downloaded, and keeps the Library current.
type FetchEngine struct {
	source      driven.DocumentSource
	store       driven.KVStore
	library     *Library
	concurrency int
	now         func() time.Time

	// onFirst runs once per pass with the first set that resolves.
	onFirst func(ctx context.Context, set *domain.DocumentSet)
}

// NewFetchEngine creates a new fetch engine.
func NewFetchEngine(
	source driven.DocumentSource,
	store driven.KVStore,
	library *Library,
	concurrency int,
) *FetchEngine {
	if concurrency < 1 {
		concurrency = DefaultFetchConcurrency
	}
	return &FetchEngine{
		source:      source,
		store:       store,
		library:     library,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// OnFirstResolved registers a hook run with the first set resolved in each pass.
func (e *FetchEngine) OnFirstResolved(fn func(ctx context.Context, set *domain.DocumentSet)) {
	e.onFirst = fn
}

// Resolve returns the document set for entry, using the cached body when
// it is fresh and downloading it otherwise.
//
// A stale or missing body is always downloaded, persisted and upserted into
// the Library. A fresh cached body is upserted only when replaceInMemory is
// true. When it is false the Library is left alone unless it has no
// version of the set at all.
func (e *FetchEngine) Resolve(
	ctx context.Context,
	entry domain.CatalogEntry,
	replaceInMemory bool,
) (*domain.DocumentSet, domain.Outcome, error) {
	// 1. Compute cache key
	key, err := entry.CacheKey()
	if err != nil {
		return nil, domain.OutcomeFailed, err
	}

	// 2. Look up cached record; a read failure is treated as a miss
	record, ok, err := e.store.Get(ctx, driven.CollectionDocuments, key)
	if err != nil {
		logger.Warn("read cache %s: %v", key, err)
		ok = false
	}

	// 3. Miss
	if !ok {
		set, err := e.download(ctx, entry, key)
		if err != nil {
			return nil, domain.OutcomeFailed, err
		}
		return set, domain.OutcomeFetched, nil
	}

	// 4. Stale, regardless of replaceInMemory
	if record.Stale(entry.LastUpdatedAt) {
		logger.Debug("%s is stale: cached %q, published %q", key, record.Version, entry.LastUpdatedAt)
		set, err := e.download(ctx, entry, key)
		if err != nil {
			return nil, domain.OutcomeFailed, err
		}
		return set, domain.OutcomeRefreshed, nil
	}

	set, err := decodeSet(record.Value, entry)
	if err != nil {
		// Corrupt record: drop it and rebuild from the publisher.
		logger.Warn("dropping cached %s: %v", key, err)
		if derr := e.store.Delete(ctx, driven.CollectionDocuments, key); derr != nil {
			logger.Warn("delete cached %s: %v", key, derr)
		}
		set, err := e.download(ctx, entry, key)
		if err != nil {
			return nil, domain.OutcomeFailed, err
		}
		return set, domain.OutcomeFetched, nil
	}

	// 5. Fresh, load into memory
	if replaceInMemory {
		e.library.Upsert(set)
		return set, domain.OutcomeLoaded, nil
	}

	// 6. Fresh, background revalidation
	if e.library.AddIfAbsent(set) {
		return set, domain.OutcomeLoaded, nil
	}
	return set, domain.OutcomeRevalidated, nil
}

// ResolveAll resolves every catalog entry concurrently. A failed entry is
// logged and recorded in the report without affecting the others. The
// report is returned once every entry has resolved or failed.
func (e *FetchEngine) ResolveAll(
	ctx context.Context,
	catalog *domain.Catalog,
	source domain.PassSource,
	replaceInMemory bool,
) domain.PassReport {
	report := domain.PassReport{
		RunID:           uuid.New().String(),
		Source:          source,
		ReplaceInMemory: replaceInMemory,
		Total:           len(catalog.Entries),
		Outcomes:        make(map[string]domain.Outcome, len(catalog.Entries)),
		StartedAt:       e.now(),
	}
	log := logger.With(report.RunID[:8])
	log.Info("%s pass over %d entries (replace=%t)", source, report.Total, replaceInMemory)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.concurrency)
	)

	for i, entry := range catalog.Entries {
		label := entryLabel(entry, i)

		wg.Add(1)
		go func() {
			defer wg.Done()

			var (
				set     *domain.DocumentSet
				outcome domain.Outcome
				err     error
			)
			select {
			case sem <- struct{}{}:
				set, outcome, err = e.Resolve(ctx, entry, replaceInMemory)
				<-sem
			case <-ctx.Done():
				outcome, err = domain.OutcomeFailed, ctx.Err()
			}

			mu.Lock()
			report.Outcomes[label] = outcome
			if err != nil {
				report.Failures = append(report.Failures, domain.EntryFailure{Key: label, Code: entry.Code, Err: err})
				mu.Unlock()
				log.Warn("%s: %v", label, err)
				return
			}
			report.Resolved = append(report.Resolved, set)
			first := report.First == nil
			if first {
				report.First = set
			}
			mu.Unlock()

			log.Debug("%s: %s", label, outcome)
			if first && e.onFirst != nil {
				e.onFirst(ctx, set)
			}
		}()
	}

	wg.Wait()
	report.Duration = e.now().Sub(report.StartedAt)
	log.Info("%s pass done: %d resolved, %d failed in %s",
		source, len(report.Resolved), len(report.Failures), report.Duration)
	return report
}

// download fetches, decodes, persists and upserts one set.
func (e *FetchEngine) download(ctx context.Context, entry domain.CatalogEntry, key string) (*domain.DocumentSet, error) {
	body, err := e.source.FetchDocument(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	set, err := decodeSet(body, entry)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	if set.LastUpdatedAt != entry.LastUpdatedAt {
		logger.Debug("%s body version %q differs from catalog %q", key, set.LastUpdatedAt, entry.LastUpdatedAt)
	}

	// The record is versioned by the catalog so the next pass compares
	// like with like.
	record := domain.Record{
		Value:    body,
		Version:  entry.LastUpdatedAt,
		StoredAt: e.now().UTC(),
	}
	if err := e.store.Put(ctx, driven.CollectionDocuments, key, record); err != nil {
		logger.Warn("persist %s: %v", key, err)
	}

	e.library.Upsert(set)
	return set, nil
}

// decodeSet parses a body and fills identity fields the body omits from
// its catalog entry.
func decodeSet(body []byte, entry domain.CatalogEntry) (*domain.DocumentSet, error) {
	var set domain.DocumentSet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", domain.ErrDataIntegrity, err)
	}
	if set.Locale == "" {
		set.Locale = entry.Locale
	}
	if set.Code == "" {
		set.Code = entry.Code
	}
	if set.Year == 0 {
		set.Year = entry.Year
	}
	if set.DisplayName == "" {
		set.DisplayName = entry.Name
	}
	if set.Language == "" {
		set.Language = entry.Language
	}
	if set.LastUpdatedAt == "" {
		set.LastUpdatedAt = entry.LastUpdatedAt
	}
	return &set, nil
}

// entryLabel names an entry in reports, falling back to its position
// when it has no usable key.
func entryLabel(entry domain.CatalogEntry, index int) string {
	if key, err := entry.CacheKey(); err == nil {
		return key
	}
	if entry.Code != "" {
		return entry.Code
	}
	return "#" + strconv.Itoa(index)
}
