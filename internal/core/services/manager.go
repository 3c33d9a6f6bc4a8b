package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// Ensure Manager implements the driving interfaces.
var (
	_ driving.SyncService      = (*Manager)(nil)
	_ driving.ReaderService    = (*Manager)(nil)
	_ driving.SelectionService = (*Manager)(nil)
)

// ManagerOptions tunes a Manager.
type ManagerOptions struct {
	// Concurrency bounds parallel document downloads.
	Concurrency int
}

// Manager coordinates the cache, the catalog and the reader's selections.
// It is constructed once at start-up and shared by every driving adapter.
type Manager struct {
	store     driven.KVStore
	catalogs  *CatalogSynchronizer
	engine    *FetchEngine
	library   *Library
	selection *SelectionStore

	// passMu serialises Initialize, Sync and Reset.
	passMu sync.Mutex

	mu       sync.RWMutex
	ready    bool
	lastPass *domain.PassReport
}

// NewManager wires a Manager from its driven ports.
func NewManager(
	store driven.KVStore,
	state driven.StateStore,
	catalogSource driven.CatalogSource,
	documentSource driven.DocumentSource,
	opts ManagerOptions,
) *Manager {
	library := NewLibrary()
	selection := NewSelectionStore(state, library)

	engine := NewFetchEngine(documentSource, store, library, opts.Concurrency)
	engine.OnFirstResolved(selection.DefaultPrimary)

	return &Manager{
		store:     store,
		catalogs:  NewCatalogSynchronizer(catalogSource, store),
		engine:    engine,
		library:   library,
		selection: selection,
	}
}

// Initialize opens storage and loads every document set the catalog
// lists. A cached catalog, when present, is resolved first so readers
// get something before the network answers. The catalog is then always
// downloaded again and resolved in the background.
//
// onReady, if non-nil, is called once per completed pass.
func (m *Manager) Initialize(ctx context.Context, onReady func(domain.PassReport)) error {
	if !m.passMu.TryLock() {
		return domain.ErrSyncInProgress
	}
	defer m.passMu.Unlock()

	// 1. Open storage; on failure the store has already been reset
	if err := m.open(ctx); err != nil {
		return err
	}

	// 2. Resolve the cached catalog, if any
	haveCache := m.resolveCached(ctx, onReady) != nil

	// 3. Always download the catalog again
	fresh, err := m.catalogs.Fetch(ctx)
	if err != nil {
		if haveCache {
			logger.Warn("using cached catalog: %v", err)
			return nil
		}
		return fmt.Errorf("no catalog available: %w", err)
	}

	// 4. Revalidate in the background when memory is already populated
	report := m.engine.ResolveAll(ctx, fresh, domain.PassNetwork, !haveCache)
	m.finishPass(report, onReady)
	return nil
}

// LoadCached opens storage and resolves only the cached catalog, with no
// network access. The report is nil when nothing has been cached yet.
func (m *Manager) LoadCached(ctx context.Context) (*domain.PassReport, error) {
	if !m.passMu.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer m.passMu.Unlock()

	if err := m.open(ctx); err != nil {
		return nil, err
	}
	return m.resolveCached(ctx, nil), nil
}

// Sync downloads the catalog and revalidates every cached set.
func (m *Manager) Sync(ctx context.Context) (*domain.PassReport, error) {
	if !m.passMu.TryLock() {
		return nil, domain.ErrSyncInProgress
	}
	defer m.passMu.Unlock()

	if err := m.open(ctx); err != nil {
		return nil, err
	}

	catalog, err := m.catalogs.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	report := m.engine.ResolveAll(ctx, catalog, domain.PassNetwork, false)
	return m.finishPass(report, nil), nil
}

// Status summarises what is loaded.
func (m *Manager) Status() domain.Status {
	ctx := context.Background()

	m.mu.RLock()
	ready, last := m.ready, m.lastPass
	m.mu.RUnlock()

	return domain.Status{
		Ready:          ready,
		Documents:      m.library.Len(),
		PrimaryCode:    m.selection.PrimaryCode(ctx),
		SecondaryCodes: m.selection.SecondaryCodes(ctx),
		LastPass:       last,
	}
}

// Reset destroys the cache and the persisted selections and empties memory.
func (m *Manager) Reset(ctx context.Context) error {
	if !m.passMu.TryLock() {
		return domain.ErrSyncInProgress
	}
	defer m.passMu.Unlock()

	m.library.Clear()
	m.setReady(false, nil)

	var errs []error
	if err := m.store.Reset(ctx); err != nil {
		errs = append(errs, fmt.Errorf("reset store: %w", err))
	}
	if err := m.selection.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear selections: %w", err))
	}
	return errors.Join(errs...)
}

// ClearMemory drops every loaded set without touching storage. It is the
// storage error callback's way of discarding a session cache that no
// longer matches the store.
func (m *Manager) ClearMemory() {
	m.library.Clear()
	m.setReady(false, nil)
}

// Documents returns the loaded sets in load order.
func (m *Manager) Documents() []*domain.DocumentSet {
	return m.library.All()
}

// Primary returns the primary set. A persisted primary that is not
// loaded falls back to the first loaded set.
func (m *Manager) Primary() (*domain.DocumentSet, bool) {
	if set, ok := m.library.Find(m.selection.PrimaryCode(context.Background())); ok {
		return set, true
	}
	return m.library.First()
}

// Secondaries returns the loaded secondary sets in selection order.
func (m *Manager) Secondaries() []*domain.DocumentSet {
	primary, hasPrimary := m.Primary()

	var sets []*domain.DocumentSet
	for _, code := range m.selection.SecondaryCodes(context.Background()) {
		if hasPrimary && primary.MatchesCode(code) {
			continue
		}
		if set, ok := m.library.Find(code); ok {
			sets = append(sets, set)
		}
	}
	return sets
}

// GetItemText returns the primary set's text at pos after clamping.
func (m *Manager) GetItemText(pos domain.Position) (string, bool) {
	primary, ok := m.Primary()
	if !ok {
		return "", false
	}
	clamped, ok := primary.Clamp(pos)
	if !ok {
		return "", false
	}
	return primary.Item(clamped)
}

// GetSecondaryItemText returns a secondary set's text at pos. It is absent
// when the set is not loaded, lacks the coordinate, or the item is empty.
func (m *Manager) GetSecondaryItemText(code string, pos domain.Position) (string, bool) {
	set, ok := m.library.Find(code)
	if !ok {
		return "", false
	}
	text, ok := set.Item(pos)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// GetCollectionName returns the primary set's collection name after
// clamping the index.
func (m *Manager) GetCollectionName(collection int) (string, bool) {
	primary, ok := m.Primary()
	if !ok {
		return "", false
	}
	return primary.CollectionName(collection)
}

// ReadSection returns the clamped section of the primary set with the
// secondary texts for each item.
func (m *Manager) ReadSection(collection, section int) (*domain.SectionView, error) {
	primary, ok := m.Primary()
	if !ok {
		return nil, domain.ErrNotReady
	}

	pos, ok := primary.Clamp(domain.Position{Collection: collection, Section: section, Item: 1})
	if !ok {
		return nil, fmt.Errorf("%w: %s has no section at %d:%d", domain.ErrNotFound, primary.Code, collection, section)
	}
	items, _ := primary.Section(pos.Collection, pos.Section)
	name, _ := primary.CollectionName(pos.Collection)
	c, _ := primary.Collection(pos.Collection)

	secondaries := m.Secondaries()
	view := &domain.SectionView{
		Position:       pos,
		CollectionName: name,
		SectionCount:   len(c.Sections),
		PrimaryCode:    primary.Code,
		Rows:           make([]domain.SectionRow, 0, len(items)),
	}
	for i, text := range items {
		row := domain.SectionRow{Item: i + 1, Text: text}
		at := domain.Position{Collection: pos.Collection, Section: pos.Section, Item: i + 1}
		for _, s := range secondaries {
			if t, ok := s.Item(at); ok && t != "" {
				row.Secondary = append(row.Secondary, domain.SecondaryText{Code: s.Code, Text: t})
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// PrimaryCode returns the primary code.
func (m *Manager) PrimaryCode(ctx context.Context) string {
	return m.selection.PrimaryCode(ctx)
}

// SetPrimaryCode selects the primary set.
func (m *Manager) SetPrimaryCode(ctx context.Context, code string) bool {
	return m.selection.SetPrimaryCode(ctx, code)
}

// SecondaryCodes returns the persisted secondary codes.
func (m *Manager) SecondaryCodes(ctx context.Context) []string {
	return m.selection.SecondaryCodes(ctx)
}

// SetSecondaryCodes filters and persists the secondary codes.
func (m *Manager) SetSecondaryCodes(ctx context.Context, codes []string) ([]string, bool) {
	return m.selection.SetSecondaryCodes(ctx, codes)
}

// RecordPosition adds pos to the history.
func (m *Manager) RecordPosition(ctx context.Context, pos domain.Position) {
	m.selection.RecordPosition(ctx, pos)
}

// RecordRawPosition parses and records typed coordinates.
func (m *Manager) RecordRawPosition(ctx context.Context, collection, section, item string) {
	m.selection.RecordRawPosition(ctx, collection, section, item)
}

// PositionHistory returns the history, most recent first.
func (m *Manager) PositionHistory(ctx context.Context) []domain.HistoryEntry {
	return m.selection.PositionHistory(ctx)
}

// CurrentPosition returns the last position read.
func (m *Manager) CurrentPosition(ctx context.Context) domain.Position {
	return m.selection.CurrentPosition(ctx)
}

// SetCurrentPosition stores the position being read.
func (m *Manager) SetCurrentPosition(ctx context.Context, pos domain.Position) error {
	return m.selection.SetCurrentPosition(ctx, pos)
}

// SelectedTab returns the persisted tab.
func (m *Manager) SelectedTab(ctx context.Context) domain.Tab {
	return m.selection.SelectedTab(ctx)
}

// SetSelectedTab persists the tab.
func (m *Manager) SetSelectedTab(ctx context.Context, tab domain.Tab) error {
	return m.selection.SetSelectedTab(ctx, tab)
}

// AcknowledgeWelcome records that the welcome notice was dismissed.
func (m *Manager) AcknowledgeWelcome(ctx context.Context) error {
	return m.selection.AcknowledgeWelcome(ctx)
}

// WelcomeAcknowledgedAt returns when the welcome notice was dismissed.
func (m *Manager) WelcomeAcknowledgedAt(ctx context.Context) (time.Time, bool) {
	return m.selection.WelcomeAcknowledgedAt(ctx)
}

func (m *Manager) open(ctx context.Context) error {
	if err := m.store.Open(ctx); err != nil {
		m.ClearMemory()
		return fmt.Errorf("open store: %w", err)
	}
	return nil
}

// resolveCached resolves the cached catalog into memory. It returns nil
// when there is no usable cached catalog.
func (m *Manager) resolveCached(ctx context.Context, onReady func(domain.PassReport)) *domain.PassReport {
	cached, ok, err := m.catalogs.Cached(ctx)
	if err != nil {
		logger.Warn("cached catalog unusable: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	report := m.engine.ResolveAll(ctx, cached, domain.PassCache, true)
	return m.finishPass(report, onReady)
}

// finishPass records a completed pass and notifies the caller.
func (m *Manager) finishPass(report domain.PassReport, onReady func(domain.PassReport)) *domain.PassReport {
	if err := report.Err(); err != nil {
		logger.Warn("%s pass: %d of %d entries failed", report.Source, len(report.Failures), report.Total)
	}
	m.setReady(m.library.Len() > 0, &report)

	if onReady != nil {
		onReady(report)
	}
	return &report
}

func (m *Manager) setReady(ready bool, report *domain.PassReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
	m.lastPass = report
}
