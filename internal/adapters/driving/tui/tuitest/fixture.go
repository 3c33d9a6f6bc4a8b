// Package tuitest provides in-memory driving ports for exercising the TUI
// without storage or network.
package tuitest

import (
	"context"
	"fmt"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// Fixture bundles a reader, selection and sync service over the same sets.
type Fixture struct {
	Reader    *Reader
	Selection *Selection
	Sync      *Sync
}

// New returns a fixture whose first set is primary.
func New(sets ...*domain.DocumentSet) *Fixture {
	sel := &Selection{Tab: domain.TabChoose, Current: domain.DefaultPosition()}
	r := &Reader{Sets: sets, selection: sel}
	sel.reader = r
	return &Fixture{
		Reader:    r,
		Selection: sel,
		Sync:      &Sync{reader: r},
	}
}

// Set builds a two-collection document set whose texts are prefixed by code.
func Set(code string) *domain.DocumentSet {
	return &domain.DocumentSet{
		Language:    "English",
		Locale:      "en",
		Code:        code,
		DisplayName: code + " Edition",
		Collections: []domain.Collection{
			{Name: "Genesis", Sections: []domain.Section{
				{code + " 1:1", code + " 1:2", code + " 1:3"},
				{code + " 2:1"},
			}},
			{Name: "Exodus", Sections: []domain.Section{
				{code + " E1:1", code + " E1:2"},
			}},
		},
	}
}

// Reader implements driving.ReaderService.
type Reader struct {
	Sets      []*domain.DocumentSet
	selection *Selection
}

var _ driving.ReaderService = (*Reader)(nil)

func (r *Reader) find(code string) *domain.DocumentSet {
	for _, d := range r.Sets {
		if d.MatchesCode(code) {
			return d
		}
	}
	return nil
}

// Documents returns every set.
func (r *Reader) Documents() []*domain.DocumentSet {
	return r.Sets
}

// Primary returns the selected set or the first one.
func (r *Reader) Primary() (*domain.DocumentSet, bool) {
	if len(r.Sets) == 0 {
		return nil, false
	}
	if d := r.find(r.selection.Primary); d != nil {
		return d, true
	}
	return r.Sets[0], true
}

// Secondaries returns the selected secondary sets.
func (r *Reader) Secondaries() []*domain.DocumentSet {
	var out []*domain.DocumentSet
	for _, c := range r.selection.Secondary {
		if d := r.find(c); d != nil {
			out = append(out, d)
		}
	}
	return out
}

// GetItemText returns the primary text at the clamped position.
func (r *Reader) GetItemText(pos domain.Position) (string, bool) {
	p, ok := r.Primary()
	if !ok {
		return "", false
	}
	clamped, ok := p.Clamp(pos)
	if !ok {
		return "", false
	}
	return p.Item(clamped)
}

// GetSecondaryItemText returns a secondary text when present and non-empty.
func (r *Reader) GetSecondaryItemText(code string, pos domain.Position) (string, bool) {
	d := r.find(code)
	if d == nil {
		return "", false
	}
	t, ok := d.Item(pos)
	return t, ok && t != ""
}

// GetCollectionName returns the primary collection name.
func (r *Reader) GetCollectionName(collection int) (string, bool) {
	p, ok := r.Primary()
	if !ok {
		return "", false
	}
	return p.CollectionName(collection)
}

// ReadSection builds the clamped section with secondary texts.
func (r *Reader) ReadSection(collection, section int) (*domain.SectionView, error) {
	p, ok := r.Primary()
	if !ok {
		return nil, domain.ErrNotReady
	}
	pos, ok := p.Clamp(domain.Position{Collection: collection, Section: section, Item: 1})
	if !ok {
		return nil, fmt.Errorf("%w: %d:%d", domain.ErrNotFound, collection, section)
	}
	items, _ := p.Section(pos.Collection, pos.Section)
	name, _ := p.CollectionName(pos.Collection)
	c, _ := p.Collection(pos.Collection)

	view := &domain.SectionView{
		Position:       pos,
		CollectionName: name,
		SectionCount:   len(c.Sections),
		PrimaryCode:    p.Code,
	}
	for i, text := range items {
		row := domain.SectionRow{Item: i + 1, Text: text}
		at := domain.Position{Collection: pos.Collection, Section: pos.Section, Item: i + 1}
		for _, s := range r.Secondaries() {
			if t, ok := s.Item(at); ok && t != "" {
				row.Secondary = append(row.Secondary, domain.SecondaryText{Code: s.Code, Text: t})
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// Selection implements driving.SelectionService in memory.
type Selection struct {
	Primary   string
	Secondary []string
	History   []domain.HistoryEntry
	Current   domain.Position
	Tab       domain.Tab
	Welcomed  time.Time

	// SaveErr is returned by every setter that can fail.
	SaveErr error

	reader *Reader
}

var _ driving.SelectionService = (*Selection)(nil)

// PrimaryCode returns the primary code or the first set's code.
func (s *Selection) PrimaryCode(_ context.Context) string {
	if p, ok := s.reader.Primary(); ok {
		return p.Code
	}
	return s.Primary
}

// SetPrimaryCode selects a loaded set.
func (s *Selection) SetPrimaryCode(_ context.Context, code string) bool {
	d := s.reader.find(code)
	if d == nil {
		return false
	}
	s.Primary = d.Code
	var kept []string
	for _, c := range s.Secondary {
		if !d.MatchesCode(c) {
			kept = append(kept, c)
		}
	}
	s.Secondary = kept
	return true
}

// SecondaryCodes returns the secondary codes.
func (s *Selection) SecondaryCodes(_ context.Context) []string {
	return s.Secondary
}

// SetSecondaryCodes keeps loaded codes other than the primary. It fails
// only when SaveErr is set.
func (s *Selection) SetSecondaryCodes(ctx context.Context, codes []string) ([]string, bool) {
	if s.SaveErr != nil {
		return nil, false
	}
	primary := s.PrimaryCode(ctx)
	kept := []string{}
	seen := map[string]bool{}
	for _, c := range codes {
		d := s.reader.find(c)
		if d == nil || d.MatchesCode(primary) || seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		kept = append(kept, c)
	}
	s.Secondary = kept
	return kept, true
}

// RecordPosition pushes a valid position onto the history.
func (s *Selection) RecordPosition(_ context.Context, pos domain.Position) {
	if !pos.Valid() {
		return
	}
	s.History = domain.PushHistory(s.History, pos, time.Now())
}

// RecordRawPosition parses and records typed coordinates.
func (s *Selection) RecordRawPosition(ctx context.Context, collection, section, item string) {
	pos, err := domain.ParsePosition(collection, section, item)
	if err != nil {
		return
	}
	s.RecordPosition(ctx, pos)
}

// PositionHistory returns the history, most recent first.
func (s *Selection) PositionHistory(_ context.Context) []domain.HistoryEntry {
	return s.History
}

// CurrentPosition returns the stored position.
func (s *Selection) CurrentPosition(_ context.Context) domain.Position {
	return s.Current
}

// SetCurrentPosition stores the position.
func (s *Selection) SetCurrentPosition(_ context.Context, pos domain.Position) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Current = pos
	return nil
}

// SelectedTab returns the stored tab.
func (s *Selection) SelectedTab(_ context.Context) domain.Tab {
	return s.Tab
}

// SetSelectedTab stores the tab.
func (s *Selection) SetSelectedTab(_ context.Context, tab domain.Tab) error {
	if !tab.IsValid() {
		return fmt.Errorf("%w: tab %q", domain.ErrInvalidInput, tab)
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Tab = tab
	return nil
}

// AcknowledgeWelcome records the dismissal time.
func (s *Selection) AcknowledgeWelcome(_ context.Context) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Welcomed = time.Now()
	return nil
}

// WelcomeAcknowledgedAt returns the dismissal time.
func (s *Selection) WelcomeAcknowledgedAt(_ context.Context) (time.Time, bool) {
	return s.Welcomed, !s.Welcomed.IsZero()
}

// Sync implements driving.SyncService with overridable passes.
type Sync struct {
	LoadCachedFunc func(ctx context.Context) (*domain.PassReport, error)
	SyncFunc       func(ctx context.Context) (*domain.PassReport, error)

	// Syncs counts calls to Sync.
	Syncs int

	reader *Reader
}

var _ driving.SyncService = (*Sync)(nil)

// Initialize runs the cache pass followed by a network pass.
func (s *Sync) Initialize(ctx context.Context, onReady func(domain.PassReport)) error {
	for _, pass := range []func(context.Context) (*domain.PassReport, error){s.LoadCached, s.Sync} {
		report, err := pass(ctx)
		if err != nil {
			return err
		}
		if report != nil && onReady != nil {
			onReady(*report)
		}
	}
	return nil
}

// LoadCached reports every set as loaded unless overridden.
func (s *Sync) LoadCached(ctx context.Context) (*domain.PassReport, error) {
	if s.LoadCachedFunc != nil {
		return s.LoadCachedFunc(ctx)
	}
	return s.report(domain.PassCache, domain.OutcomeLoaded), nil
}

// Sync reports every set as revalidated unless overridden.
func (s *Sync) Sync(ctx context.Context) (*domain.PassReport, error) {
	s.Syncs++
	if s.SyncFunc != nil {
		return s.SyncFunc(ctx)
	}
	return s.report(domain.PassNetwork, domain.OutcomeRevalidated), nil
}

func (s *Sync) report(source domain.PassSource, o domain.Outcome) *domain.PassReport {
	r := &domain.PassReport{
		RunID:    "test",
		Source:   source,
		Total:    len(s.reader.Sets),
		Resolved: s.reader.Sets,
		Outcomes: map[string]domain.Outcome{},
	}
	for _, d := range s.reader.Sets {
		r.Outcomes[d.Code] = o
	}
	return r
}

// Status summarises the fixture.
func (s *Sync) Status() domain.Status {
	st := domain.Status{Ready: len(s.reader.Sets) > 0, Documents: len(s.reader.Sets)}
	if p, ok := s.reader.Primary(); ok {
		st.PrimaryCode = p.Code
	}
	st.SecondaryCodes = s.reader.selection.Secondary
	return st
}

// Reset forgets every set and the selection.
func (s *Sync) Reset(_ context.Context) error {
	s.reader.Sets = nil
	*s.reader.selection = Selection{reader: s.reader}
	return nil
}
