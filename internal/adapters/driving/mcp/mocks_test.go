package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

func testSet(code, prefix string) *domain.DocumentSet {
	return &domain.DocumentSet{
		Language:      "English",
		Locale:        "en",
		Code:          code,
		DisplayName:   code + " Bible",
		Year:          2020,
		LastUpdatedAt: "2024-01-01 00:00:00",
		Collections: []domain.Collection{
			{Name: "Genesis", Sections: []domain.Section{
				{prefix + " In the beginning", prefix + " And the earth"},
				{prefix + " Thus the heavens"},
			}},
			{Name: "Exodus", Sections: []domain.Section{
				{prefix + " Now these are the names", ""},
			}},
		},
	}
}

// mockReader is a mock implementation of driving.ReaderService backed by
// real document sets.
type mockReader struct {
	sets        []*domain.DocumentSet
	secondaries []*domain.DocumentSet
	sectionErr  error
}

func (m *mockReader) Documents() []*domain.DocumentSet {
	return m.sets
}

func (m *mockReader) Primary() (*domain.DocumentSet, bool) {
	if len(m.sets) == 0 {
		return nil, false
	}
	return m.sets[0], true
}

func (m *mockReader) Secondaries() []*domain.DocumentSet {
	return m.secondaries
}

func (m *mockReader) GetItemText(pos domain.Position) (string, bool) {
	primary, ok := m.Primary()
	if !ok {
		return "", false
	}
	pos, ok = primary.Clamp(pos)
	if !ok {
		return "", false
	}
	return primary.Item(pos)
}

func (m *mockReader) GetSecondaryItemText(code string, pos domain.Position) (string, bool) {
	for _, s := range m.secondaries {
		if s.MatchesCode(code) {
			text, ok := s.Item(pos)
			return text, ok && text != ""
		}
	}
	return "", false
}

func (m *mockReader) GetCollectionName(collection int) (string, bool) {
	primary, ok := m.Primary()
	if !ok {
		return "", false
	}
	return primary.CollectionName(collection)
}

func (m *mockReader) ReadSection(collection, section int) (*domain.SectionView, error) {
	if m.sectionErr != nil {
		return nil, m.sectionErr
	}
	primary, ok := m.Primary()
	if !ok {
		return nil, domain.ErrNotReady
	}
	pos, _ := primary.Clamp(domain.Position{Collection: collection, Section: section, Item: 1})
	items, _ := primary.Section(pos.Collection, pos.Section)
	c, _ := primary.Collection(pos.Collection)

	view := &domain.SectionView{
		Position:       pos,
		CollectionName: c.Name,
		SectionCount:   len(c.Sections),
		PrimaryCode:    primary.Code,
	}
	for i, text := range items {
		row := domain.SectionRow{Item: i + 1, Text: text}
		at := domain.Position{Collection: pos.Collection, Section: pos.Section, Item: i + 1}
		for _, s := range m.secondaries {
			if t, ok := m.GetSecondaryItemText(s.Code, at); ok {
				row.Secondary = append(row.Secondary, domain.SecondaryText{Code: s.Code, Text: t})
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// mockSelection is an in-memory implementation of driving.SelectionService.
type mockSelection struct {
	known     []string
	primary   string
	secondary []string
	history   []domain.HistoryEntry
	current   domain.Position
	tab       domain.Tab
	welcomed  time.Time
	saveFails bool
}

func (m *mockSelection) PrimaryCode(_ context.Context) string {
	return m.primary
}

func (m *mockSelection) SetPrimaryCode(_ context.Context, code string) bool {
	for _, k := range m.known {
		if strings.EqualFold(k, code) {
			m.primary = k
			return true
		}
	}
	return false
}

func (m *mockSelection) SecondaryCodes(_ context.Context) []string {
	return m.secondary
}

func (m *mockSelection) SetSecondaryCodes(_ context.Context, codes []string) ([]string, bool) {
	if m.saveFails {
		return nil, false
	}
	var kept []string
	for _, c := range codes {
		if strings.EqualFold(c, m.primary) {
			continue
		}
		for _, k := range m.known {
			if strings.EqualFold(k, c) {
				kept = append(kept, c)
				break
			}
		}
	}
	m.secondary = kept
	return kept, true
}

func (m *mockSelection) RecordPosition(_ context.Context, pos domain.Position) {
	if pos.Valid() {
		m.history = domain.PushHistory(m.history, pos, time.Now())
	}
}

func (m *mockSelection) RecordRawPosition(ctx context.Context, collection, section, item string) {
	if pos, err := domain.ParsePosition(collection, section, item); err == nil {
		m.RecordPosition(ctx, pos)
	}
}

func (m *mockSelection) PositionHistory(_ context.Context) []domain.HistoryEntry {
	return m.history
}

func (m *mockSelection) CurrentPosition(_ context.Context) domain.Position {
	if !m.current.Valid() {
		return domain.DefaultPosition()
	}
	return m.current
}

func (m *mockSelection) SetCurrentPosition(_ context.Context, pos domain.Position) error {
	m.current = pos
	return nil
}

func (m *mockSelection) SelectedTab(_ context.Context) domain.Tab {
	if m.tab == "" {
		return domain.TabChoose
	}
	return m.tab
}

func (m *mockSelection) SetSelectedTab(_ context.Context, tab domain.Tab) error {
	m.tab = tab
	return nil
}

func (m *mockSelection) AcknowledgeWelcome(_ context.Context) error {
	m.welcomed = time.Now()
	return nil
}

func (m *mockSelection) WelcomeAcknowledgedAt(_ context.Context) (time.Time, bool) {
	return m.welcomed, !m.welcomed.IsZero()
}

// mockSync is a mock implementation of driving.SyncService.
type mockSync struct {
	status domain.Status
}

func (m *mockSync) Initialize(_ context.Context, _ func(domain.PassReport)) error {
	return nil
}

func (m *mockSync) LoadCached(_ context.Context) (*domain.PassReport, error) {
	return nil, nil
}

func (m *mockSync) Sync(_ context.Context) (*domain.PassReport, error) {
	return &domain.PassReport{}, nil
}

func (m *mockSync) Status() domain.Status {
	return m.status
}

func (m *mockSync) Reset(_ context.Context) error {
	return nil
}

// newTestPorts returns ports with AMP as primary and BIS as secondary.
func newTestPorts() (*Ports, *mockReader, *mockSelection) {
	amp, bis := testSet("AMP", "amp"), testSet("BIS", "bis")
	reader := &mockReader{
		sets:        []*domain.DocumentSet{amp, bis},
		secondaries: []*domain.DocumentSet{bis},
	}
	selection := &mockSelection{
		known:     []string{"AMP", "BIS"},
		primary:   "AMP",
		secondary: []string{"BIS"},
	}
	return &Ports{Reader: reader, Selection: selection}, reader, selection
}
