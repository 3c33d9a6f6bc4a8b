package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

// SelectionStore reads and writes the reader's persisted selections.
// Every value is stored as JSON under its own key. Reads never fail:
// unreadable values fall back to their defaults and are logged.
type SelectionStore struct {
	mu      sync.Mutex
	state   driven.StateStore
	library *Library
	now     func() time.Time
}

// NewSelectionStore creates a selection store over state. Codes are
// validated against library.
func NewSelectionStore(state driven.StateStore, library *Library) *SelectionStore {
	return &SelectionStore{
		state:   state,
		library: library,
		now:     time.Now,
	}
}

// PrimaryCode returns the persisted primary code. When none is set it
// falls back to the first loaded set's code, or "" when nothing is loaded.
func (s *SelectionStore) PrimaryCode(ctx context.Context) string {
	var code string
	if s.read(ctx, driven.StatePrimaryCode, &code) && code != "" {
		return code
	}
	if first, ok := s.library.First(); ok {
		return first.Code
	}
	return ""
}

// SetPrimaryCode selects code as the primary set and removes it from the
// secondary list. Returns false, changing nothing, when code matches no
// loaded set.
func (s *SelectionStore) SetPrimaryCode(ctx context.Context, code string) bool {
	set, ok := s.library.Find(code)
	if !ok {
		logger.Warn("set primary: %v: %q", domain.ErrInvalidSelection, code)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Drop the new primary from the secondaries first, so a failure
	//    between the two writes never leaves it in both places
	secondaries := s.storedSecondaries(ctx)
	kept := make([]string, 0, len(secondaries))
	for _, c := range secondaries {
		if !strings.EqualFold(c, set.Code) {
			kept = append(kept, c)
		}
	}
	if len(kept) != len(secondaries) {
		if !s.write(ctx, driven.StateSecondaryCodes, kept) {
			return false
		}
	}

	// 2. Persist the canonical spelling
	return s.write(ctx, driven.StatePrimaryCode, set.Code)
}

// SecondaryCodes returns the persisted secondary codes in selection order.
func (s *SelectionStore) SecondaryCodes(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storedSecondaries(ctx)
}

// SetSecondaryCodes keeps the codes that match a loaded set, drops the
// primary code and duplicates, and persists the result. Matching ignores
// case and the caller's spelling is kept. An empty result is valid.
// The boolean is false only when the result could not be persisted.
func (s *SelectionStore) SetSecondaryCodes(ctx context.Context, codes []string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Read under the lock so a concurrent SetPrimaryCode cannot slip in.
	primary := s.PrimaryCode(ctx)

	filtered := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		folded := strings.ToLower(c)
		if seen[folded] || strings.EqualFold(c, primary) {
			continue
		}
		if _, ok := s.library.Find(c); !ok {
			logger.Debug("set secondaries: dropping unknown code %q", c)
			continue
		}
		seen[folded] = true
		filtered = append(filtered, c)
	}

	if !s.write(ctx, driven.StateSecondaryCodes, filtered) {
		return nil, false
	}
	return filtered, true
}

// RecordPosition prepends pos to the history, removing any earlier visit
// to the same coordinates. Invalid positions are logged and ignored.
func (s *SelectionStore) RecordPosition(ctx context.Context, pos domain.Position) {
	if !pos.Valid() {
		logger.Warn("record position: %v: %s", domain.ErrInvalidInput, pos)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := domain.PushHistory(s.storedHistory(ctx), pos, s.now().UTC())
	s.write(ctx, driven.StateReadHistory, history)
}

// RecordRawPosition parses raw coordinates and records them. Non-numeric
// or sub-1 coordinates are logged and ignored.
func (s *SelectionStore) RecordRawPosition(ctx context.Context, collection, section, item string) {
	pos, err := domain.ParsePosition(collection, section, item)
	if err != nil {
		logger.Warn("record position: %v", err)
		return
	}
	s.RecordPosition(ctx, pos)
}

// PositionHistory returns the visited positions, most recent first.
// Malformed stored entries are dropped and the cleaned list is persisted.
func (s *SelectionStore) PositionHistory(ctx context.Context) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storedHistory(ctx)
}

// CurrentPosition returns the last position set, or the first item of
// the first section of the first collection.
func (s *SelectionStore) CurrentPosition(ctx context.Context) domain.Position {
	var coords []int
	if !s.read(ctx, driven.StateCurrentPosition, &coords) || len(coords) != 3 {
		return domain.DefaultPosition()
	}
	pos := domain.Position{Collection: coords[0], Section: coords[1], Item: coords[2]}
	if !pos.Valid() {
		logger.Warn("current position: %v: %s", domain.ErrDataIntegrity, pos)
		return domain.DefaultPosition()
	}
	return pos
}

// SetCurrentPosition persists the position being read.
func (s *SelectionStore) SetCurrentPosition(ctx context.Context, pos domain.Position) error {
	if !pos.Valid() {
		return domain.ErrInvalidInput
	}
	return s.save(ctx, driven.StateCurrentPosition, []int{pos.Collection, pos.Section, pos.Item})
}

// SelectedTab returns the persisted tab, defaulting to the chooser.
func (s *SelectionStore) SelectedTab(ctx context.Context) domain.Tab {
	var tab domain.Tab
	if !s.read(ctx, driven.StateSelectedTab, &tab) || !tab.IsValid() {
		return domain.TabChoose
	}
	return tab
}

// SetSelectedTab persists the selected tab.
func (s *SelectionStore) SetSelectedTab(ctx context.Context, tab domain.Tab) error {
	if !tab.IsValid() {
		return domain.ErrInvalidInput
	}
	return s.save(ctx, driven.StateSelectedTab, tab)
}

// AcknowledgeWelcome records that the welcome notice was dismissed.
func (s *SelectionStore) AcknowledgeWelcome(ctx context.Context) error {
	return s.save(ctx, driven.StateWelcomeAcknowledged, s.now().UTC().Format(time.RFC3339Nano))
}

// WelcomeAcknowledgedAt returns when the welcome notice was dismissed.
func (s *SelectionStore) WelcomeAcknowledgedAt(ctx context.Context) (time.Time, bool) {
	var raw string
	if !s.read(ctx, driven.StateWelcomeAcknowledged, &raw) {
		return time.Time{}, false
	}
	t, err := domain.ParseTimestamp(raw)
	if err != nil {
		logger.Warn("welcome acknowledgement: %v", err)
		return time.Time{}, false
	}
	return t, true
}

// DefaultPrimary persists set as the primary when no primary is stored.
func (s *SelectionStore) DefaultPrimary(ctx context.Context, set *domain.DocumentSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	if s.read(ctx, driven.StatePrimaryCode, &code) && code != "" {
		return
	}
	if s.write(ctx, driven.StatePrimaryCode, set.Code) {
		logger.Info("default primary set to %s", set.Code)
	}
}

// Clear removes every persisted selection.
func (s *SelectionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clear(ctx)
}

// storedSecondaries reads the secondary list (caller must hold lock).
func (s *SelectionStore) storedSecondaries(ctx context.Context) []string {
	var codes []string
	if !s.read(ctx, driven.StateSecondaryCodes, &codes) {
		return []string{}
	}
	if codes == nil {
		codes = []string{}
	}
	return codes
}

// storedHistory reads and repairs the history (caller must hold lock).
func (s *SelectionStore) storedHistory(ctx context.Context) []domain.HistoryEntry {
	raw, ok, err := s.state.Get(ctx, driven.StateReadHistory)
	if err != nil {
		logger.Warn("read history: %v", err)
		return []domain.HistoryEntry{}
	}
	if !ok {
		return []domain.HistoryEntry{}
	}

	entries, dropped, err := domain.ParseHistory(raw)
	if err != nil {
		logger.Warn("resetting history: %v", err)
		s.write(ctx, driven.StateReadHistory, []domain.HistoryEntry{})
		return []domain.HistoryEntry{}
	}

	truncated := false
	if len(entries) > domain.MaxHistory {
		entries = entries[:domain.MaxHistory]
		truncated = true
	}
	if dropped > 0 || truncated {
		logger.Warn("history: dropped %d malformed or repeated entries", dropped)
		s.write(ctx, driven.StateReadHistory, entries)
	}
	return entries
}

// read decodes key into dest. Returns false when unset or unreadable.
func (s *SelectionStore) read(ctx context.Context, key string, dest any) bool {
	raw, ok, err := s.state.Get(ctx, key)
	if err != nil {
		logger.Warn("read %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("read %s: %v: %v", key, domain.ErrDataIntegrity, err)
		return false
	}
	return true
}

// write encodes and stores value, logging failures.
func (s *SelectionStore) write(ctx context.Context, key string, value any) bool {
	if err := s.save(ctx, key, value); err != nil {
		logger.Error("write %s: %v", key, err)
		return false
	}
	return true
}

func (s *SelectionStore) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.state.Set(ctx, key, raw)
}
