package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MaxHistory is the number of visited positions retained.
const MaxHistory = 30

// Position is a 1-based collection/section/item coordinate
// (book/chapter/verse).
type Position struct {
	Collection int `json:"collection"`
	Section    int `json:"section"`
	Item       int `json:"item"`
}

// DefaultPosition is the position used when none has been recorded.
func DefaultPosition() Position {
	return Position{Collection: 1, Section: 1, Item: 1}
}

// Valid reports whether every coordinate is at least 1.
func (p Position) Valid() bool {
	return p.Collection >= 1 && p.Section >= 1 && p.Item >= 1
}

// String returns the position as "collection:section:item".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Collection, p.Section, p.Item)
}

// ParsePosition converts raw coordinate strings into a Position.
// Any non-numeric or sub-1 coordinate is ErrInvalidInput.
func ParsePosition(collection, section, item string) (Position, error) {
	var pos Position
	for _, f := range []struct {
		raw  string
		dest *int
	}{
		{collection, &pos.Collection},
		{section, &pos.Section},
		{item, &pos.Item},
	} {
		n, err := strconv.Atoi(f.raw)
		if err != nil {
			return Position{}, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, f.raw)
		}
		*f.dest = n
	}
	if !pos.Valid() {
		return Position{}, fmt.Errorf("%w: position %s", ErrInvalidInput, pos)
	}
	return pos, nil
}

// HistoryEntry is one visited position.
// It is persisted as the JSON array [collection, section, item, "RFC3339"].
type HistoryEntry struct {
	Position
	VisitedAt time.Time
}

// MarshalJSON encodes the entry in its compact array form.
func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		h.Collection,
		h.Section,
		h.Item,
		h.VisitedAt.UTC().Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON decodes the compact array form. Entries with the wrong
// arity, null fields, non-integral coordinates or an unparseable
// timestamp are rejected with ErrDataIntegrity.
func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: history entry: %v", ErrDataIntegrity, err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("%w: history entry has %d fields", ErrDataIntegrity, len(raw))
	}

	var coords [3]int
	for i := range coords {
		if string(raw[i]) == "null" {
			return fmt.Errorf("%w: history entry field %d is null", ErrDataIntegrity, i)
		}
		if err := json.Unmarshal(raw[i], &coords[i]); err != nil {
			return fmt.Errorf("%w: history entry field %d: %v", ErrDataIntegrity, i, err)
		}
	}

	var stamp *string
	if err := json.Unmarshal(raw[3], &stamp); err != nil || stamp == nil {
		return fmt.Errorf("%w: history entry timestamp", ErrDataIntegrity)
	}
	visited, err := ParseTimestamp(*stamp)
	if err != nil {
		return fmt.Errorf("%w: history entry timestamp: %v", ErrDataIntegrity, err)
	}

	pos := Position{Collection: coords[0], Section: coords[1], Item: coords[2]}
	if !pos.Valid() {
		return fmt.Errorf("%w: history entry position %s", ErrDataIntegrity, pos)
	}

	h.Position = pos
	h.VisitedAt = visited
	return nil
}

// ParseHistory decodes a persisted history list, dropping malformed entries
// and any later repeat of coordinates already seen. It returns the surviving
// entries and how many were dropped. A value that is not a JSON array at all
// returns ErrDataIntegrity.
func ParseHistory(data []byte) ([]HistoryEntry, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: history: %v", ErrDataIntegrity, err)
	}

	entries := make([]HistoryEntry, 0, len(raw))
	seen := make(map[Position]bool, len(raw))
	dropped := 0
	for _, r := range raw {
		var e HistoryEntry
		if err := json.Unmarshal(r, &e); err != nil || seen[e.Position] {
			dropped++
			continue
		}
		seen[e.Position] = true
		entries = append(entries, e)
	}
	return entries, dropped, nil
}

// PushHistory returns history with pos prepended at time now. Any existing
// entry for the same coordinates is removed first and the result is
// truncated to MaxHistory.
func PushHistory(history []HistoryEntry, pos Position, now time.Time) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history)+1)
	out = append(out, HistoryEntry{Position: pos, VisitedAt: now})
	for _, h := range history {
		if h.Position == pos {
			continue
		}
		out = append(out, h)
	}
	if len(out) > MaxHistory {
		out = out[:MaxHistory]
	}
	return out
}
