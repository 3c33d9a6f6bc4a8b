package services

import (
	"sync"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// Library is the in-memory working set of loaded document sets.
// It never holds two sets with the same signature, and a newer version
// of a set replaces the older one in place.
type Library struct {
	mu   sync.RWMutex
	sets []*domain.DocumentSet
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{}
}

// Upsert inserts set or replaces the set it supersedes. A set is
// superseded by one with the same signature or the same locale, code
// and year. Returns true if an existing set was replaced.
func (l *Library) Upsert(set *domain.DocumentSet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(set); i >= 0 {
		l.sets[i] = set
		return true
	}
	l.sets = append(l.sets, set)
	return false
}

// AddIfAbsent inserts set only when no version of it is loaded.
// Returns true if set was added.
func (l *Library) AddIfAbsent(set *domain.DocumentSet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(set) >= 0 {
		return false
	}
	l.sets = append(l.sets, set)
	return true
}

// Find returns the first set whose code matches, ignoring case.
func (l *Library) Find(code string) (*domain.DocumentSet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.sets {
		if s.MatchesCode(code) {
			return s, true
		}
	}
	return nil, false
}

// First returns the earliest loaded set.
func (l *Library) First() (*domain.DocumentSet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.sets) == 0 {
		return nil, false
	}
	return l.sets[0], true
}

// All returns the loaded sets in load order.
func (l *Library) All() []*domain.DocumentSet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.DocumentSet, len(l.sets))
	copy(out, l.sets)
	return out
}

// Len returns the number of loaded sets.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sets)
}

// Clear drops every loaded set.
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets = nil
}

// indexOf finds the set superseded by set (caller must hold lock).
func (l *Library) indexOf(set *domain.DocumentSet) int {
	sig := set.Signature()
	for i, s := range l.sets {
		if s.Signature() == sig {
			return i
		}
	}
	for i, s := range l.sets {
		if s.Locale == set.Locale && s.MatchesCode(set.Code) && s.Year == set.Year {
			return i
		}
	}
	return -1
}
