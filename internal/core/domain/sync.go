package domain

import (
	"errors"
	"fmt"
	"time"
)

// Outcome describes how a catalog entry was resolved.
type Outcome string

const (
	// OutcomeFetched means there was no cached copy and the body was downloaded.
	OutcomeFetched Outcome = "fetched"

	// OutcomeRefreshed means the cached copy was stale and was replaced.
	OutcomeRefreshed Outcome = "refreshed"

	// OutcomeLoaded means the fresh cached copy was loaded into memory.
	OutcomeLoaded Outcome = "loaded"

	// OutcomeRevalidated means the cached copy was confirmed fresh and
	// memory was left untouched.
	OutcomeRevalidated Outcome = "revalidated"

	// OutcomeFailed means the entry could not be resolved.
	OutcomeFailed Outcome = "failed"
)

// Changed reports whether the outcome wrote a new body to the cache.
func (o Outcome) Changed() bool {
	return o == OutcomeFetched || o == OutcomeRefreshed
}

// PassSource identifies where a resolution pass got its catalog.
type PassSource string

const (
	// PassCache resolves the cached catalog with no catalog download.
	PassCache PassSource = "cache"

	// PassNetwork resolves a freshly downloaded catalog.
	PassNetwork PassSource = "network"
)

// EntryFailure records why one catalog entry could not be resolved.
type EntryFailure struct {
	Key  string
	Code string
	Err  error
}

func (f EntryFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Code, f.Err)
}

func (f EntryFailure) Unwrap() error {
	return f.Err
}

// PassReport summarises one resolution pass over a catalog.
// It is produced only once every entry has either resolved or failed.
type PassReport struct {
	// RunID correlates log lines for this pass.
	RunID string

	// Source is where the catalog came from.
	Source PassSource

	// ReplaceInMemory records whether fresh cached sets were loaded into memory.
	ReplaceInMemory bool

	// Total is the number of catalog entries considered.
	Total int

	// Resolved holds the sets obtained, in completion order.
	Resolved []*DocumentSet

	// Failures holds one record per failed entry.
	Failures []EntryFailure

	// Outcomes maps cache keys (or codes, for keyless entries) to outcomes.
	Outcomes map[string]Outcome

	// First is the first set to resolve successfully, or nil.
	First *DocumentSet

	// StartedAt is when the pass began.
	StartedAt time.Time

	// Duration is how long the pass took.
	Duration time.Duration
}

// Err joins all entry failures, or returns nil.
func (r *PassReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Count returns how many entries ended with the given outcome.
func (r *PassReport) Count(o Outcome) int {
	n := 0
	for _, v := range r.Outcomes {
		if v == o {
			n++
		}
	}
	return n
}

// SecondaryText is one secondary set's rendering of an item.
type SecondaryText struct {
	Code string
	Text string
}

// SectionRow is one item of a section across the selected sets.
type SectionRow struct {
	Item      int
	Text      string
	Secondary []SecondaryText
}

// SectionView is a clamped section ready for display.
type SectionView struct {
	Position       Position
	CollectionName string
	SectionCount   int
	PrimaryCode    string
	Rows           []SectionRow
}

// Status summarises the manager's in-memory state.
type Status struct {
	Ready          bool
	Documents      int
	PrimaryCode    string
	SecondaryCodes []string
	LastPass       *PassReport
}
