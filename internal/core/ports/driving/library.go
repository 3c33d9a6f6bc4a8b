package driving

import (
	"context"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// SyncService loads the catalog and keeps the local cache fresh.
type SyncService interface {
	// Initialize opens storage and resolves the cached catalog (if any)
	// followed by the remote one. onReady is called once per completed
	// pass. Per-document failures never fail Initialize.
	Initialize(ctx context.Context, onReady func(domain.PassReport)) error

	// LoadCached resolves only the cached catalog with no network access.
	// The report is nil when nothing has been cached yet.
	LoadCached(ctx context.Context) (*domain.PassReport, error)

	// Sync runs a single network pass, revalidating every cached set.
	Sync(ctx context.Context) (*domain.PassReport, error)

	// Status summarises what is loaded.
	Status() domain.Status

	// Reset destroys the cache and the persisted selection state.
	Reset(ctx context.Context) error
}

// ReaderService answers lookups against the loaded document sets.
// All coordinates are 1-based.
type ReaderService interface {
	// Documents returns the loaded sets in load order.
	Documents() []*domain.DocumentSet

	// Primary returns the primary set.
	Primary() (*domain.DocumentSet, bool)

	// Secondaries returns the secondary sets in selection order.
	Secondaries() []*domain.DocumentSet

	// GetItemText returns the primary set's text at the clamped position.
	GetItemText(pos domain.Position) (string, bool)

	// GetSecondaryItemText returns a secondary set's text at pos. It is
	// absent when that set lacks the coordinate or the item is empty.
	GetSecondaryItemText(code string, pos domain.Position) (string, bool)

	// GetCollectionName returns the primary set's collection name,
	// clamping the index.
	GetCollectionName(collection int) (string, bool)

	// ReadSection returns the clamped section with secondary texts.
	ReadSection(collection, section int) (*domain.SectionView, error)
}

// SelectionService reads and writes persisted selection state.
type SelectionService interface {
	// PrimaryCode returns the primary code, defaulting to the first loaded set.
	PrimaryCode(ctx context.Context) string

	// SetPrimaryCode selects the primary set. Returns false, with no
	// change, when code matches no loaded set.
	SetPrimaryCode(ctx context.Context, code string) bool

	// SecondaryCodes returns the persisted secondary codes.
	SecondaryCodes(ctx context.Context) []string

	// SetSecondaryCodes filters codes to loaded sets other than the
	// primary and persists the result.
	SetSecondaryCodes(ctx context.Context, codes []string) ([]string, bool)

	// RecordPosition adds pos to the history. Invalid positions are
	// logged and ignored.
	RecordPosition(ctx context.Context, pos domain.Position)

	// RecordRawPosition parses and records coordinates typed by a user.
	RecordRawPosition(ctx context.Context, collection, section, item string)

	// PositionHistory returns the history, most recent first.
	PositionHistory(ctx context.Context) []domain.HistoryEntry

	// CurrentPosition returns the last position read.
	CurrentPosition(ctx context.Context) domain.Position

	// SetCurrentPosition stores the position being read.
	SetCurrentPosition(ctx context.Context, pos domain.Position) error

	// SelectedTab returns the persisted tab.
	SelectedTab(ctx context.Context) domain.Tab

	// SetSelectedTab persists the tab.
	SetSelectedTab(ctx context.Context, tab domain.Tab) error

	// AcknowledgeWelcome records that the welcome notice was dismissed.
	AcknowledgeWelcome(ctx context.Context) error

	// WelcomeAcknowledgedAt returns when the welcome notice was dismissed.
	WelcomeAcknowledgedAt(ctx context.Context) (time.Time, bool)
}
