// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChoose lists the document sets and the selection.
	ViewChoose ViewType = iota
	// ViewRead shows the current section.
	ViewRead
	// ViewHistory lists recently visited positions.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChoose:
		return "choose"
	case ViewRead:
		return "read"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Tab returns the persisted tab for the view. The help view has none.
func (v ViewType) Tab() (domain.Tab, bool) {
	switch v {
	case ViewChoose:
		return domain.TabChoose, true
	case ViewRead:
		return domain.TabRead, true
	case ViewHistory:
		return domain.TabHistory, true
	default:
		return "", false
	}
}

// ViewForTab maps a persisted tab to its view. Unknown tabs open the
// choose view.
func ViewForTab(tab domain.Tab) ViewType {
	switch tab {
	case domain.TabRead:
		return ViewRead
	case domain.TabHistory:
		return ViewHistory
	default:
		return ViewChoose
	}
}

// Tabs lists the tabbed views in display order.
func Tabs() []ViewType {
	return []ViewType{ViewChoose, ViewRead, ViewHistory}
}

// CacheLoaded carries the result of loading the cached catalog.
// Report is nil when nothing has been cached yet.
type CacheLoaded struct {
	Report *domain.PassReport
	Err    error
}

// SyncCompleted carries the result of a network pass.
type SyncCompleted struct {
	Report *domain.PassReport
	Err    error
}

// SelectionChanged signals the primary or secondary sets changed.
type SelectionChanged struct {
	Primary   string
	Secondary []string
}

// PositionSelected asks the read view to show a position.
type PositionSelected struct {
	Position domain.Position
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
