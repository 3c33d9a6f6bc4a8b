// Package history provides the reading history view for the TUI.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/keymap"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/messages"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/styles"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// View lists recently visited positions, most recent first.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	reader    driving.ReaderService
	selection driving.SelectionService
	ctx       context.Context

	entries  []domain.HistoryEntry
	selected int
	width    int
	height   int
}

// NewView creates a new history view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	reader driving.ReaderService,
	selection driving.SelectionService,
) *View {
	return &View{
		styles:    s,
		keymap:    km,
		reader:    reader,
		selection: selection,
		ctx:       context.Background(),
	}
}

// WithContext sets the context used for history reads.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Refresh reloads the history.
func (v *View) Refresh() {
	v.entries = v.selection.PositionHistory(v.ctx)
	v.selected = 0
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	k := keyMsg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Select):
		if v.selected < len(v.entries) {
			pos := v.entries[v.selected].Position
			return v, func() tea.Msg { return messages.PositionSelected{Position: pos} }
		}
	}
	return v, nil
}

// View renders the history list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	if len(v.entries) == 0 {
		b.WriteString(v.styles.Muted.Render("No positions recorded yet."))
		b.WriteString("\n")
		return b.String()
	}

	for i, e := range v.entries {
		name, ok := v.reader.GetCollectionName(e.Collection)
		if !ok {
			name = fmt.Sprintf("#%d", e.Collection)
		}
		line := fmt.Sprintf("%s %d:%d", name, e.Section, e.Item)
		when := v.styles.Muted.Render(e.VisitedAt.Local().Format(time.DateTime))
		if i == v.selected {
			line = v.styles.Selected.Render(line)
		} else {
			line = v.styles.Normal.Render(line)
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", when, line))
	}
	return b.String()
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Entries returns the loaded history.
func (v *View) Entries() []domain.HistoryEntry {
	return v.entries
}
