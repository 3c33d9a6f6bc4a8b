// Package choose provides the document set picker for the TUI.
package choose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/keymap"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/messages"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/styles"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// View lists the loaded document sets. Enter makes the highlighted set
// primary and toggle adds or removes it as a secondary set.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	reader    driving.ReaderService
	selection driving.SelectionService
	ctx       context.Context

	docs      []*domain.DocumentSet
	primary   string
	secondary []string
	selected  int
	width     int
	height    int
}

// NewView creates a new choose view.
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

// WithContext sets the context used for selection writes.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Refresh reloads the document list and selection.
func (v *View) Refresh() {
	v.docs = v.reader.Documents()
	v.primary = v.selection.PrimaryCode(v.ctx)
	v.secondary = v.selection.SecondaryCodes(v.ctx)
	if v.selected >= len(v.docs) {
		v.selected = max(0, len(v.docs)-1)
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the choose view.
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
		if v.selected < len(v.docs)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Select):
		return v, v.choosePrimary()
	case keymap.Matches(k, v.keymap.Toggle):
		return v, v.toggleSecondary()
	}
	return v, nil
}

func (v *View) choosePrimary() tea.Cmd {
	doc := v.current()
	if doc == nil {
		return nil
	}
	if !v.selection.SetPrimaryCode(v.ctx, doc.Code) {
		return errorCmd(fmt.Errorf("%w: %s", domain.ErrInvalidSelection, doc.Code))
	}
	v.Refresh()
	return v.changed()
}

func (v *View) toggleSecondary() tea.Cmd {
	doc := v.current()
	if doc == nil {
		return nil
	}
	if doc.MatchesCode(v.primary) {
		return errorCmd(fmt.Errorf("%w: %s is the primary set", domain.ErrInvalidSelection, doc.Code))
	}

	codes := make([]string, 0, len(v.secondary)+1)
	removed := false
	for _, c := range v.secondary {
		if doc.MatchesCode(c) {
			removed = true
			continue
		}
		codes = append(codes, c)
	}
	if !removed {
		codes = append(codes, doc.Code)
	}

	if _, ok := v.selection.SetSecondaryCodes(v.ctx, codes); !ok {
		return errorCmd(errors.New("secondary sets could not be saved"))
	}
	v.Refresh()
	return v.changed()
}

func (v *View) changed() tea.Cmd {
	msg := messages.SelectionChanged{Primary: v.primary, Secondary: v.secondary}
	return func() tea.Msg { return msg }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
}

func (v *View) current() *domain.DocumentSet {
	if v.selected < 0 || v.selected >= len(v.docs) {
		return nil
	}
	return v.docs[v.selected]
}

func (v *View) isSecondary(d *domain.DocumentSet) bool {
	for _, c := range v.secondary {
		if d.MatchesCode(c) {
			return true
		}
	}
	return false
}

// View renders the document list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document sets"))
	b.WriteString("\n\n")

	if len(v.docs) == 0 {
		b.WriteString(v.styles.Muted.Render("Nothing loaded yet. Press r to sync."))
		b.WriteString("\n")
		return b.String()
	}

	for i, d := range v.docs {
		mark := "  "
		switch {
		case d.MatchesCode(v.primary):
			mark = "* "
		case v.isSecondary(d):
			mark = "+ "
		}
		line := fmt.Sprintf("%s%-8s %s (%s, %d)", mark, d.Code, d.DisplayName, d.Language, d.Year)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] primary  [space] toggle secondary  * primary  + secondary"))
	return b.String()
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
