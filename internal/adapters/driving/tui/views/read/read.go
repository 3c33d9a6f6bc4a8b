// Package read provides the section reader view for the TUI.
package read

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/keymap"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/messages"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/styles"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// View shows one section of the primary set with the secondary texts
// under each item. The highlighted item is the current position.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	reader    driving.ReaderService
	selection driving.SelectionService
	ctx       context.Context

	pos     domain.Position
	section *domain.SectionView
	width   int
	height  int
	err     error
}

// NewView creates a new read view.
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
		pos:       domain.DefaultPosition(),
	}
}

// WithContext sets the context used for position writes.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Show loads the section containing pos without recording anything.
func (v *View) Show(pos domain.Position) {
	v.load(pos)
}

// Refresh reloads the current section, for example after the primary
// set changed.
func (v *View) Refresh() {
	v.load(v.pos)
}

// GoTo shows pos, makes it the current position and records it in the
// history.
func (v *View) GoTo(pos domain.Position) tea.Cmd {
	if !v.load(pos) {
		return nil
	}
	v.selection.RecordPosition(v.ctx, v.pos)
	return v.persist()
}

// load clamps pos against the primary set and reads its section.
func (v *View) load(pos domain.Position) bool {
	primary, ok := v.reader.Primary()
	if !ok {
		v.section = nil
		v.err = domain.ErrNotReady
		return false
	}
	clamped, ok := primary.Clamp(pos)
	if !ok {
		v.err = fmt.Errorf("%w: %s has no text at %s", domain.ErrNotFound, primary.Code, pos)
		return false
	}

	section, err := v.reader.ReadSection(clamped.Collection, clamped.Section)
	if err != nil {
		v.err = err
		return false
	}
	v.pos = clamped
	v.section = section
	v.err = nil
	return true
}

func (v *View) persist() tea.Cmd {
	if err := v.selection.SetCurrentPosition(v.ctx, v.pos); err != nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	return nil
}

// Update handles messages for the read view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || v.section == nil {
		return v, nil
	}

	next := v.pos
	record := false

	k := keyMsg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		next.Item--
	case keymap.Matches(k, v.keymap.Down):
		next.Item++
	case keymap.Matches(k, v.keymap.NextSection):
		if next.Section < v.section.SectionCount {
			next.Section++
		} else {
			next.Collection++
			next.Section = 1
		}
		next.Item = 1
		record = true
	case keymap.Matches(k, v.keymap.PrevSection):
		if next.Section > 1 {
			next.Section--
			next.Item = 1
		} else if next.Collection > 1 {
			// Clamping moves an oversized section to the last one.
			next.Collection--
			next.Section = math.MaxInt
			next.Item = 1
		}
		record = true
	case keymap.Matches(k, v.keymap.NextCollection):
		next = domain.Position{Collection: next.Collection + 1, Section: 1, Item: 1}
		record = true
	case keymap.Matches(k, v.keymap.PrevCollection):
		next = domain.Position{Collection: next.Collection - 1, Section: 1, Item: 1}
		record = true
	case keymap.Matches(k, v.keymap.Select):
		record = true
	default:
		return v, nil
	}

	if record {
		return v, v.GoTo(next)
	}
	if !v.load(next) {
		return v, nil
	}
	return v, v.persist()
}

// View renders the section.
func (v *View) View() string {
	var b strings.Builder

	if v.section == nil {
		b.WriteString(v.styles.Title.Render("Read"))
		b.WriteString("\n\n")
		msg := "Nothing to read yet. Choose a document set first."
		if v.err != nil && v.err != domain.ErrNotReady {
			msg = v.err.Error()
		}
		b.WriteString(v.styles.Muted.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	heading := fmt.Sprintf("%s %d  (%s)", v.section.CollectionName, v.section.Position.Section, v.section.PrimaryCode)
	b.WriteString(v.styles.Title.Render(heading))
	b.WriteString("\n\n")

	lines := make([]string, 0, len(v.section.Rows)*2)
	selectedLine := 0
	for _, row := range v.section.Rows {
		number := fmt.Sprintf("%3d ", row.Item)
		if row.Item == v.pos.Item {
			selectedLine = len(lines)
			number = v.styles.Selected.Render(number)
		} else {
			number = v.styles.Muted.Render(number)
		}
		lines = append(lines, number+" "+v.renderItem(row.Text))
		for _, s := range row.Secondary {
			lines = append(lines, "     "+v.styles.SecondaryCode.Render(s.Code)+" "+
				v.styles.SecondaryText.Render(v.renderItem(s.Text)))
		}
	}

	b.WriteString(strings.Join(window(lines, selectedLine, v.height-6), "\n"))
	b.WriteString("\n")
	return b.String()
}

// renderItem styles pericope markers within item text.
func (v *View) renderItem(text string) string {
	var b strings.Builder
	for _, tok := range domain.Tokenize(text) {
		if tok.Marker {
			b.WriteString(v.styles.Marker.Render(tok.Text))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// window returns at most size lines around focus. A non-positive size
// returns every line.
func window(lines []string, focus, size int) []string {
	if size <= 0 || len(lines) <= size {
		return lines
	}
	start := focus - size/2
	start = max(0, min(start, len(lines)-size))
	return lines[start : start+size]
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Position returns the current position.
func (v *View) Position() domain.Position {
	return v.pos
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
