package read

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/keymap"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/messages"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/styles"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/tuitest"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

func newTestView(sets ...*domain.DocumentSet) (*View, *tuitest.Fixture) {
	fx := tuitest.New(sets...)
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), fx.Reader, fx.Selection)
	v.SetDimensions(120, 40)
	return v, fx
}

func pos(c, s, i int) domain.Position {
	return domain.Position{Collection: c, Section: s, Item: i}
}

func TestView_NotReady(t *testing.T) {
	v, _ := newTestView()

	v.Show(domain.DefaultPosition())

	assert.ErrorIs(t, v.Err(), domain.ErrNotReady)
	assert.Contains(t, v.View(), "Choose a document set first")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, cmd)
}

func TestView_ShowClampsWithoutRecording(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"))

	v.Show(pos(9, 9, 9))

	assert.Equal(t, pos(2, 1, 2), v.Position())
	assert.Empty(t, fx.Selection.History)
	assert.Contains(t, v.View(), "Exodus 1  (KJV)")
}

func TestView_GoToRecords(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"))

	cmd := v.GoTo(pos(1, 1, 3))

	assert.Nil(t, cmd)
	assert.Equal(t, pos(1, 1, 3), fx.Selection.Current)
	require.Len(t, fx.Selection.History, 1)
	assert.Equal(t, pos(1, 1, 3), fx.Selection.History[0].Position)
}

func TestView_GoToPersistFailure(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"))
	fx.Selection.SaveErr = errors.New("read-only")

	cmd := v.GoTo(pos(1, 1, 1))

	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.EqualError(t, msg.Err, "read-only")
}

func TestView_ItemKeysPersistOnly(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"))
	v.Show(pos(1, 1, 1))

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, pos(1, 1, 3), v.Position())
	assert.Equal(t, pos(1, 1, 3), fx.Selection.Current)
	assert.Empty(t, fx.Selection.History)

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, pos(1, 1, 2), v.Position())
}

func TestView_SectionNavigation(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"))
	v.Show(pos(1, 1, 2))

	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, pos(1, 2, 1), v.Position())

	// Past the last section of a collection moves into the next one.
	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, pos(2, 1, 1), v.Position())

	// Back from the first section lands on the last section before it.
	v.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, pos(1, 2, 1), v.Position())

	require.Len(t, fx.Selection.History, 2)
	assert.Equal(t, pos(1, 2, 1), fx.Selection.History[0].Position)
	assert.Equal(t, pos(2, 1, 1), fx.Selection.History[1].Position)
}

func TestView_CollectionNavigation(t *testing.T) {
	v, _ := newTestView(tuitest.Set("KJV"))
	v.Show(pos(1, 2, 1))

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, pos(2, 1, 1), v.Position())

	// Clamped at the last collection.
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, pos(2, 1, 1), v.Position())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, pos(1, 1, 1), v.Position())
}

func TestView_RendersSecondaries(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))
	fx.Selection.Secondary = []string{"AMP"}

	v.Show(pos(1, 1, 1))
	out := v.View()

	assert.Contains(t, out, "KJV 1:1")
	assert.Contains(t, out, "AMP 1:1")
	assert.Contains(t, out, "Genesis 1  (KJV)")
}

func TestView_RefreshFollowsPrimary(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))
	v.Show(pos(1, 1, 1))

	fx.Selection.Primary = "AMP"
	v.Refresh()

	assert.Contains(t, v.View(), "Genesis 1  (AMP)")
}

func TestWindow(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e", "f"}

	assert.Equal(t, lines, window(lines, 0, 0))
	assert.Equal(t, lines, window(lines, 3, 10))
	assert.Equal(t, []string{"a", "b", "c"}, window(lines, 0, 3))
	assert.Equal(t, []string{"c", "d", "e"}, window(lines, 3, 3))
	assert.Equal(t, []string{"d", "e", "f"}, window(lines, 5, 3))
}
