package choose

import (
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
	v.Refresh()
	return v, fx
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_Empty(t *testing.T) {
	v, _ := newTestView()

	assert.Contains(t, v.View(), "Nothing loaded yet")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_Navigation(t *testing.T) {
	v, _ := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))

	v.Update(key("k"))
	assert.Equal(t, 0, v.Selected())

	v.Update(key("j"))
	v.Update(key("j"))
	assert.Equal(t, 1, v.Selected())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())
}

func TestView_ChoosePrimary(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))
	fx.Selection.Secondary = []string{"AMP"}
	v.Refresh()

	v.Update(key("j"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.SelectionChanged)
	require.True(t, ok)
	assert.Equal(t, "AMP", msg.Primary)
	assert.Empty(t, msg.Secondary)
	assert.Equal(t, "AMP", fx.Selection.Primary)
}

func TestView_ToggleSecondary(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"), tuitest.Set("BIS"))

	v.Update(key("j"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)
	msg := cmd().(messages.SelectionChanged)
	assert.Equal(t, []string{"AMP"}, msg.Secondary)

	v.Update(key("j"))
	_, cmd = v.Update(key("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"AMP", "BIS"}, fx.Selection.Secondary)
	assert.Contains(t, v.View(), "+ BIS")

	// Toggling again removes it.
	_, cmd = v.Update(key("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"AMP"}, fx.Selection.Secondary)
}

func TestView_ToggleRejectsPrimary(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, domain.ErrInvalidSelection)
	assert.Empty(t, fx.Selection.Secondary)
}

func TestView_MarksSelection(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))
	fx.Selection.Secondary = []string{"AMP"}
	v.Refresh()

	out := v.View()

	assert.Contains(t, out, "* KJV")
	assert.Contains(t, out, "+ AMP")
}

func TestView_RefreshClampsSelection(t *testing.T) {
	v, fx := newTestView(tuitest.Set("KJV"), tuitest.Set("AMP"))
	v.Update(key("j"))

	fx.Reader.Sets = fx.Reader.Sets[:1]
	v.Refresh()

	assert.Equal(t, 0, v.Selected())
}
