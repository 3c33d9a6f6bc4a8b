package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

func TestPrimaryCmd_Show(t *testing.T) {
	withFixture(t)

	out, err := execute(t, "", "primary")

	require.NoError(t, err)
	assert.Equal(t, "KJV\n", out)
}

func TestPrimaryCmd_Set(t *testing.T) {
	fx := withFixture(t)
	fx.Selection.Secondary = []string{"AMP"}

	out, err := execute(t, "", "primary", "amp")

	require.NoError(t, err)
	assert.Contains(t, out, "Primary set: AMP")
	assert.Empty(t, fx.Selection.Secondary)
}

func TestPrimaryCmd_Unknown(t *testing.T) {
	fx := withFixture(t)

	_, err := execute(t, "", "primary", "XYZ")

	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	assert.Empty(t, fx.Selection.Primary)
}

func TestSecondaryCmd_Set(t *testing.T) {
	fx := withFixture(t)

	out, err := execute(t, "", "secondary", "AMP", "XYZ", "KJV")

	require.NoError(t, err)
	assert.Contains(t, out, "Ignored 2 unknown or primary code(s).")
	assert.Contains(t, out, "Secondary sets: AMP")
	assert.Equal(t, []string{"AMP"}, fx.Selection.Secondary)
}

func TestSecondaryCmd_ShowAndClear(t *testing.T) {
	fx := withFixture(t)
	fx.Selection.Secondary = []string{"AMP"}

	out, err := execute(t, "", "secondary")
	require.NoError(t, err)
	assert.Equal(t, "AMP\n", out)

	out, err = execute(t, "", "secondary", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Secondary sets: (none)")
	assert.Empty(t, fx.Selection.Secondary)
	secondaryClear = false
}

func TestSecondaryCmd_SaveFailure(t *testing.T) {
	fx := withFixture(t)
	fx.Selection.SaveErr = errors.New("read-only")

	_, err := execute(t, "", "secondary", "AMP")

	assert.EqualError(t, err, "secondary sets could not be saved")
}

func TestHistoryCmd(t *testing.T) {
	fx := withFixture(t)

	out, err := execute(t, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "No positions recorded yet.\n", out)

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	fx.Selection.History = domain.PushHistory(nil, domain.Position{Collection: 2, Section: 1, Item: 2}, now)

	out, err = execute(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Exodus 1:2")
}

func TestGotoCmd(t *testing.T) {
	fx := withFixture(t)

	out, err := execute(t, "", "goto", "2", "1", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Current position: 2:1:2")
	want := domain.Position{Collection: 2, Section: 1, Item: 2}
	assert.Equal(t, want, fx.Selection.Current)
	require.Len(t, fx.Selection.History, 1)
	assert.Equal(t, want, fx.Selection.History[0].Position)
}

func TestGotoCmd_Invalid(t *testing.T) {
	fx := withFixture(t)

	_, err := execute(t, "", "goto", "a", "1", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, fx.Selection.History)
}

func TestTabCmd(t *testing.T) {
	fx := withFixture(t)

	out, err := execute(t, "", "tab")
	require.NoError(t, err)
	assert.Equal(t, "choose\n", out)

	out, err = execute(t, "", "tab", "HISTORY")
	require.NoError(t, err)
	assert.Contains(t, out, "Tab: history")
	assert.Equal(t, domain.TabHistory, fx.Selection.Tab)

	_, err = execute(t, "", "tab", "settings")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
