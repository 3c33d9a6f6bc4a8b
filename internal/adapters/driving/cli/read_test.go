package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

func TestListCmd_MarksSelection(t *testing.T) {
	fx := withFixture(t)
	fx.Selection.Secondary = []string{"AMP"}

	out, err := execute(t, "", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "* KJV")
	assert.Contains(t, out, "+ AMP")
}

func TestListCmd_JSON(t *testing.T) {
	withFixture(t)

	out, err := execute(t, "", "list", "--json")
	require.NoError(t, err)

	var entries []struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Language string `json:"language"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "KJV", entries[0].Code)
	assert.Equal(t, "AMP Edition", entries[1].Name)
}

func TestReadCmd_PrintsSectionWithSecondaries(t *testing.T) {
	fx := withFixture(t)
	fx.Selection.Secondary = []string{"AMP"}

	out, err := execute(t, "", "read", "1", "1", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Genesis 1 (KJV)")
	assert.Contains(t, out, "  2  KJV 1:2")
	assert.Contains(t, out, "[AMP] AMP 1:2")

	want := domain.Position{Collection: 1, Section: 1, Item: 2}
	assert.Equal(t, want, fx.Selection.Current)
	require.Len(t, fx.Selection.History, 1)
	assert.Equal(t, want, fx.Selection.History[0].Position)
}

func TestReadCmd_ClampsWithoutRecording(t *testing.T) {
	fx := withFixture(t)

	out, err := execute(t, "", "read", "9", "9")

	require.NoError(t, err)
	assert.Contains(t, out, "Exodus 1 (KJV)")
	assert.Empty(t, fx.Selection.History)
	assert.Equal(t, domain.Position{Collection: 2, Section: 1, Item: 1}, fx.Selection.Current)
}

func TestReadCmd_ClampsItem(t *testing.T) {
	fx := withFixture(t)

	_, err := execute(t, "", "read", "1", "1", "40")

	require.NoError(t, err)
	assert.Equal(t, domain.Position{Collection: 1, Section: 1, Item: 3}, fx.Selection.Current)
}

func TestReadCmd_InvalidNumbers(t *testing.T) {
	withFixture(t)

	tests := [][]string{
		{"read", "one", "1"},
		{"read", "1", "x"},
		{"read", "1", "1", "y"},
	}
	for _, args := range tests {
		_, err := execute(t, "", args...)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, args)
	}
}

func TestTextCmd(t *testing.T) {
	withFixture(t)

	out, err := execute(t, "", "text", "1", "2", "1")

	require.NoError(t, err)
	assert.Equal(t, "KJV 2:1\n", out)
}

func TestTextCmd_RejectsZero(t *testing.T) {
	withFixture(t)

	_, err := execute(t, "", "text", "0", "1", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRenderer_PlainForBuffers(t *testing.T) {
	r := newRenderer(new(bytes.Buffer))

	assert.False(t, r.styled)
	assert.Equal(t, "In the beginning [Gen 1]", r.item("In the beginning [Gen 1]"))
	assert.Equal(t, "[AMP] text", r.secondary("AMP", "text"))
	assert.Equal(t, "Genesis 1", r.heading("Genesis 1"))
}

func TestParseCoordinates(t *testing.T) {
	c, s, err := parseCoordinates("3", "14")

	require.NoError(t, err)
	assert.Equal(t, 3, c)
	assert.Equal(t, 14, s)
}
