package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewChoose, "choose"},
		{ViewRead, "read"},
		{ViewHistory, "history"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_TabRoundTrip(t *testing.T) {
	for _, v := range Tabs() {
		tab, ok := v.Tab()
		assert.True(t, ok)
		assert.True(t, tab.IsValid())
		assert.Equal(t, v, ViewForTab(tab))
		assert.Equal(t, v.String(), tab.String())
	}

	_, ok := ViewHelp.Tab()
	assert.False(t, ok)
}

func TestViewForTab_UnknownOpensChoose(t *testing.T) {
	assert.Equal(t, ViewChoose, ViewForTab(domain.Tab("settings")))
	assert.Equal(t, ViewChoose, ViewForTab(""))
}
