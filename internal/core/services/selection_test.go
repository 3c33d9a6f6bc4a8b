package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/adapters/driven/storage/memory"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
)

func newTestSelection(codes ...string) (*SelectionStore, *memory.StateStore) {
	lib := NewLibrary()
	for i, code := range codes {
		lib.Upsert(&domain.DocumentSet{Locale: "en", Code: code, Year: 2000 + i})
	}
	state := memory.NewStateStore()
	return NewSelectionStore(state, lib), state
}

func TestSelectionStore_PrimaryDefaultsToFirstLoaded(t *testing.T) {
	ctx := context.Background()

	empty, _ := newTestSelection()
	assert.Empty(t, empty.PrimaryCode(ctx))

	sel, _ := newTestSelection("AMP", "BIS")
	assert.Equal(t, "AMP", sel.PrimaryCode(ctx))
}

func TestSelectionStore_SetPrimaryCode(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP", "BIS", "TB")

	assert.True(t, sel.SetPrimaryCode(ctx, "bis"))
	assert.Equal(t, "BIS", sel.PrimaryCode(ctx), "canonical spelling is stored")

	assert.False(t, sel.SetPrimaryCode(ctx, "ESV"))
	assert.Equal(t, "BIS", sel.PrimaryCode(ctx), "unknown code leaves primary unchanged")
}

func TestSelectionStore_SetPrimaryStripsSecondary(t *testing.T) {
	ctx := context.Background()

	priorStates := [][]string{
		{},
		{"TB"},
		{"BIS"},
		{"bis", "TB"},
		{"TB", "BIS"},
	}
	for _, prior := range priorStates {
		t.Run(fmt.Sprint(prior), func(t *testing.T) {
			sel, state := newTestSelection("AMP", "BIS", "TB")
			raw, err := json.Marshal(prior)
			require.NoError(t, err)
			require.NoError(t, state.Set(ctx, driven.StateSecondaryCodes, raw))

			require.True(t, sel.SetPrimaryCode(ctx, "BIS"))

			for _, c := range sel.SecondaryCodes(ctx) {
				assert.False(t, strings.EqualFold("BIS", c), "primary listed as secondary")
			}
		})
	}
}

func TestSelectionStore_SetSecondaryCodesExcludesPrimary(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP", "BIS")
	require.True(t, sel.SetPrimaryCode(ctx, "AMP"))

	got, ok := sel.SetSecondaryCodes(ctx, []string{"amp", "bis"})

	require.True(t, ok)
	assert.Equal(t, []string{"bis"}, got)
	assert.Equal(t, []string{"bis"}, sel.SecondaryCodes(ctx))
}

func TestSelectionStore_SetSecondaryCodesFilters(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP", "BIS", "TB")

	got, ok := sel.SetSecondaryCodes(ctx, []string{"TB", "ESV", "tb", "BIS"})
	require.True(t, ok)
	assert.Equal(t, []string{"TB", "BIS"}, got)

	again, ok := sel.SetSecondaryCodes(ctx, got)
	require.True(t, ok)
	assert.Equal(t, got, again, "filtering is idempotent")

	none, ok := sel.SetSecondaryCodes(ctx, nil)
	require.True(t, ok)
	assert.Empty(t, none)
	assert.Empty(t, sel.SecondaryCodes(ctx))
}

func TestSelectionStore_RecordPositionIgnoresInvalid(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")

	sel.RecordPosition(ctx, domain.Position{Collection: 1, Section: 1, Item: 1})
	sel.RecordPosition(ctx, domain.Position{Collection: 9, Section: 44, Item: 0})
	sel.RecordRawPosition(ctx, "9", "x", "1")

	history := sel.PositionHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, domain.Position{Collection: 1, Section: 1, Item: 1}, history[0].Position)
}

func TestSelectionStore_RecordPositionDeduplicates(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")
	clock := time.Date(2024, 8, 14, 18, 0, 0, 0, time.UTC)
	sel.now = func() time.Time { return clock }

	pos := domain.Position{Collection: 43, Section: 3, Item: 16}
	for i := 0; i < 5; i++ {
		clock = clock.Add(time.Minute)
		sel.RecordPosition(ctx, pos)
	}

	history := sel.PositionHistory(ctx)
	require.Len(t, history, 1)
	assert.True(t, clock.Equal(history[0].VisitedAt), "latest visit time is kept")
}

func TestSelectionStore_RecordPositionMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")

	a := domain.Position{Collection: 1, Section: 1, Item: 1}
	b := domain.Position{Collection: 2, Section: 3, Item: 4}
	sel.RecordPosition(ctx, a)
	sel.RecordPosition(ctx, b)
	sel.RecordPosition(ctx, a)

	history := sel.PositionHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, a, history[0].Position)
	assert.Equal(t, b, history[1].Position)
}

func TestSelectionStore_HistoryCapped(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")

	for i := 1; i <= 75; i++ {
		sel.RecordPosition(ctx, domain.Position{Collection: 1, Section: i, Item: 1})
		assert.LessOrEqual(t, len(sel.PositionHistory(ctx)), domain.MaxHistory)
	}

	history := sel.PositionHistory(ctx)
	require.Len(t, history, domain.MaxHistory)
	assert.Equal(t, 75, history[0].Section)
}

func TestSelectionStore_HistorySelfHeals(t *testing.T) {
	ctx := context.Background()
	sel, state := newTestSelection("AMP")

	stored := `[
		[1, 2, 3, "2024-08-14T18:29:03Z"],
		[1, 2],
		[null, 2, 3, "2024-08-14T18:29:03Z"],
		[4, 5, 6, "2024-08-14 18:29:03"],
		[7, 8, 0, "2024-08-14T18:29:03Z"]
	]`
	require.NoError(t, state.Set(ctx, driven.StateReadHistory, []byte(stored)))

	history := sel.PositionHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, domain.Position{Collection: 1, Section: 2, Item: 3}, history[0].Position)
	assert.Equal(t, domain.Position{Collection: 4, Section: 5, Item: 6}, history[1].Position)

	raw, ok, err := state.Get(ctx, driven.StateReadHistory)
	require.NoError(t, err)
	require.True(t, ok)
	entries, dropped, err := domain.ParseHistory(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped, "cleaned list is persisted")
	assert.Len(t, entries, 2)
}

func TestSelectionStore_HistoryDropsRepeatedPositions(t *testing.T) {
	ctx := context.Background()
	sel, state := newTestSelection("AMP")

	stored := `[
		[1, 2, 3, "2024-08-14T18:29:03Z"],
		[4, 5, 6, "2024-08-13T18:29:03Z"],
		[1, 2, 3, "2024-08-12T18:29:03Z"]
	]`
	require.NoError(t, state.Set(ctx, driven.StateReadHistory, []byte(stored)))

	history := sel.PositionHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, domain.Position{Collection: 1, Section: 2, Item: 3}, history[0].Position)
	assert.Equal(t, 14, history[0].VisitedAt.Day(), "most recent visit is kept")
	assert.Equal(t, domain.Position{Collection: 4, Section: 5, Item: 6}, history[1].Position)

	raw, _, err := state.Get(ctx, driven.StateReadHistory)
	require.NoError(t, err)
	_, dropped, err := domain.ParseHistory(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped, "deduplicated list is persisted")
}

func TestSelectionStore_ConcurrentPrimaryNeverSecondary(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		sel, _ := newTestSelection("AMP", "BIS", "TB")
		require.True(t, sel.SetPrimaryCode(ctx, "AMP"))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			sel.SetSecondaryCodes(ctx, []string{"BIS", "TB"})
		}()
		go func() {
			defer wg.Done()
			sel.SetPrimaryCode(ctx, "BIS")
		}()
		wg.Wait()

		primary := sel.PrimaryCode(ctx)
		for _, c := range sel.SecondaryCodes(ctx) {
			assert.False(t, strings.EqualFold(c, primary), "run %d: %s is both primary and secondary", i, c)
		}
	}
}

func TestSelectionStore_HistoryResetWhenUnreadable(t *testing.T) {
	ctx := context.Background()
	sel, state := newTestSelection("AMP")
	require.NoError(t, state.Set(ctx, driven.StateReadHistory, []byte(`{"oops":true}`)))

	assert.Empty(t, sel.PositionHistory(ctx))

	raw, _, err := state.Get(ctx, driven.StateReadHistory)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSelectionStore_CurrentPosition(t *testing.T) {
	ctx := context.Background()
	sel, state := newTestSelection("AMP")

	assert.Equal(t, domain.DefaultPosition(), sel.CurrentPosition(ctx))

	pos := domain.Position{Collection: 19, Section: 23, Item: 1}
	require.NoError(t, sel.SetCurrentPosition(ctx, pos))
	assert.Equal(t, pos, sel.CurrentPosition(ctx))

	raw, _, err := state.Get(ctx, driven.StateCurrentPosition)
	require.NoError(t, err)
	assert.JSONEq(t, `[19,23,1]`, string(raw))

	assert.ErrorIs(t, sel.SetCurrentPosition(ctx, domain.Position{}), domain.ErrInvalidInput)

	require.NoError(t, state.Set(ctx, driven.StateCurrentPosition, []byte(`[0,1]`)))
	assert.Equal(t, domain.DefaultPosition(), sel.CurrentPosition(ctx))
}

func TestSelectionStore_SelectedTab(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")

	assert.Equal(t, domain.TabChoose, sel.SelectedTab(ctx))
	require.NoError(t, sel.SetSelectedTab(ctx, domain.TabHistory))
	assert.Equal(t, domain.TabHistory, sel.SelectedTab(ctx))
	assert.ErrorIs(t, sel.SetSelectedTab(ctx, domain.Tab("search")), domain.ErrInvalidInput)
}

func TestSelectionStore_Welcome(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP")
	now := time.Date(2025, 10, 7, 20, 43, 59, 0, time.UTC)
	sel.now = func() time.Time { return now }

	_, ok := sel.WelcomeAcknowledgedAt(ctx)
	assert.False(t, ok)

	require.NoError(t, sel.AcknowledgeWelcome(ctx))
	at, ok := sel.WelcomeAcknowledgedAt(ctx)
	require.True(t, ok)
	assert.True(t, now.Equal(at))
}

func TestSelectionStore_DefaultPrimaryOnlyWhenUnset(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP", "BIS")

	sel.DefaultPrimary(ctx, &domain.DocumentSet{Code: "BIS"})
	assert.Equal(t, "BIS", sel.PrimaryCode(ctx))

	sel.DefaultPrimary(ctx, &domain.DocumentSet{Code: "AMP"})
	assert.Equal(t, "BIS", sel.PrimaryCode(ctx))
}

func TestSelectionStore_Clear(t *testing.T) {
	ctx := context.Background()
	sel, _ := newTestSelection("AMP", "BIS")
	require.True(t, sel.SetPrimaryCode(ctx, "BIS"))
	sel.RecordPosition(ctx, domain.DefaultPosition())

	require.NoError(t, sel.Clear(ctx))

	assert.Equal(t, "AMP", sel.PrimaryCode(ctx))
	assert.Empty(t, sel.PositionHistory(ctx))
}
