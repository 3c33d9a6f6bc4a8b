package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/adapters/driven/config/file"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/services"
)

func withSettings(t *testing.T) *services.SettingsService {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	svc := services.NewSettingsService(store)
	withServices(t, &Services{Settings: svc})
	return svc
}

func TestSettingsCmd_ShowsDefaults(t *testing.T) {
	withSettings(t)

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Catalog]")
	assert.Contains(t, out, domain.DefaultCatalogURL)
	assert.Contains(t, out, "Data directory: ~/.jesoes/data")
	assert.Contains(t, out, "[Mirror]\n  Disabled")
	assert.Contains(t, out, "Config file:")
}

func TestSettingsCmd_Set(t *testing.T) {
	svc := withSettings(t)

	out, err := execute(t, "", "settings", "set", "Fetch.Concurrency", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "fetch.concurrency updated.")

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, got.Fetch.Concurrency)

	out, err = execute(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Concurrency: 8")
}

func TestSettingsCmd_SetRejectsInvalid(t *testing.T) {
	withSettings(t)

	_, err := execute(t, "", "settings", "set", "fetch.timeout", "soon")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "", "settings", "set", "colour", "blue")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsCmd_Keys(t *testing.T) {
	withSettings(t)

	out, err := execute(t, "", "settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "catalog.url\n")
	assert.Contains(t, out, "mirror.dir\n")
}

func TestSettingsCmd_NoService(t *testing.T) {
	withServices(t, &Services{})

	_, err := execute(t, "", "settings")

	assert.EqualError(t, err, "settings service not configured")
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "x", orDefault("x", "y"))
	assert.Equal(t, "y", orDefault("", "y"))
}
