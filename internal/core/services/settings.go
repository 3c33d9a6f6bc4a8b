package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCatalogURL    = "catalog.url"
	keyDataDir       = "storage.data_dir"
	keySchemaVersion = "storage.schema_version"
	keyConcurrency   = "fetch.concurrency"
	keyTimeout       = "fetch.timeout"
	keyRate          = "fetch.rate_per_second"
	keyBurst         = "fetch.burst"
	keyUserAgent     = "fetch.user_agent"
	keyMirrorDir     = "mirror.dir"
	keyVerbose       = "log.verbose"
)

// settingKeys lists every recognised key in display order.
var settingKeys = []string{
	keyCatalogURL,
	keyDataDir,
	keySchemaVersion,
	keyConcurrency,
	keyTimeout,
	keyRate,
	keyBurst,
	keyUserAgent,
	keyMirrorDir,
	keyVerbose,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to their defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Catalog: domain.CatalogSettings{
			URL: s.getString(keyCatalogURL, defaults.Catalog.URL),
		},
		Storage: domain.StorageSettings{
			DataDir:       s.configStore.GetString(keyDataDir), // Empty selects the default location
			SchemaVersion: s.getInt(keySchemaVersion, defaults.Storage.SchemaVersion),
		},
		Fetch: domain.FetchSettings{
			Concurrency:   s.getInt(keyConcurrency, defaults.Fetch.Concurrency),
			Timeout:       s.getDuration(keyTimeout, defaults.Fetch.Timeout),
			RatePerSecond: s.getFloat(keyRate, defaults.Fetch.RatePerSecond),
			Burst:         s.getInt(keyBurst, defaults.Fetch.Burst),
			UserAgent:     s.getString(keyUserAgent, defaults.Fetch.UserAgent),
		},
		Mirror: domain.MirrorSettings{
			Dir: s.configStore.GetString(keyMirrorDir),
		},
		Verbose: s.getBool(keyVerbose, defaults.Verbose),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyCatalogURL, settings.Catalog.URL},
		{keyDataDir, optional(settings.Storage.DataDir)},
		{keySchemaVersion, settings.Storage.SchemaVersion},
		{keyConcurrency, settings.Fetch.Concurrency},
		{keyTimeout, settings.Fetch.Timeout.String()},
		{keyRate, settings.Fetch.RatePerSecond},
		{keyBurst, settings.Fetch.Burst},
		{keyUserAgent, settings.Fetch.UserAgent},
		{keyMirrorDir, optional(settings.Mirror.Dir)},
		{keyVerbose, settings.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// Set parses value for key, validates the resulting settings and saves them.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case keyCatalogURL:
		settings.Catalog.URL = value
	case keyDataDir:
		settings.Storage.DataDir = value
	case keySchemaVersion:
		settings.Storage.SchemaVersion, err = strconv.Atoi(value)
	case keyConcurrency:
		settings.Fetch.Concurrency, err = strconv.Atoi(value)
	case keyTimeout:
		settings.Fetch.Timeout, err = time.ParseDuration(value)
	case keyRate:
		settings.Fetch.RatePerSecond, err = strconv.ParseFloat(value, 64)
	case keyBurst:
		settings.Fetch.Burst, err = strconv.Atoi(value)
	case keyUserAgent:
		settings.Fetch.UserAgent = value
	case keyMirrorDir:
		settings.Mirror.Dir = value
	case keyVerbose:
		settings.Verbose, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	return s.Save(settings)
}

// Keys lists the recognised setting keys.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns where settings are stored.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// optional maps an empty string to nil so the key is removed rather than
// stored blank.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
