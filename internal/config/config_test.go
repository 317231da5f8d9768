package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Zero(t, cfg.BackendTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "ko-KR", cfg.DisplayLocale)
	assert.Equal(t, time.UTC, cfg.DisplayTimezone)
	assert.Equal(t, domain.CoordinatePolicyTruthy, cfg.CoordinatePolicy)
	assert.Empty(t, cfg.ViewPresetPath)
	assert.Equal(t, domain.DefaultViewPreset(), cfg.Preset)
	assert.Equal(t, 100, cfg.NotificationLimit)
	assert.Empty(t, cfg.NotifyKafkaBrokers)
	assert.Equal(t, "hazard-map-notifications", cfg.NotifyKafkaTopic)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://hazards.example.com/")
	t.Setenv("BACKEND_TIMEOUT", "15s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DISPLAY_LOCALE", "en-US")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Seoul")
	t.Setenv("COORDINATE_POLICY", "strict")
	t.Setenv("NOTIFICATION_LIMIT", "20")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("NOTIFY_KAFKA_TOPIC", "custom-notifications")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hazards.example.com", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "en-US", cfg.DisplayLocale)
	assert.Equal(t, "Asia/Seoul", cfg.DisplayTimezone.String())
	assert.Equal(t, domain.CoordinatePolicyStrict, cfg.CoordinatePolicy)
	assert.Equal(t, 20, cfg.NotificationLimit)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.NotifyKafkaBrokers)
	assert.Equal(t, "custom-notifications", cfg.NotifyKafkaTopic)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBackendTimeout(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_TIMEOUT")
}

func TestLoad_InvalidBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "localhost:5000/api")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoad_InvalidCoordinatePolicy(t *testing.T) {
	t.Setenv("COORDINATE_POLICY", "lenient")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COORDINATE_POLICY")
}

func TestLoad_UnsupportedLocale(t *testing.T) {
	t.Setenv("DISPLAY_LOCALE", "xx-YY")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_LOCALE")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_TIMEZONE")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_ViewPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layers:\n  risk: true\n  gdacs: false\nfilters:\n  year: \"2024\"\n  category: Wildfires\n"), 0o600))
	t.Setenv("VIEW_PRESET", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ViewPresetPath)
	assert.True(t, cfg.Preset.Layers[domain.SourceRisk])
	assert.False(t, cfg.Preset.Layers[domain.SourceGDACS])
	assert.True(t, cfg.Preset.Layers[domain.SourceEONET], "unlisted layers keep their default")
	assert.Equal(t, domain.Filters{Year: "2024", Category: "Wildfires"}, cfg.Preset.Filters)
}

func TestLoad_MissingViewPreset(t *testing.T) {
	t.Setenv("VIEW_PRESET", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read view preset")
}

func TestParsePreset_UnknownLayer(t *testing.T) {
	_, err := ParsePreset([]byte("layers:\n  toggle-volcano: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toggle-volcano")
}

func TestParsePreset_Empty(t *testing.T) {
	preset, err := ParsePreset(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultViewPreset(), preset)
}
