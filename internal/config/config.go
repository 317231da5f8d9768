package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	BackendURL     string
	BackendTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DisplayLocale    string
	DisplayTimezone  *time.Location
	CoordinatePolicy domain.CoordinatePolicy

	// ViewPresetPath is empty when the built-in preset is used.
	ViewPresetPath    string
	Preset            domain.ViewPreset
	NotificationLimit int

	// Kafka notification publishing is disabled when no brokers are set.
	NotifyKafkaBrokers []string
	NotifyKafkaTopic   string

	// Mapbox reverse geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	backendTimeout, err := parseDuration("BACKEND_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseCoordinatePolicy(os.Getenv("COORDINATE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid COORDINATE_POLICY: %w", err)
	}

	zone, err := time.LoadLocation(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	presetPath := os.Getenv("VIEW_PRESET")
	preset := domain.DefaultViewPreset()
	if presetPath != "" {
		preset, err = LoadPreset(presetPath)
		if err != nil {
			return nil, err
		}
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("NOTIFY_KAFKA_BROKERS"); strings.TrimSpace(v) != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		BackendURL:     strings.TrimRight(sharedcfg.EnvOrDefault("BACKEND_URL", "http://localhost:5000"), "/"),
		BackendTimeout: backendTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DisplayLocale:    sharedcfg.EnvOrDefault("DISPLAY_LOCALE", "ko-KR"),
		DisplayTimezone:  zone,
		CoordinatePolicy: policy,

		ViewPresetPath:    presetPath,
		Preset:            preset,
		NotificationLimit: parsePositiveInt("NOTIFICATION_LIMIT", 100),

		NotifyKafkaBrokers: brokers,
		NotifyKafkaTopic:   sharedcfg.EnvOrDefault("NOTIFY_KAFKA_TOPIC", "hazard-map-notifications"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),
	}

	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("BACKEND_URL must be an absolute URL")
	}
	if !render.KnownLocale(cfg.DisplayLocale) {
		return nil, fmt.Errorf("unsupported DISPLAY_LOCALE %q", cfg.DisplayLocale)
	}
	if len(cfg.NotifyKafkaBrokers) > 0 && cfg.NotifyKafkaTopic == "" {
		return nil, errors.New("NOTIFY_KAFKA_TOPIC is required when NOTIFY_KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// parseDuration reads a duration variable. allowZero admits "0s" as "no limit".
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
