package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/couchcryptid/hazard-map-overlay/internal/adapter/backend"
	mapsurface "github.com/couchcryptid/hazard-map-overlay/internal/adapter/geojson"
	kafkaadapter "github.com/couchcryptid/hazard-map-overlay/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-map-overlay/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-map-overlay/internal/config"
	"github.com/couchcryptid/hazard-map-overlay/internal/layer"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/couchcryptid/hazard-map-overlay/internal/pointquery"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
)

// app is the wired overlay: one surface, one backend client and the board of
// layers drawing onto it.
type app struct {
	surface *mapsurface.Surface
	client  *backend.Client
	board   *layer.Board
	closers []io.Closer
}

func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *app {
	surface := mapsurface.NewSurface(cfg.NotificationLimit, logger)
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger, metrics)
	popups := render.Popups{Dates: render.NewDateFormatter(cfg.DisplayLocale, cfg.DisplayTimezone)}

	a := &app{surface: surface, client: client}

	notifiers := layer.Notifiers{surface, layer.LogNotifier{Logger: logger}}
	if len(cfg.NotifyKafkaBrokers) > 0 {
		n := kafkaadapter.NewNotifier(cfg.NotifyKafkaBrokers, cfg.NotifyKafkaTopic, logger)
		notifiers = append(notifiers, n)
		a.closers = append(a.closers, n)
		logger.Info("kafka notifications enabled", "brokers", cfg.NotifyKafkaBrokers, "topic", cfg.NotifyKafkaTopic)
	}

	// Place names are feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var namer pointquery.PlaceNamer
	if cfg.MapboxEnabled {
		namer = mapbox.NewCachedNamer(mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger), cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox place names enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox place names disabled")
	}

	controllers := []*layer.Controller{
		layer.NewController(layer.EONETProfile(popups), client, surface, notifiers, cfg.CoordinatePolicy, logger, metrics),
		layer.NewController(layer.GDACSProfile(popups), client, surface, notifiers, cfg.CoordinatePolicy, logger, metrics),
		layer.NewController(layer.DiseaseProfile(popups), client, surface, notifiers, cfg.CoordinatePolicy, logger, metrics),
	}
	risk := layer.NewRiskLayer(client, surface, notifiers, cfg.CoordinatePolicy, popups, logger, metrics)
	overlay := pointquery.New(client, namer, surface, popups, logger, metrics)

	a.board = layer.NewBoard(controllers, risk, overlay, logger)
	return a
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
