// Package pointquery answers map clicks with a current-weather popup.
package pointquery

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
)

// WeatherFetcher retrieves current conditions at a coordinate.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherReport, error)
}

// PlaceNamer names a coordinate when the weather report has no location.
type PlaceNamer interface {
	PlaceName(ctx context.Context, lat, lon float64) (string, error)
}

// PopupOpener shows an info window. The surface keeps at most one open.
type PopupOpener interface {
	OpenPopup(p domain.Popup)
}

// Overlay opens a weather popup at each clicked position.
type Overlay struct {
	weather WeatherFetcher
	namer   PlaceNamer
	surface PopupOpener
	popups  render.Popups
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Overlay. namer may be nil.
func New(w WeatherFetcher, namer PlaceNamer, s PopupOpener, popups render.Popups, logger *slog.Logger, metrics *observability.Metrics) *Overlay {
	return &Overlay{
		weather: w,
		namer:   namer,
		surface: s,
		popups:  popups,
		logger:  logger,
		metrics: metrics,
	}
}

// Click fetches the weather at (lat, lon) and opens the resulting popup. A
// failed fetch opens a popup carrying the error message instead.
func (o *Overlay) Click(ctx context.Context, lat, lon float64) domain.Popup {
	popup := domain.Popup{Lat: lat, Lon: lon}

	report, err := o.weather.FetchWeather(ctx, lat, lon)
	if err != nil {
		o.logger.Warn("weather query failed", "lat", lat, "lon", lon, "error", err)
		o.metrics.PointQueries.WithLabelValues("error").Inc()
		popup.Content = o.popups.WeatherError(err.Error())
		popup.Error = true
		o.surface.OpenPopup(popup)
		return popup
	}

	popup.Content = o.popups.Weather(report, o.label(ctx, report, lat, lon))
	o.metrics.PointQueries.WithLabelValues("success").Inc()
	o.surface.OpenPopup(popup)
	return popup
}

func (o *Overlay) label(ctx context.Context, report domain.WeatherReport, lat, lon float64) string {
	if report.Location != "" || o.namer == nil {
		return ""
	}
	name, err := o.namer.PlaceName(ctx, lat, lon)
	if err != nil {
		o.logger.Debug("place name lookup failed", "lat", lat, "lon", lon, "error", err)
		return ""
	}
	return name
}
