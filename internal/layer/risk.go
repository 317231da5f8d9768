package layer

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
	"golang.org/x/sync/singleflight"
)

// riskRadiusScale shrinks backend cluster radii so neighbouring zones overlap less.
const riskRadiusScale = 0.8

// RiskLayer draws backend risk zones. It loads at most once: concurrent Load
// calls share one fetch, and after a successful load further calls are no-ops
// until Unload.
type RiskLayer struct {
	fetcher  Fetcher
	registry *Registry
	notifier Notifier
	policy   domain.CoordinatePolicy
	popups   render.Popups
	logger   *slog.Logger
	metrics  *observability.Metrics

	group singleflight.Group

	mu         sync.Mutex
	state      domain.LayerState
	generation uint64
}

// NewRiskLayer creates an unloaded risk layer.
func NewRiskLayer(f Fetcher, s Surface, n Notifier, policy domain.CoordinatePolicy, popups render.Popups, logger *slog.Logger, metrics *observability.Metrics) *RiskLayer {
	return &RiskLayer{
		fetcher:  f,
		registry: NewRegistry(s),
		notifier: n,
		policy:   policy,
		popups:   popups,
		logger:   logger.With("layer", string(domain.SourceRisk)),
		metrics:  metrics,
		state:    domain.LayerHidden,
	}
}

// Load fetches and draws the risk zones unless they are already loaded.
func (r *RiskLayer) Load(ctx context.Context) Report {
	r.mu.Lock()
	gen := r.generation
	if r.state == domain.LayerLoadedOnce {
		r.mu.Unlock()
		r.metrics.Reloads.WithLabelValues(string(domain.SourceRisk), "noop").Inc()
		return Report{Source: domain.SourceRisk, Generation: gen, Rendered: r.registry.Len()}
	}
	r.mu.Unlock()

	v, _, _ := r.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		return r.load(ctx, gen), nil
	})
	return v.(Report)
}

func (r *RiskLayer) load(ctx context.Context, gen uint64) Report {
	src := string(domain.SourceRisk)
	report := Report{Source: domain.SourceRisk, Generation: gen}

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		report.Stale = true
		return report
	}
	if r.state == domain.LayerLoadedOnce {
		r.mu.Unlock()
		report.Rendered = r.registry.Len()
		return report
	}
	r.state = domain.LayerLoading
	r.mu.Unlock()

	records, err := r.fetcher.FetchArray(ctx, EndpointRisk, nil, LabelRisk)

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		report.Stale = true
		r.logger.Debug("discarding risk load after unload", "generation", gen)
		r.metrics.Reloads.WithLabelValues(src, "stale").Inc()
		return report
	}
	if err != nil {
		r.state = domain.LayerHidden
		r.mu.Unlock()
		report.Err = err
		r.logger.Error("risk load failed", "error", err)
		r.metrics.Reloads.WithLabelValues(src, "error").Inc()
		r.metrics.Notifications.WithLabelValues(LabelRisk).Inc()
		r.notifier.Notify(ctx, domain.Notification{Source: LabelRisk, Message: err.Error(), At: domain.Now()})
		return report
	}

	report.Received = len(records)
	r.registry.Clear()
	for _, raw := range records {
		zone, err := domain.ParseRiskZone(raw)
		if err != nil || !r.policy.Accepts(zone.Latitude, zone.Longitude) {
			report.Skipped++
			continue
		}
		r.registry.Add(r.render(zone))
		report.Rendered++
	}
	r.state = domain.LayerLoadedOnce
	r.mu.Unlock()

	r.metrics.Reloads.WithLabelValues(src, "displayed").Inc()
	r.metrics.RecordsReceived.WithLabelValues(src).Add(float64(report.Received))
	r.metrics.RecordsSkipped.WithLabelValues(src).Add(float64(report.Skipped))
	r.metrics.LayerArtifacts.WithLabelValues(src).Set(float64(report.Rendered))
	r.logger.Info("risk zones rendered", "rendered", report.Rendered, "received", report.Received)
	return report
}

// Unload erases the zones, resets the load guard and invalidates any load
// still in flight.
func (r *RiskLayer) Unload() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.state = domain.LayerHidden
	n := r.registry.Clear()
	r.metrics.LayerArtifacts.WithLabelValues(string(domain.SourceRisk)).Set(0)
	return n
}

// State returns the lifecycle state.
func (r *RiskLayer) State() domain.LayerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loaded reports whether the zones are drawn.
func (r *RiskLayer) Loaded() bool {
	return r.State() == domain.LayerLoadedOnce
}

// Len returns the number of zones drawn.
func (r *RiskLayer) Len() int {
	return r.registry.Len()
}

// Artifacts returns the zones drawn.
func (r *RiskLayer) Artifacts() []domain.Artifact {
	return r.registry.Artifacts()
}

func (r *RiskLayer) render(z domain.RiskZone) domain.Artifact {
	color := render.RiskColor(z.RiskScore)
	return domain.Artifact{
		Layer:  domain.SourceRisk,
		Kind:   domain.KindCircle,
		Lat:    *z.Latitude,
		Lon:    *z.Longitude,
		Radius: z.RadiusKM * 1000 * riskRadiusScale,
		Style: domain.Style{
			Color:       color,
			FillColor:   color,
			Weight:      1,
			FillOpacity: 0.4,
		},
		Icon:  render.RiskIcon,
		Popup: r.popups.Risk(z),
	}
}
