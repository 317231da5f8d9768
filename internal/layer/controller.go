// Package layer owns the map layers: their registries, lifecycle state and
// the triggers that reload them.
package layer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
)

// Fetcher retrieves the record array of a backend endpoint.
type Fetcher interface {
	FetchArray(ctx context.Context, endpoint string, params url.Values, label string) ([]json.RawMessage, error)
}

// Profile is what distinguishes one hazard layer from another.
type Profile struct {
	Source   domain.Source
	Endpoint string
	Label    string
	// Params builds the query from the active filters. Nil sends none.
	Params func(domain.Filters) url.Values
	// Render builds the artifact for an event whose coordinates were accepted.
	Render func(domain.HazardEvent) domain.Artifact
	// ReportSkipped adds received and skipped counts to the render log.
	ReportSkipped bool
}

// Report summarizes one reload.
type Report struct {
	Source     domain.Source `json:"source"`
	Generation uint64        `json:"generation"`
	Received   int           `json:"received"`
	Rendered   int           `json:"rendered"`
	Skipped    int           `json:"skipped"`
	Stale      bool          `json:"stale,omitempty"`
	Err        error         `json:"-"`
}

// Controller drives one hazard layer through Hidden, Loading and Displayed.
type Controller struct {
	profile  Profile
	fetcher  Fetcher
	registry *Registry
	notifier Notifier
	policy   domain.CoordinatePolicy
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu         sync.Mutex
	visible    bool
	filters    domain.Filters
	state      domain.LayerState
	generation uint64
}

// NewController creates a hidden layer for profile p.
func NewController(p Profile, f Fetcher, s Surface, n Notifier, policy domain.CoordinatePolicy, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		profile:  p,
		fetcher:  f,
		registry: NewRegistry(s),
		notifier: n,
		policy:   policy,
		logger:   logger.With("layer", string(p.Source)),
		metrics:  metrics,
		state:    domain.LayerHidden,
	}
}

// Source returns the layer's source.
func (c *Controller) Source() domain.Source {
	return c.profile.Source
}

// SetVisible sets the toggle. It takes effect on the next Reload.
func (c *Controller) SetVisible(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = on
}

// Visible reports the toggle.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// SetFilters stores the filters and reports whether the query they produce
// differs from the previous one.
func (c *Controller) SetFilters(f domain.Filters) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.params(c.filters).Encode()
	c.filters = f
	return c.params(f).Encode() != before
}

// State returns the lifecycle state.
func (c *Controller) State() domain.LayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Len returns the number of artifacts drawn.
func (c *Controller) Len() int {
	return c.registry.Len()
}

// Artifacts returns the artifacts drawn.
func (c *Controller) Artifacts() []domain.Artifact {
	return c.registry.Artifacts()
}

// Reload clears the layer and, when visible, refetches and redraws it. Each
// call takes a new generation; a fetch that completes after a newer reload
// started is discarded.
func (c *Controller) Reload(ctx context.Context) Report {
	src := string(c.profile.Source)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	report := Report{Source: c.profile.Source, Generation: gen}
	c.registry.Clear()
	c.metrics.LayerArtifacts.WithLabelValues(src).Set(0)

	if !c.visible {
		c.state = domain.LayerHidden
		c.mu.Unlock()
		c.metrics.Reloads.WithLabelValues(src, "hidden").Inc()
		return report
	}
	c.state = domain.LayerLoading
	params := c.params(c.filters)
	c.mu.Unlock()

	records, err := c.fetcher.FetchArray(ctx, c.profile.Endpoint, params, c.profile.Label)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		report.Stale = true
		c.logger.Debug("discarding stale reload", "generation", gen)
		c.metrics.Reloads.WithLabelValues(src, "stale").Inc()
		return report
	}
	if err != nil {
		c.state = domain.LayerHidden
		c.mu.Unlock()
		report.Err = err
		c.logger.Error("layer reload failed", "generation", gen, "error", err)
		c.metrics.Reloads.WithLabelValues(src, "error").Inc()
		c.notify(ctx, err.Error())
		return report
	}

	report.Received = len(records)
	for _, raw := range records {
		event, err := domain.ParseHazardEvent(raw)
		if err != nil || !c.policy.Accepts(event.Latitude, event.Longitude) {
			report.Skipped++
			continue
		}
		a := c.profile.Render(event)
		a.Layer = c.profile.Source
		c.registry.Add(a)
		report.Rendered++
	}
	c.state = domain.LayerDisplayed
	c.mu.Unlock()

	c.metrics.Reloads.WithLabelValues(src, "displayed").Inc()
	c.metrics.RecordsReceived.WithLabelValues(src).Add(float64(report.Received))
	c.metrics.RecordsSkipped.WithLabelValues(src).Add(float64(report.Skipped))
	c.metrics.LayerArtifacts.WithLabelValues(src).Set(float64(report.Rendered))

	attrs := []any{"generation", gen, "rendered", report.Rendered}
	if c.profile.ReportSkipped {
		attrs = append(attrs, "received", report.Received, "skipped", report.Skipped)
	}
	c.logger.Info("layer rendered", attrs...)
	return report
}

func (c *Controller) params(f domain.Filters) url.Values {
	if c.profile.Params == nil {
		return url.Values{}
	}
	return nonEmpty(c.profile.Params(f))
}

func (c *Controller) notify(ctx context.Context, msg string) {
	c.metrics.Notifications.WithLabelValues(c.profile.Label).Inc()
	c.notifier.Notify(ctx, domain.Notification{
		Source:  c.profile.Label,
		Message: msg,
		At:      domain.Now(),
	})
}

func nonEmpty(v url.Values) url.Values {
	out := url.Values{}
	for key, values := range v {
		for _, s := range values {
			if s != "" {
				out.Add(key, s)
			}
		}
	}
	return out
}
