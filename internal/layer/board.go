package layer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownLayer is returned for a layer name the board does not own.
var ErrUnknownLayer = errors.New("unknown layer")

// PointQuery answers a map click with a popup.
type PointQuery interface {
	Click(ctx context.Context, lat, lon float64) domain.Popup
}

// Status describes one layer for the trigger API.
type Status struct {
	Source    domain.Source     `json:"source"`
	Visible   bool              `json:"visible"`
	State     domain.LayerState `json:"state"`
	Artifacts int               `json:"artifacts"`
}

// Board is the set of named trigger callbacks the UI binds to. Every
// callback tolerates missing collaborators and unknown names.
type Board struct {
	controllers map[domain.Source]*Controller
	risk        *RiskLayer
	query       PointQuery
	logger      *slog.Logger

	mu      sync.Mutex
	filters domain.Filters
	ready   atomic.Bool
}

// NewBoard wires the hazard controllers, the risk layer and the point query.
// Any of them may be nil.
func NewBoard(controllers []*Controller, risk *RiskLayer, query PointQuery, logger *slog.Logger) *Board {
	b := &Board{
		controllers: make(map[domain.Source]*Controller, len(controllers)),
		risk:        risk,
		query:       query,
		logger:      logger,
	}
	for _, c := range controllers {
		if c != nil {
			b.controllers[c.Source()] = c
		}
	}
	return b
}

// ParseSource resolves a layer name, accepting the "toggle-" prefix of the
// checkbox ids.
func ParseSource(name string) (domain.Source, error) {
	s := domain.Source(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "toggle-"))
	for _, known := range domain.Sources() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// Toggle shows or hides a layer. Hiding clears the layer without fetching.
func (b *Board) Toggle(ctx context.Context, source domain.Source, on bool) (Report, error) {
	if source == domain.SourceRisk && b.risk != nil {
		if !on {
			b.risk.Unload()
			return Report{Source: domain.SourceRisk}, nil
		}
		return b.risk.Load(ctx), nil
	}

	c, ok := b.controllers[source]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownLayer, source)
	}
	c.SetVisible(on)
	return c.Reload(ctx), nil
}

// SetFilters applies new filter values and reloads every visible layer whose
// query they change.
func (b *Board) SetFilters(ctx context.Context, f domain.Filters) []Report {
	b.mu.Lock()
	b.filters = f
	b.mu.Unlock()

	var changed []*Controller
	for _, source := range domain.Sources() {
		c, ok := b.controllers[source]
		if !ok {
			continue
		}
		if c.SetFilters(f) && c.Visible() {
			changed = append(changed, c)
		}
	}
	return b.reloadAll(ctx, changed, false)
}

// Filters returns the active filter values.
func (b *Board) Filters() domain.Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// Init applies a view preset and loads every layer concurrently. The board
// reports ready once it returns.
func (b *Board) Init(ctx context.Context, preset domain.ViewPreset) []Report {
	b.mu.Lock()
	b.filters = preset.Filters
	b.mu.Unlock()

	var all []*Controller
	for _, source := range domain.Sources() {
		c, ok := b.controllers[source]
		if !ok {
			continue
		}
		c.SetFilters(preset.Filters)
		c.SetVisible(preset.Layers[source])
		all = append(all, c)
	}

	reports := b.reloadAll(ctx, all, preset.Layers[domain.SourceRisk])
	b.ready.Store(true)
	b.logger.Info("initial load complete", "layers", len(reports))
	return reports
}

// reloadAll reloads controllers concurrently, plus the risk layer when
// withRisk is set. Reports keep the order of controllers.
func (b *Board) reloadAll(ctx context.Context, controllers []*Controller, withRisk bool) []Report {
	n := len(controllers)
	if withRisk && b.risk != nil {
		n++
	}
	reports := make([]Report, n)

	var g errgroup.Group
	for i, c := range controllers {
		g.Go(func() error {
			reports[i] = c.Reload(ctx)
			return nil
		})
	}
	if withRisk && b.risk != nil {
		g.Go(func() error {
			reports[n-1] = b.risk.Load(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// Click runs the point query at a map position.
func (b *Board) Click(ctx context.Context, lat, lon float64) (domain.Popup, bool) {
	if b.query == nil {
		return domain.Popup{}, false
	}
	return b.query.Click(ctx, lat, lon), true
}

// Layers returns the status of every layer in drawing order.
func (b *Board) Layers() []Status {
	var out []Status
	for _, source := range domain.Sources() {
		if c, ok := b.controllers[source]; ok {
			out = append(out, Status{Source: source, Visible: c.Visible(), State: c.State(), Artifacts: c.Len()})
		}
	}
	if b.risk != nil {
		out = append(out, Status{
			Source:    domain.SourceRisk,
			Visible:   b.risk.Loaded(),
			State:     b.risk.State(),
			Artifacts: b.risk.Len(),
		})
	}
	return out
}

// Artifacts returns every drawn artifact in layer drawing order.
func (b *Board) Artifacts() []domain.Artifact {
	var out []domain.Artifact
	for _, source := range domain.Sources() {
		if c, ok := b.controllers[source]; ok {
			out = append(out, c.Artifacts()...)
		}
	}
	if b.risk != nil {
		out = append(out, b.risk.Artifacts()...)
	}
	return out
}

// CheckReadiness returns nil once the initial load has completed.
func (b *Board) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("initial layer load has not completed")
	}
	return nil
}
