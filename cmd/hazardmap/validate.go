package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/couchcryptid/hazard-map-overlay/internal/adapter/backend"
	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/layer"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// phase tracks pass/fail for a validation phase. Warnings never fail it.
type phase struct {
	name     string
	records  int
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// feedChecker is the subset of the backend client the validator calls.
type feedChecker interface {
	layer.Fetcher
	FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherReport, error)
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every backend feed against the shapes the layers draw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger, observability.NewMetricsWith(prometheus.NewRegistry()))

			phases := runValidation(cmd.Context(), client, cfg.CoordinatePolicy, cfg.Preset.Filters, lat, lon)
			if !reportPhases(cmd.OutOrStdout(), phases) {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 37.5665, "latitude of the weather probe")
	cmd.Flags().Float64Var(&lon, "lon", 126.9780, "longitude of the weather probe")
	return cmd
}

func runValidation(ctx context.Context, c feedChecker, policy domain.CoordinatePolicy, filters domain.Filters, lat, lon float64) []*phase {
	popups := render.Popups{}
	phases := make([]*phase, 0, 5)
	for _, p := range []layer.Profile{layer.EONETProfile(popups), layer.GDACSProfile(popups), layer.DiseaseProfile(popups)} {
		phases = append(phases, validateHazardFeed(ctx, c, p, policy, filters))
	}
	phases = append(phases, validateRiskFeed(ctx, c, policy), validateWeather(ctx, c, lat, lon))
	return phases
}

func validateHazardFeed(ctx context.Context, c layer.Fetcher, p layer.Profile, policy domain.CoordinatePolicy, filters domain.Filters) *phase {
	ph := &phase{name: p.Label + " feed"}
	params := url.Values{}
	if p.Params != nil {
		params = p.Params(filters)
	}
	records, err := c.FetchArray(ctx, p.Endpoint, params, p.Label)
	if err != nil {
		ph.errorf("%v", err)
		return ph
	}
	ph.records = len(records)
	for i, raw := range records {
		ev, err := domain.ParseHazardEvent(raw)
		if err != nil {
			ph.errorf("record %d: %v", i, err)
			continue
		}
		if !policy.Accepts(ev.Latitude, ev.Longitude) {
			ph.warnf("record %d (%q): no usable coordinates, not drawn", i, ev.Title)
		}
		if ev.Title == "" {
			ph.warnf("record %d: missing title", i)
		}
	}
	return ph
}

func validateRiskFeed(ctx context.Context, c layer.Fetcher, policy domain.CoordinatePolicy) *phase {
	ph := &phase{name: layer.LabelRisk + " feed"}
	records, err := c.FetchArray(ctx, layer.EndpointRisk, nil, layer.LabelRisk)
	if err != nil {
		ph.errorf("%v", err)
		return ph
	}
	ph.records = len(records)
	for i, raw := range records {
		z, err := domain.ParseRiskZone(raw)
		if err != nil {
			ph.errorf("zone %d: %v", i, err)
			continue
		}
		if !policy.Accepts(z.Latitude, z.Longitude) {
			ph.warnf("zone %d: no usable coordinates, not drawn", i)
		}
		if z.RadiusKM <= 0 {
			ph.errorf("zone %d: radius_km must be positive, got %v", i, z.RadiusKM)
		}
		if z.RiskScore < 0 {
			ph.errorf("zone %d: negative risk_score %v", i, z.RiskScore)
		}
	}
	return ph
}

func validateWeather(ctx context.Context, c feedChecker, lat, lon float64) *phase {
	ph := &phase{name: backend.WeatherLabel + " point query"}
	report, err := c.FetchWeather(ctx, lat, lon)
	if err != nil {
		ph.errorf("%v", err)
		return ph
	}
	ph.records = 1
	if report.Weather == "" {
		ph.warnf("empty weather description at %.4f,%.4f", lat, lon)
	}
	if report.Humidity < 0 || report.Humidity > 100 {
		ph.errorf("humidity out of range: %v", report.Humidity)
	}
	return ph
}

// reportPhases prints a summary table then details, and reports whether every
// phase passed.
func reportPhases(w io.Writer, phases []*phase) bool {
	fmt.Fprintln(w, "=== Hazard Feed Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %4d records  %s\n", p.name, p.records, status)
	}

	for _, p := range phases {
		if p.passed() && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [E%d] %s\n", i+1, e)
		}
		for i, e := range p.warnings {
			fmt.Fprintf(w, "  [W%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
	return allPassed
}

var _ feedChecker = (*backend.Client)(nil)
