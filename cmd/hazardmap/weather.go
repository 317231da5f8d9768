package main

import (
	"encoding/json"
	"errors"

	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newWeatherCmd(opts *rootOptions) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Run one weather point query and print the popup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			a := newApp(cfg, logger, observability.NewMetricsWith(prometheus.NewRegistry()))
			defer a.Close() //nolint:errcheck // best-effort on exit

			popup, _ := a.board.Click(cmd.Context(), lat, lon)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(popup); err != nil {
				return err
			}
			if popup.Error {
				return errors.New("weather query failed")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the query point")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the query point")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
