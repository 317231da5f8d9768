package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the preset layers once and write them as GeoJSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			a := newApp(cfg, logger, observability.NewMetricsWith(prometheus.NewRegistry()))
			defer a.Close() //nolint:errcheck // best-effort on exit

			reports := a.board.Init(cmd.Context(), cfg.Preset)

			path, err := homedir.Expand(output)
			if err != nil {
				return fmt.Errorf("expand output path: %w", err)
			}
			data, err := json.MarshalIndent(a.surface.FeatureCollection(nil), "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}

			failed := 0
			for _, r := range reports {
				if r.Err != nil {
					failed++
					cmd.PrintErrf("%s: %v\n", r.Source, r.Err)
					continue
				}
				cmd.Printf("%s: %d drawn, %d skipped\n", r.Source, r.Rendered, r.Skipped)
			}
			cmd.Printf("snapshot of %d artifacts saved to %s\n", a.surface.Len(), path)

			if failed > 0 {
				return fmt.Errorf("%d layer(s) failed to load", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "hazard-map.geojson", "output GeoJSON file path")
	return cmd
}
