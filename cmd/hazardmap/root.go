package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/couchcryptid/hazard-map-overlay/internal/config"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	preset  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "hazardmap",
		Short: "Hazard feed map overlay",
		Long: `hazardmap draws EONET natural events, GDACS disaster alerts, disease
outbreaks and aggregated risk zones from the hazard backend onto a map
surface, and answers map clicks with current weather.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&opts.preset, "preset", "", "YAML view preset (overrides VIEW_PRESET)")

	root.AddCommand(
		newServeCmd(opts),
		newSnapshotCmd(opts),
		newWeatherCmd(opts),
		newValidateCmd(opts),
		newMockBackendCmd(opts),
	)
	return root
}

// loadEnvFile applies a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand env file path: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// loadConfig reads the environment and applies the --preset override.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.preset != "" {
		preset, err := config.LoadPreset(opts.preset)
		if err != nil {
			return nil, err
		}
		cfg.ViewPresetPath = opts.preset
		cfg.Preset = preset
	}
	return cfg, nil
}
