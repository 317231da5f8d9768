package config

import (
	"fmt"
	"os"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// presetFile is the YAML shape of a view preset. Layers left out keep their
// default visibility.
type presetFile struct {
	Layers  map[string]bool `yaml:"layers"`
	Filters domain.Filters  `yaml:"filters"`
}

// LoadPreset reads a YAML view preset. A leading "~" expands to the home
// directory.
func LoadPreset(path string) (domain.ViewPreset, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return domain.ViewPreset{}, fmt.Errorf("expand VIEW_PRESET path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return domain.ViewPreset{}, fmt.Errorf("read view preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset decodes a YAML view preset over the default preset.
func ParsePreset(data []byte) (domain.ViewPreset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.ViewPreset{}, fmt.Errorf("parse view preset: %w", err)
	}

	preset := domain.DefaultViewPreset()
	preset.Filters = file.Filters
	for name, on := range file.Layers {
		source, ok := knownSource(name)
		if !ok {
			return domain.ViewPreset{}, fmt.Errorf("view preset: unknown layer %q", name)
		}
		preset.Layers[source] = on
	}
	return preset, nil
}

func knownSource(name string) (domain.Source, bool) {
	for _, s := range domain.Sources() {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
