package domain

// ViewPreset is the layer visibility and filter state applied on initial load.
type ViewPreset struct {
	Layers  map[Source]bool `yaml:"layers" json:"layers"`
	Filters Filters         `yaml:"filters" json:"filters"`
}

// DefaultViewPreset shows the three hazard feeds and leaves risk zones off.
func DefaultViewPreset() ViewPreset {
	return ViewPreset{
		Layers: map[Source]bool{
			SourceEONET:   true,
			SourceGDACS:   true,
			SourceDisease: true,
			SourceRisk:    false,
		},
	}
}

// Sources lists every layer in drawing order.
func Sources() []Source {
	return []Source{SourceEONET, SourceGDACS, SourceDisease, SourceRisk}
}
