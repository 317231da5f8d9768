package domain

import "fmt"

// LayerState is the lifecycle position of one map layer.
type LayerState int

const (
	LayerHidden LayerState = iota
	LayerLoading
	LayerDisplayed
	// LayerLoadedOnce is reached only by the risk layer: further loads are
	// no-ops until the layer is unloaded.
	LayerLoadedOnce
)

func (s LayerState) String() string {
	switch s {
	case LayerHidden:
		return "hidden"
	case LayerLoading:
		return "loading"
	case LayerDisplayed:
		return "displayed"
	case LayerLoadedOnce:
		return "loaded_once"
	default:
		return fmt.Sprintf("LayerState(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON payloads.
func (s LayerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Filters holds the active filter controls. Each layer picks the fields its
// backend endpoint understands.
type Filters struct {
	Year     string `json:"year" yaml:"year"`
	Category string `json:"category" yaml:"category"`
	Country  string `json:"country" yaml:"country"`
}

// ArtifactKind selects the overlay primitive used to draw an artifact.
type ArtifactKind string

const (
	// KindCircleMarker has a radius in screen pixels.
	KindCircleMarker ArtifactKind = "circle_marker"
	// KindCircle has a radius in metres.
	KindCircle ArtifactKind = "circle"
)

// Style is the visual encoding of an artifact.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Artifact is one overlay primitive owned by exactly one layer registry.
type Artifact struct {
	ID     string
	Layer  Source
	Kind   ArtifactKind
	Lat    float64
	Lon    float64
	Radius float64
	Style  Style
	Icon   string
	Popup  string // sanitized HTML
}

// Popup is a transient info window anchored at a map position.
type Popup struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Content string  `json:"content"`
	Error   bool    `json:"error"`
}
