package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Source identifies one hazard feed and the map layer that renders it.
type Source string

const (
	SourceEONET   Source = "eonet"
	SourceGDACS   Source = "gdacs"
	SourceDisease Source = "disease"
	SourceRisk    Source = "risk"
)

// HazardEvent is the normalized view of one EONET, GDACS or disease record.
// It lives only for the duration of one render pass.
type HazardEvent struct {
	Latitude  *float64
	Longitude *float64

	Category             string
	OriginalCategoryCode string // GDACS event code, e.g. "EQ"
	Score                *float64
	AlertLevel           string

	Title       string
	Description string
	Date        string
	Country     string
	Link        string
	SourceData  string
}

// RiskZone is a backend-aggregated cluster of events drawn as one circle.
type RiskZone struct {
	Latitude             *float64
	Longitude            *float64
	RiskScore            float64
	EventCount           int
	RadiusKM             float64
	RepresentativeEvents []string
}

// WeatherReport is the current-conditions payload of the point query.
type WeatherReport struct {
	Location    string  `json:"location"`
	Weather     string  `json:"weather"`
	Icon        string  `json:"icon"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Notification is a user-facing message raised when a layer or point query fails.
type Notification struct {
	Source  string    `json:"source"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// CoordinatePolicy decides which coordinate values count as present.
type CoordinatePolicy string

const (
	// CoordinatePolicyTruthy treats 0 like a missing value. This reproduces the
	// long-standing behavior of the map, which drops equatorial and
	// prime-meridian events.
	CoordinatePolicyTruthy CoordinatePolicy = "truthy"
	// CoordinatePolicyStrict only rejects absent or null coordinates.
	CoordinatePolicyStrict CoordinatePolicy = "strict"
)

// ParseCoordinatePolicy validates a policy name. Empty selects the truthy policy.
func ParseCoordinatePolicy(s string) (CoordinatePolicy, error) {
	switch CoordinatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CoordinatePolicyTruthy:
		return CoordinatePolicyTruthy, nil
	case CoordinatePolicyStrict:
		return CoordinatePolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown coordinate policy %q", s)
	}
}

// Accepts reports whether a record with these coordinates may be drawn.
func (p CoordinatePolicy) Accepts(lat, lon *float64) bool {
	if lat == nil || lon == nil || !finite(*lat) || !finite(*lon) {
		return false
	}
	if p == CoordinatePolicyStrict {
		return true
	}
	return *lat != 0 && *lon != 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
