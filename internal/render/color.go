// Package render resolves the visual encoding of hazard records and builds the
// HTML shown in their popups.
package render

import "strings"

// EONET palette, most severe first.
const (
	EONETDeepRed   = "#ff0000"
	EONETOrangeRed = "#ff6600"
	EONETAmber     = "#ffcc00"
	EONETYellowGrn = "#99cc00"
	EONETGreen     = "#33cc33"
	EONETGray      = "#999999"
)

// GDACS alert palette.
const (
	GDACSRed    = "#FF0000"
	GDACSOrange = "#FFA500"
	GDACSGreen  = "#00C800"
	GDACSGray   = "#808080"
)

// Risk zone palette.
const (
	RiskDeepRed    = "#800000"
	RiskRed        = "#FF0000"
	RiskDarkOrange = "#FF8C00"
	RiskGold       = "#FFD700"
)

// EONETColor maps a severity score to a fill color. Bucket lower bounds are
// inclusive; a nil or non-positive score is unscored and renders gray.
func EONETColor(score *float64) string {
	if score == nil {
		return EONETGray
	}
	switch s := *score; {
	case s >= 90:
		return EONETDeepRed
	case s >= 70:
		return EONETOrangeRed
	case s >= 50:
		return EONETAmber
	case s >= 30:
		return EONETYellowGrn
	case s > 0:
		return EONETGreen
	default:
		return EONETGray
	}
}

// GDACSColor maps an alert level to a fill color, case-insensitively.
func GDACSColor(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "red":
		return GDACSRed
	case "orange":
		return GDACSOrange
	case "green":
		return GDACSGreen
	default:
		return GDACSGray
	}
}

// RiskColor maps an aggregated risk score to a circle color. Bounds are exclusive.
func RiskColor(score float64) string {
	switch {
	case score > 300:
		return RiskDeepRed
	case score > 150:
		return RiskRed
	case score > 80:
		return RiskDarkOrange
	default:
		return RiskGold
	}
}
