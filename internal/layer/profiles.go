package layer

import (
	"net/url"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
)

// Backend endpoints of the hazard layers.
const (
	EndpointEONET   = "/api/eonet"
	EndpointGDACS   = "/api/gdacs"
	EndpointDisease = "/api/disease"
	EndpointRisk    = "/api/risk-analysis"
)

// Source labels used in notifications and error messages.
const (
	LabelEONET   = "EONET"
	LabelGDACS   = "GDACS"
	LabelDisease = "Disease"
	LabelRisk    = "Risk analysis"
)

const (
	eonetRadius   = 8
	gdacsRadius   = 7
	diseaseRadius = 6

	diseaseColor = "#8A2BE2"
)

// EONETProfile renders natural events colored by severity score. The year
// and category filters are passed to the backend.
func EONETProfile(p render.Popups) Profile {
	return Profile{
		Source:   domain.SourceEONET,
		Endpoint: EndpointEONET,
		Label:    LabelEONET,
		Params: func(f domain.Filters) url.Values {
			return url.Values{"year": {f.Year}, "category": {f.Category}}
		},
		Render: func(e domain.HazardEvent) domain.Artifact {
			icon := render.IconFor(e.Category)
			return domain.Artifact{
				Kind:   domain.KindCircleMarker,
				Lat:    *e.Latitude,
				Lon:    *e.Longitude,
				Radius: eonetRadius,
				Style: domain.Style{
					Color:       "#000",
					FillColor:   render.EONETColor(e.Score),
					Weight:      1,
					FillOpacity: 0.8,
				},
				Icon:  icon,
				Popup: p.EONET(e, icon),
			}
		},
	}
}

// GDACSProfile renders disaster alerts colored by alert level.
func GDACSProfile(p render.Popups) Profile {
	return Profile{
		Source:   domain.SourceGDACS,
		Endpoint: EndpointGDACS,
		Label:    LabelGDACS,
		Render: func(e domain.HazardEvent) domain.Artifact {
			icon := render.IconFor(e.Category, e.OriginalCategoryCode, "Disaster")
			return domain.Artifact{
				Kind:   domain.KindCircleMarker,
				Lat:    *e.Latitude,
				Lon:    *e.Longitude,
				Radius: gdacsRadius,
				Style: domain.Style{
					Color:       "#FFFFFF",
					FillColor:   render.GDACSColor(e.AlertLevel),
					Weight:      1.5,
					FillOpacity: 0.85,
				},
				Icon:  icon,
				Popup: p.GDACS(e, icon),
			}
		},
	}
}

// DiseaseProfile renders outbreak reports in a single color. The country
// filter is passed to the backend.
func DiseaseProfile(p render.Popups) Profile {
	return Profile{
		Source:   domain.SourceDisease,
		Endpoint: EndpointDisease,
		Label:    LabelDisease,
		Params: func(f domain.Filters) url.Values {
			return url.Values{"country": {f.Country}}
		},
		Render: func(e domain.HazardEvent) domain.Artifact {
			return domain.Artifact{
				Kind:   domain.KindCircleMarker,
				Lat:    *e.Latitude,
				Lon:    *e.Longitude,
				Radius: diseaseRadius,
				Style: domain.Style{
					Color:       "#FFF",
					FillColor:   diseaseColor,
					Weight:      1,
					FillOpacity: 0.7,
				},
				Icon:  render.DiseaseIcon,
				Popup: p.Disease(e),
			}
		},
		ReportSkipped: true,
	}
}
