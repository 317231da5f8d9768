package render

const (
	// DefaultIcon is the last entry of every fallback chain.
	DefaultIcon = "❗"
	// DisasterIcon is the GDACS source-level default.
	DisasterIcon = "📢"
	// DiseaseIcon marks every disease outbreak.
	DiseaseIcon = "🦠"
	// RiskIcon heads risk zone popups.
	RiskIcon = "🔥"
)

var categoryIcons = map[string]string{
	"Volcanoes":            "🌋",
	"Earthquakes":          "🌐",
	"Wildfires":            "🔥",
	"Floods":               "🌊",
	"Drought":              "🌵",
	"Severe Storms":        "⛈️",
	"Landslides":           "⛰️",
	"Sea and Lake Ice":     "🧊",
	"Water Color":          "💧",
	"Dust and Haze":        "🌫️",
	"Temperature Extremes": "🌡️",
	"Manmade":              "🏭",
	"Tropical Cyclone":     "🌀",
	"Disease Outbreak":     DiseaseIcon,
	"Disaster":             DisasterIcon,
}

// gdacsCodeIcons covers GDACS records whose category name was not mapped
// upstream but still carry the raw event code.
var gdacsCodeIcons = map[string]string{
	"EQ": "🌐",
	"TC": "🌀",
	"FL": "🌊",
	"VO": "🌋",
	"DR": "🌵",
	"WF": "🔥",
}

// IconFor returns the glyph for category, trying each fallback key in order
// before DefaultIcon. Fallback keys may be category names or GDACS codes.
func IconFor(category string, fallbacks ...string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	for _, key := range fallbacks {
		if icon, ok := categoryIcons[key]; ok {
			return icon
		}
		if icon, ok := gdacsCodeIcons[key]; ok {
			return icon
		}
	}
	return DefaultIcon
}
