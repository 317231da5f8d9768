package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
)

// Placeholders for absent fields.
const (
	NoTitle          = "No title"
	NoDescription    = "No description"
	NotAvailable     = "N/A"
	UnknownSource    = "Unknown source"
	SelectedLocation = "Selected location"
)

// Description limits per source, in characters.
const (
	GDACSDescriptionLimit   = 150
	DiseaseDescriptionLimit = 200
)

const weatherIconURL = "https://openweathermap.org/img/wn/%s@2x.png"

// Sanitize escapes "<" so source text cannot open markup.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, "<", "&lt;")
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Popups builds the popup HTML for every layer.
type Popups struct {
	Dates DateFormatter
}

// EONET builds the popup for an EONET event.
func (p Popups) EONET(e domain.HazardEvent, icon string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h4>%s %s</h4>", icon, orDefault(Sanitize(e.Title), NoTitle))
	fmt.Fprintf(&b, "<p>📅 %s</p>", p.Dates.Date(e.Date))
	fmt.Fprintf(&b, "<p>⭐ Score: %s</p>", formatScore(e.Score))
	fmt.Fprintf(&b, "<p>🗂️ Category: %s</p>", orDefault(Sanitize(e.Category), NotAvailable))
	b.WriteString("<p><em>Source: EONET</em></p>")
	return b.String()
}

// GDACS builds the popup for a GDACS alert. Country, summary and link lines
// are omitted when empty.
func (p Popups) GDACS(e domain.HazardEvent, icon string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h4>%s %s</h4>", icon, orDefault(Sanitize(e.Title), NoTitle))
	fmt.Fprintf(&b, "<p>📅 %s</p>", p.Dates.DateTime(e.Date))
	fmt.Fprintf(&b, "<p>🚨 Alert: %s</p>", orDefault(Sanitize(e.AlertLevel), NotAvailable))
	fmt.Fprintf(&b, "<p>🗂️ Category: %s</p>", orDefault(Sanitize(e.Category), NotAvailable))
	if e.Country != "" {
		fmt.Fprintf(&b, "<p>🌍 Country: %s</p>", Sanitize(e.Country))
	}
	if desc := Sanitize(Truncate(e.Description, GDACSDescriptionLimit)); desc != "" {
		fmt.Fprintf(&b, "<p>📄 Summary: %s...</p>", desc)
	}
	if link, ok := safeLink(e.Link); ok {
		fmt.Fprintf(&b, `<p><a href="%s" target="_blank" rel="noopener noreferrer">Details</a></p>`, link)
	}
	b.WriteString("<p><em>Source: GDACS</em></p>")
	return b.String()
}

// Disease builds the popup for a disease outbreak report.
func (p Popups) Disease(e domain.HazardEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h4>%s %s</h4>", DiseaseIcon, orDefault(Sanitize(e.Title), NoTitle))
	fmt.Fprintf(&b, "<p>📅 %s</p>", p.Dates.Date(e.Date))
	fmt.Fprintf(&b, "<p>🌍 Country: %s</p>", orDefault(Sanitize(e.Country), NotAvailable))
	desc := orDefault(Sanitize(Truncate(e.Description, DiseaseDescriptionLimit)), NoDescription)
	fmt.Fprintf(&b, "<p>📄 Details: %s...</p>", desc)
	if link, ok := safeLink(e.Link); ok {
		fmt.Fprintf(&b, `<p><a href="%s" target="_blank" rel="noopener noreferrer">Details</a></p>`, link)
	}
	fmt.Fprintf(&b, "<p><em>Source: %s</em></p>", orDefault(Sanitize(e.SourceData), UnknownSource))
	return b.String()
}

// Risk builds the popup for an aggregated risk zone.
func (p Popups) Risk(z domain.RiskZone) string {
	var b strings.Builder
	b.WriteString(`<div class="risk-popup">`)
	fmt.Fprintf(&b, "<h4>%s AI risk zone</h4>", RiskIcon)
	fmt.Fprintf(&b, "<p><strong>Risk score:</strong> %.0f</p>", z.RiskScore)
	fmt.Fprintf(&b, "<p><strong>Events:</strong> %d</p>", z.EventCount)
	b.WriteString(`<hr><p class="subtitle">Key factors:</p><ul>`)
	for _, f := range z.RepresentativeEvents {
		fmt.Fprintf(&b, "<li>%s</li>", Sanitize(f))
	}
	b.WriteString("</ul></div>")
	return b.String()
}

// Weather builds the point-query popup. label replaces an empty report location.
func (p Popups) Weather(w domain.WeatherReport, label string) string {
	location := w.Location
	if location == "" {
		location = label
	}
	location = orDefault(Sanitize(location), SelectedLocation)
	weather := Sanitize(w.Weather)

	var b strings.Builder
	fmt.Fprintf(&b, "<h4>%s weather</h4>", location)
	fmt.Fprintf(&b, `<p><img src="%s" alt="%s" style="vertical-align: middle; width: 50px; height: 50px;"> %s</p>`,
		fmt.Sprintf(weatherIconURL, url.PathEscape(w.Icon)), escapeAttr(w.Weather), weather)
	fmt.Fprintf(&b, "<p><strong>🌡️ Temperature:</strong> %s°C</p>", formatNumber(w.Temperature))
	fmt.Fprintf(&b, "<p><strong>💧 Humidity:</strong> %s%%</p>", formatNumber(w.Humidity))
	fmt.Fprintf(&b, "<p><strong>💨 Wind:</strong> %s m/s</p>", formatNumber(w.WindSpeed))
	return b.String()
}

// WeatherError builds the popup shown when the point query fails.
func (p Popups) WeatherError(message string) string {
	return fmt.Sprintf("<p>Unable to fetch weather.<br>%s</p>", Sanitize(message))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func formatScore(score *float64) string {
	if score == nil {
		return NotAvailable
	}
	return formatNumber(*score)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// safeLink accepts only absolute http(s) URLs and escapes them for an attribute.
func safeLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return escapeAttr(u.String()), true
}

var attrReplacer = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string {
	return attrReplacer.Replace(s)
}
