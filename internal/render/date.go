package render

import (
	"fmt"
	"strings"
	"time"
)

// InvalidDate is rendered for absent or unparseable dates.
const InvalidDate = "Invalid Date"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Locale formats dates for one display locale.
type Locale struct {
	Date     func(time.Time) string
	DateTime func(time.Time) string
}

var locales = map[string]Locale{
	"ko-KR": {
		Date: func(t time.Time) string { return t.Format("2006. 1. 2.") },
		DateTime: func(t time.Time) string {
			meridiem := "오전"
			if t.Hour() >= 12 {
				meridiem = "오후"
			}
			return fmt.Sprintf("%s %s %s", t.Format("2006. 1. 2."), meridiem, t.Format("3:04"))
		},
	},
	"en-US": {
		Date:     func(t time.Time) string { return t.Format("1/2/2006") },
		DateTime: func(t time.Time) string { return t.Format("Jan 2, 2006, 3:04 PM") },
	},
	"iso": {
		Date:     func(t time.Time) string { return t.Format("2006-01-02") },
		DateTime: func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	},
}

// KnownLocale reports whether name is a supported display locale.
func KnownLocale(name string) bool {
	_, ok := locales[name]
	return ok
}

// DateFormatter renders backend date strings in a display locale and zone.
type DateFormatter struct {
	locale Locale
	zone   *time.Location
}

// NewDateFormatter returns a formatter for locale, falling back to ISO output
// for unknown locales and UTC for a nil zone.
func NewDateFormatter(locale string, zone *time.Location) DateFormatter {
	l, ok := locales[locale]
	if !ok {
		l = locales["iso"]
	}
	if zone == nil {
		zone = time.UTC
	}
	return DateFormatter{locale: l, zone: zone}
}

// Date renders the calendar date only.
func (f DateFormatter) Date(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return InvalidDate
	}
	return f.locale.Date(t.In(f.zone))
}

// DateTime renders a medium date with a short time.
func (f DateFormatter) DateTime(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return InvalidDate
	}
	return f.locale.DateTime(t.In(f.zone))
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
