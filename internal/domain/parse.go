package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseHazardEvent decodes one raw list record. Missing or mistyped fields are
// left empty; only a record that is not a JSON object is an error.
func ParseHazardEvent(raw []byte) (HazardEvent, error) {
	r, err := parseObject(raw)
	if err != nil {
		return HazardEvent{}, err
	}

	return HazardEvent{
		Latitude:             optionalFloat(r.Get("latitude")),
		Longitude:            optionalFloat(r.Get("longitude")),
		Category:             text(r.Get("category")),
		OriginalCategoryCode: text(r.Get("original_category_code")),
		Score:                optionalFloat(r.Get("score")),
		AlertLevel:           text(r.Get("alert_level")),
		Title:                text(r.Get("title")),
		Description:          text(r.Get("description")),
		Date:                 text(r.Get("date")),
		Country:              text(r.Get("country")),
		Link:                 text(r.Get("link")),
		SourceData:           text(r.Get("source_data")),
	}, nil
}

// ParseRiskZone decodes one risk-analysis record.
func ParseRiskZone(raw []byte) (RiskZone, error) {
	r, err := parseObject(raw)
	if err != nil {
		return RiskZone{}, err
	}

	var factors []string
	for _, v := range r.Get("representative_events").Array() {
		if s := text(v); s != "" {
			factors = append(factors, s)
		}
	}

	return RiskZone{
		Latitude:             optionalFloat(r.Get("latitude")),
		Longitude:            optionalFloat(r.Get("longitude")),
		RiskScore:            floatOrZero(r.Get("risk_score")),
		EventCount:           int(r.Get("event_count").Int()),
		RadiusKM:             floatOrZero(r.Get("radius_km")),
		RepresentativeEvents: factors,
	}, nil
}

func parseObject(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, errors.New("record is not valid JSON")
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return gjson.Result{}, fmt.Errorf("record is a JSON %s, not an object", r.Type)
	}
	return r, nil
}

// optionalFloat returns nil for absent, null, boolean, non-numeric or
// non-finite values.
func optionalFloat(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func floatOrZero(v gjson.Result) float64 {
	if f := optionalFloat(v); f != nil {
		return *f
	}
	return 0
}

func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}
