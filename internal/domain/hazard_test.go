package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestCoordinatePolicy_Accepts(t *testing.T) {
	cases := []struct {
		name   string
		lat    *float64
		lon    *float64
		truthy bool
		strict bool
	}{
		{name: "both present", lat: ptr(10), lon: ptr(20), truthy: true, strict: true},
		{name: "negative values", lat: ptr(-33.9), lon: ptr(-70.6), truthy: true, strict: true},
		{name: "nil latitude", lat: nil, lon: ptr(5), truthy: false, strict: false},
		{name: "nil longitude", lat: ptr(5), lon: nil, truthy: false, strict: false},
		{name: "zero latitude on the equator", lat: ptr(0), lon: ptr(30), truthy: false, strict: true},
		{name: "zero longitude on the prime meridian", lat: ptr(51.5), lon: ptr(0), truthy: false, strict: true},
		{name: "NaN latitude", lat: ptr(math.NaN()), lon: ptr(5), truthy: false, strict: false},
		{name: "infinite longitude", lat: ptr(5), lon: ptr(math.Inf(-1)), truthy: false, strict: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.truthy, CoordinatePolicyTruthy.Accepts(tc.lat, tc.lon))
			assert.Equal(t, tc.strict, CoordinatePolicyStrict.Accepts(tc.lat, tc.lon))
		})
	}
}

func TestParseCoordinatePolicy(t *testing.T) {
	p, err := ParseCoordinatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CoordinatePolicyTruthy, p)

	p, err = ParseCoordinatePolicy(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, CoordinatePolicyStrict, p)

	_, err = ParseCoordinatePolicy("lenient")
	require.Error(t, err)
}

func TestLayerState_MarshalText(t *testing.T) {
	b, err := LayerLoadedOnce.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "loaded_once", string(b))
	assert.Equal(t, "LayerState(9)", LayerState(9).String())
}

func TestSetClock(t *testing.T) {
	frozen := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	assert.Equal(t, frozen, Now())
}
