package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	p := Coordinates{Lat: 43.6555, Lng: -79.3626}
	assert.Equal(t, 0.0, DistanceKm(p, p))
}

func TestDistanceKmTorontoOttawa(t *testing.T) {
	toronto := Coordinates{Lat: 43.6532, Lng: -79.3832}
	ottawa := Coordinates{Lat: 45.4215, Lng: -75.6972}
	d := DistanceKm(toronto, ottawa)
	// Straight-line distance is about 352 km.
	assert.InDelta(t, 352, d, 5)
	assert.InDelta(t, d, DistanceKm(ottawa, toronto), 1e-9)
}

func TestDistanceKmShortHop(t *testing.T) {
	downtown := Coordinates{Lat: 43.6555, Lng: -79.3626}
	northYork := Coordinates{Lat: 43.7615, Lng: -79.4110}
	d := DistanceKm(downtown, northYork)
	assert.Greater(t, d, 10.0)
	assert.Less(t, d, 15.0)
}

func TestLookupPostalCodeVariants(t *testing.T) {
	want, ok := LookupPostalCode("M5A")
	assert.True(t, ok)

	for _, code := range []string{"m5a", "M5A 1A1", "m5a1a1", " M5A "} {
		got, ok := LookupPostalCode(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}
}

func TestLookupPostalCodeUnknownOrMalformed(t *testing.T) {
	for _, code := range []string{"", "X", "123", "1A2", "Z9Z", "M5"} {
		_, ok := LookupPostalCode(code)
		assert.False(t, ok, code)
	}
}
