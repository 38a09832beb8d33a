// Package geo computes straight-line distances between postal-code
// derived coordinates. Postal codes are resolved through a static
// forward-sortation-area table; callers must treat a failed lookup as
// "cannot evaluate distance" and stay permissive rather than erroring.
package geo

import (
	"math"
	"strings"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle distance between two points
// using the haversine formula. The result is always >= 0.
func DistanceKm(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LookupPostalCode resolves a Canadian postal code to the centroid of
// its forward sortation area. The code may include the full six
// characters or just the FSA; case and inner spaces are ignored.
// Unknown or malformed codes return ok=false.
func LookupPostalCode(code string) (Coordinates, bool) {
	fsa := normalizeFSA(code)
	if fsa == "" {
		return Coordinates{}, false
	}
	c, ok := fsaCentroids[fsa]
	return c, ok
}

// normalizeFSA extracts the three-character forward sortation area
// from a postal code, or returns "" when the input cannot be one.
func normalizeFSA(code string) string {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	if len(s) < 3 {
		return ""
	}
	s = s[:3]
	// FSA shape is letter-digit-letter.
	if s[0] < 'A' || s[0] > 'Z' || s[1] < '0' || s[1] > '9' || s[2] < 'A' || s[2] > 'Z' {
		return ""
	}
	return s
}

// fsaCentroids maps forward sortation areas in the operating region
// (Greater Toronto, Hamilton/Niagara, Ottawa and London) to their
// approximate centroids.
var fsaCentroids = map[string]Coordinates{
	// Toronto core
	"M4B": {43.7063, -79.3094},
	"M4C": {43.6953, -79.3184},
	"M5A": {43.6555, -79.3626},
	"M5B": {43.6571, -79.3789},
	"M5G": {43.6579, -79.3873},
	"M5J": {43.6408, -79.3817},
	"M5V": {43.6437, -79.4000},
	"M6G": {43.6683, -79.4205},
	"M6K": {43.6368, -79.4281},
	"M9V": {43.7394, -79.5884},
	// North York / Scarborough / Etobicoke
	"M2N": {43.7615, -79.4110},
	"M3C": {43.7258, -79.3406},
	"M1B": {43.8066, -79.1943},
	"M1P": {43.7574, -79.2733},
	"M8V": {43.6056, -79.5013},
	// Mississauga / Brampton / Peel
	"L4T": {43.7059, -79.6372},
	"L5B": {43.5890, -79.6441},
	"L5N": {43.5866, -79.7464},
	"L6R": {43.7685, -79.7623},
	"L6Y": {43.6626, -79.7804},
	// York Region / Durham
	"L3R": {43.8561, -79.3370},
	"L4C": {43.8711, -79.4373},
	"L1S": {43.8355, -79.0247},
	"L1V": {43.8354, -79.1204},
	// Hamilton / Niagara
	"L8N": {43.2501, -79.8496},
	"L8S": {43.2585, -79.9210},
	"L2R": {43.1654, -79.2521},
	// Kitchener-Waterloo / Guelph
	"N2L": {43.4723, -80.5449},
	"N1H": {43.5524, -80.2685},
	// London
	"N6A": {42.9985, -81.2520},
	"N6E": {42.9326, -81.2254},
	// Ottawa
	"K1A": {45.4211, -75.6903},
	"K1P": {45.4216, -75.6981},
	"K2P": {45.4166, -75.6930},
	"K7L": {44.2305, -76.4811},
	// Barrie / cottage country
	"L4M": {44.4056, -79.6661},
	"L9Z": {44.5176, -80.0330},
}
