package model

import "strings"

// OperationalSettings are the admin-configurable business parameters:
// the payroll rate table, surge zones, and the matching knobs used by
// the eligibility filter and the check-in GPS gate. Environment
// variables seed the defaults; admins adjust them at runtime through
// the settings endpoint and the values persist in the settings table.
type OperationalSettings struct {
	Rates              RateTable
	SurgeZones         []SurgeZone
	ServiceRadiusKm    float64
	ReopenWindowHours  float64
	CheckInToleranceKm float64
}

// SurgeZoneFor returns the surge zone whose postal prefix matches the
// given postal code, or nil when the code is outside every zone.
// Longer prefixes win so "M5A" beats "M5" when both are configured.
func (s *OperationalSettings) SurgeZoneFor(postalCode string) *SurgeZone {
	var best *SurgeZone
	for i := range s.SurgeZones {
		z := &s.SurgeZones[i]
		if hasPrefixFold(postalCode, z.Prefix) {
			if best == nil || len(z.Prefix) > len(best.Prefix) {
				best = z
			}
		}
	}
	return best
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" || len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}
