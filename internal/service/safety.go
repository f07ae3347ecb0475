package service

import (
	"flitz/internal/repository"
	"flitz/pkg/geo"
)

// SafetyGate evaluates block relationships and safety-zone membership.
type SafetyGate struct {
	safetyRepo *repository.SafetyRepository
}

func NewSafetyGate(safetyRepo *repository.SafetyRepository) *SafetyGate {
	return &SafetyGate{safetyRepo: safetyRepo}
}

// IsBlocked reports a block edge in either direction between a and b.
func (g *SafetyGate) IsBlocked(a, b uint) (bool, error) {
	return g.safetyRepo.IsBlocked(a, b)
}

// InSafetyZone reports whether (lat, lng) falls inside the user's enabled
// safety zone. No zone, or a disabled one, is never "in zone".
func (g *SafetyGate) InSafetyZone(userID uint, lat, lng float64) (bool, error) {
	zone, err := g.safetyRepo.ZoneOf(userID)
	if err != nil {
		return false, err
	}
	if zone == nil || !zone.IsEnabled {
		return false, nil
	}
	dist := geo.HaversineMeters(zone.Latitude, zone.Longitude, lat, lng)
	return dist <= zone.RadiusMeters, nil
}

// CanParticipateInBatchMatch decides whether a user at (lat, lng) may take
// part in ambient matching. Inside their own enabled zone they never do;
// outside it, participation resumes only if the zone opts into
// wave-after-exit.
func (g *SafetyGate) CanParticipateInBatchMatch(userID uint, lat, lng float64) (bool, error) {
	zone, err := g.safetyRepo.ZoneOf(userID)
	if err != nil {
		return false, err
	}
	if zone == nil || !zone.IsEnabled {
		return true, nil
	}
	dist := geo.HaversineMeters(zone.Latitude, zone.Longitude, lat, lng)
	if dist <= zone.RadiusMeters {
		return false, nil
	}
	return zone.EnableWaveAfterExit, nil
}
