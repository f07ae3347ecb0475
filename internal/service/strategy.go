package service

import (
	"flitz/internal/models"
	"flitz/pkg/geo"
)

// ShadowbanChecker decides whether a user is shadow-banned. The reveal
// engine treats a shadow-banned card owner as a hard safety veto.
type ShadowbanChecker interface {
	IsShadowbanned(userID uint) (bool, error)
}

// NoShadowban is the default checker; the shadowban feature does not exist
// yet, so it always reports false.
type NoShadowban struct{}

func (NoShadowban) IsShadowbanned(uint) (bool, error) { return false, nil }

// OfficialCardChecker decides whether a card is an official/curated card,
// which reveals immediately. No official cards exist yet.
type OfficialCardChecker interface {
	IsOfficial(card *models.Card) (bool, error)
}

type NoOfficialCards struct{}

func (NoOfficialCards) IsOfficial(*models.Card) (bool, error) { return false, nil }

// NearbyChecker is the anti-spoofing predicate for real-time discovery: both
// users must be within an acceptable physical range for a report to count.
type NearbyChecker interface {
	AreNearby(a, b *models.UserLocation) bool
}

// HaversineNearby accepts pairs within a fixed great-circle range.
type HaversineNearby struct {
	MaxMeters float64
}

func (c HaversineNearby) AreNearby(a, b *models.UserLocation) bool {
	if a == nil || b == nil {
		return false
	}
	return geo.HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude) <= c.MaxMeters
}
