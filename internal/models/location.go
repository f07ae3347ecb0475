package models

import (
	"time"

	"gorm.io/gorm"
)

// UserLocation is the single current location per user (upsert semantics).
// Geohash and Timezone are always recomputed from the latest coordinates.
type UserLocation struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude  float64 `gorm:"not null" json:"-"`
	Longitude float64 `gorm:"not null" json:"-"`
	Altitude  float64 `json:"-"`
	Accuracy  float64 `json:"accuracy"`
	Geohash   string  `gorm:"size:12;index" json:"geohash"`
	Timezone  string  `gorm:"size:16" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserLocation) TableName() string {
	return "user_locations"
}

// DiscoverySession is one "actively discoverable" period for a user.
// At most one active session per user; starting a new one deactivates prior
// ones. Sessions are never deleted.
type DiscoverySession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	IsActive  bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (DiscoverySession) TableName() string {
	return "discovery_sessions"
}

// DiscoveryHistory is an immutable "I observed session X" event, owned by
// the observing session, with the observer's location snapshot.
type DiscoveryHistory struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	SessionID    uint `gorm:"not null;index" json:"session_id"`
	DiscoveredID uint `gorm:"not null;index" json:"discovered_id"`

	Latitude  float64 `json:"-"`
	Longitude float64 `json:"-"`
	Altitude  float64 `json:"-"`
	Accuracy  float64 `json:"accuracy"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Session    DiscoverySession `gorm:"foreignKey:SessionID" json:"-"`
	Discovered DiscoverySession `gorm:"foreignKey:DiscoveredID" json:"-"`
}

func (DiscoveryHistory) TableName() string {
	return "discovery_histories"
}
