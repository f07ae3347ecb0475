package models

import (
	"time"

	"gorm.io/gorm"
)

// Block is a directed block edge. Matching treats either direction as a
// hard exclusion.
type Block struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BlockerID uint           `gorm:"not null;index:idx_block_pair,unique" json:"blocker_id"`
	BlockedID uint           `gorm:"not null;index:idx_block_pair,unique" json:"blocked_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Blocker User `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"-"`
}

func (Block) TableName() string {
	return "blocks"
}

// UserWaveSafetyZone is a user-configured geofence that suppresses ambient
// matching while the user is inside it. At most one per user. When disabled,
// membership evaluation always returns "not in zone".
type UserWaveSafetyZone struct {
	ID                  uint    `gorm:"primaryKey" json:"id"`
	UserID              uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude            float64 `gorm:"not null" json:"-"`
	Longitude           float64 `gorm:"not null" json:"-"`
	RadiusMeters        float64 `gorm:"not null" json:"radius_meters"`
	IsEnabled           bool    `gorm:"default:true" json:"is_enabled"`
	EnableWaveAfterExit bool    `gorm:"default:true" json:"enable_wave_after_exit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserWaveSafetyZone) TableName() string {
	return "user_wave_safety_zones"
}
