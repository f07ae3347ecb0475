package models

import (
	"time"

	"gorm.io/gorm"
)

// Match is a finalized mutual match. User ids are stored normalized
// (UserAID < UserBID) so one row covers both directions.
type Match struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserAID   uint           `gorm:"not null;index:idx_match_pair,unique" json:"user_a_id"`
	UserBID   uint           `gorm:"not null;index:idx_match_pair,unique" json:"user_b_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserA User `gorm:"foreignKey:UserAID" json:"-"`
	UserB User `gorm:"foreignKey:UserBID" json:"-"`
}

func (Match) TableName() string {
	return "matches"
}

// NormalizeMatchPair orders two user ids for storage.
func NormalizeMatchPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
