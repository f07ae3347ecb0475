package models

import (
	"time"

	"flitz/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:24;not null" json:"username"`
	DisplayName  string         `gorm:"size:24;not null" json:"display_name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	FCMToken     string         `gorm:"size:512" json:"-"`
	MainCardID   *uint          `gorm:"index" json:"main_card_id"`
	DisabledAt   *time.Time     `json:"disabled_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Identity *UserIdentity `gorm:"foreignKey:UserID" json:"identity,omitempty"`
	Location *UserLocation `gorm:"foreignKey:UserID" json:"location,omitempty"`
	MainCard *Card         `gorm:"foreignKey:MainCardID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserIdentity holds gender identity and matching preferences.
// Gender sets are persisted as integer bitmasks; an unset gender (0) never
// satisfies any preference test.
type UserIdentity struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	Gender                domain.GenderSet `gorm:"not null;default:0" json:"-"`
	IsTrans               bool             `gorm:"default:false" json:"is_trans"`
	DisplayTransToOthers  bool             `gorm:"default:false" json:"display_trans_to_others"`
	PreferredGenders      domain.GenderSet `gorm:"not null;default:0" json:"-"`
	WelcomesTrans         bool             `gorm:"default:false" json:"welcomes_trans"`
	TransPrefersSafeMatch bool             `gorm:"default:false" json:"trans_prefers_safe_match"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserIdentity) TableName() string {
	return "user_identities"
}

// IsAcceptable reports whether this identity accepts the other as a match
// candidate. The relation is directional: A accepting B says nothing about
// B accepting A, so call sites must test both directions.
func (i *UserIdentity) IsAcceptable(other *UserIdentity) bool {
	if i == nil || other == nil {
		return false
	}
	if !i.PreferredGenders.Intersects(other.Gender) {
		return false
	}
	if i.IsTrans && i.TransPrefersSafeMatch {
		return other.IsTrans || other.WelcomesTrans
	}
	return true
}
