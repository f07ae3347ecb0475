package models

import (
	"time"

	"gorm.io/gorm"
)

type Card struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"size:32;not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	BannedAt  *time.Time     `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Card) TableName() string {
	return "cards"
}

// RevealPhase is the visibility state of a distributed card.
type RevealPhase int

const (
	// RevealHidden: the card is not shown at all.
	RevealHidden RevealPhase = 0
	// RevealBlurryStrong: shown heavily blurred.
	RevealBlurryStrong RevealPhase = 1
	// RevealBlurrySoft: shown lightly blurred. Reserved; no transition
	// currently produces it.
	RevealBlurrySoft RevealPhase = 2
	// RevealFullyRevealed: fully visible. Terminal.
	RevealFullyRevealed RevealPhase = 3
)

func (p RevealPhase) String() string {
	switch p {
	case RevealHidden:
		return "hidden"
	case RevealBlurryStrong:
		return "blurry_strong"
	case RevealBlurrySoft:
		return "blurry_soft"
	case RevealFullyRevealed:
		return "fully_revealed"
	default:
		return "unknown"
	}
}

// DistributionMethod records which matcher created a distribution.
type DistributionMethod string

const (
	DistributionChronoWave DistributionMethod = "chronowave"
	DistributionWave       DistributionMethod = "wave"
)

// CardDistribution is one instance of a card having been exchanged to a
// recipient. The location snapshot is the exchange point; phase only moves
// forward while the row stays undeleted.
type CardDistribution struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CardID      uint               `gorm:"not null;index:idx_distribution_card_recipient" json:"card_id"`
	RecipientID uint               `gorm:"not null;index:idx_distribution_card_recipient;index" json:"recipient_id"`
	Method      DistributionMethod `gorm:"size:16;not null" json:"method"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Accuracy  float64 `json:"accuracy"`

	RevealPhase RevealPhase `gorm:"not null;default:0;index" json:"reveal_phase"`

	DismissedAt *time.Time     `gorm:"index" json:"dismissed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Card      Card `gorm:"foreignKey:CardID" json:"-"`
	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}

func (CardDistribution) TableName() string {
	return "card_distributions"
}

// OpponentID is the card owner on the other side of the exchange.
func (d *CardDistribution) OpponentID() uint {
	return d.Card.UserID
}
