package repository

import (
	"flitz/internal/models"

	"gorm.io/gorm"
)

type SafetyRepository struct {
	db *gorm.DB
}

func NewSafetyRepository(db *gorm.DB) *SafetyRepository {
	return &SafetyRepository{db: db}
}

func (r *SafetyRepository) CreateBlock(blockerID, blockedID uint) error {
	return r.db.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error
}

// DeleteBlock removes the edge for real; a lingering soft-deleted row would
// trip the unique pair index on a later re-block.
func (r *SafetyRepository) DeleteBlock(blockerID, blockedID uint) error {
	return r.db.Unscoped().
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// IsBlocked reports whether a block edge exists in either direction.
func (r *SafetyRepository) IsBlocked(a, b uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&c).Error
	return c > 0, err
}

func (r *SafetyRepository) ZoneOf(userID uint) (*models.UserWaveSafetyZone, error) {
	var zone models.UserWaveSafetyZone
	err := r.db.Where("user_id = ?", userID).First(&zone).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *SafetyRepository) UpsertZone(zone *models.UserWaveSafetyZone) error {
	existing, err := r.ZoneOf(zone.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(zone).Error
	}
	zone.ID = existing.ID
	zone.CreatedAt = existing.CreatedAt
	return r.db.Save(zone).Error
}
