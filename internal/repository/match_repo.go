package repository

import (
	"flitz/internal/models"

	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// WithTx returns a repository bound to tx, so callers can span multiple
// repositories in one transaction.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

func (r *MatchRepository) MatchExists(a, b uint) (bool, error) {
	ua, ub := models.NormalizeMatchPair(a, b)
	var c int64
	err := r.db.Model(&models.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", ua, ub).
		Count(&c).Error
	return c > 0, err
}

// CreateMatch records a finalized mutual match. Creating an existing pair is
// a no-op; returns whether a new row was written.
func (r *MatchRepository) CreateMatch(a, b uint) (bool, error) {
	ua, ub := models.NormalizeMatchPair(a, b)
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var c int64
		if err := tx.Model(&models.Match{}).
			Where("user_a_id = ? AND user_b_id = ?", ua, ub).
			Count(&c).Error; err != nil {
			return err
		}
		if c > 0 {
			return nil
		}
		if err := tx.Create(&models.Match{UserAID: ua, UserBID: ub}).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
