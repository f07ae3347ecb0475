package repository

import (
	"errors"
	"time"

	"flitz/internal/models"

	"gorm.io/gorm"
)

// ErrNoMainCard is returned when a user has no configured main card.
var ErrNoMainCard = errors.New("user has no main card")

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// WithTx returns a repository bound to tx, so callers can span multiple
// repositories in one transaction.
func (r *CardRepository) WithTx(tx *gorm.DB) *CardRepository {
	return &CardRepository{db: tx}
}

func (r *CardRepository) Create(card *models.Card) error {
	return r.db.Create(card).Error
}

func (r *CardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// MainCardOf resolves a user's main card. Returns ErrNoMainCard when unset.
func (r *CardRepository) MainCardOf(userID uint) (*models.Card, error) {
	var u models.User
	if err := r.db.Select("id", "main_card_id").First(&u, userID).Error; err != nil {
		return nil, err
	}
	if u.MainCardID == nil {
		return nil, ErrNoMainCard
	}
	return r.GetByID(*u.MainCardID)
}

// CreateDistribution creates a distribution of card to recipient unless a
// non-deleted one already exists. The pre-check and insert run in one
// transaction, closing the read-then-write race between concurrent passes.
// Returns (distribution, created).
func (r *CardRepository) CreateDistribution(d *models.CardDistribution) (*models.CardDistribution, bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CardDistribution{}).
			Where("card_id = ? AND recipient_id = ?", d.CardID, d.RecipientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !created {
		return nil, false, nil
	}
	return d, true, nil
}

func (r *CardRepository) GetDistribution(id uint) (*models.CardDistribution, error) {
	var d models.CardDistribution
	if err := r.db.Preload("Card").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// PendingDistributions pages through non-terminal, non-dismissed, non-deleted
// distributions, id-cursored so the global pass restarts cleanly per chunk.
func (r *CardRepository) PendingDistributions(afterID uint, limit int) ([]models.CardDistribution, error) {
	var ds []models.CardDistribution
	err := r.db.
		Where("reveal_phase <> ?", models.RevealFullyRevealed).
		Where("dismissed_at IS NULL").
		Where("id > ?", afterID).
		Preload("Card").
		Order("id ASC").
		Limit(limit).
		Find(&ds).Error
	return ds, err
}

// FlushPhaseUpdates persists buffered phase/soft-delete changes in one
// transaction.
func (r *CardRepository) FlushPhaseUpdates(changed []*models.CardDistribution) error {
	if len(changed) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range changed {
			updates := map[string]any{
				"reveal_phase": d.RevealPhase,
				"updated_at":   time.Now(),
			}
			if d.DeletedAt.Valid {
				updates["deleted_at"] = d.DeletedAt.Time
			}
			if err := tx.Model(&models.CardDistribution{}).
				Where("id = ?", d.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DistributionsFor lists a recipient's live distributions, newest first.
func (r *CardRepository) DistributionsFor(recipientID uint) ([]models.CardDistribution, error) {
	var ds []models.CardDistribution
	err := r.db.
		Where("recipient_id = ?", recipientID).
		Where("dismissed_at IS NULL").
		Preload("Card").
		Order("created_at DESC").
		Find(&ds).Error
	return ds, err
}

// DismissDistribution marks a received card as dismissed by its recipient.
func (r *CardRepository) DismissDistribution(id, recipientID uint) error {
	res := r.db.Model(&models.CardDistribution{}).
		Where("id = ? AND recipient_id = ? AND dismissed_at IS NULL", id, recipientID).
		Update("dismissed_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
