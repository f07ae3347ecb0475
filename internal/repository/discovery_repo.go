package repository

import (
	"time"

	"flitz/internal/models"

	"gorm.io/gorm"
)

type DiscoveryRepository struct {
	db *gorm.DB
}

func NewDiscoveryRepository(db *gorm.DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// StartSession creates a new active session for the user, deactivating any
// prior active ones in the same transaction.
func (r *DiscoveryRepository) StartSession(userID uint) (*models.DiscoverySession, error) {
	session := &models.DiscoverySession{UserID: userID, IsActive: true}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DiscoverySession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// StopSessions deactivates all active sessions of the user. Sessions are
// never deleted.
func (r *DiscoveryRepository) StopSessions(userID uint) error {
	return r.db.Model(&models.DiscoverySession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// ActiveSession resolves an active session by id, with its user preloaded.
func (r *DiscoveryRepository) ActiveSession(id uint) (*models.DiscoverySession, error) {
	var s models.DiscoverySession
	err := r.db.Where("id = ? AND is_active = ?", id, true).
		Preload("User").
		First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HistoryExistsSince reports whether observer session already reported the
// observed session after the given instant.
func (r *DiscoveryRepository) HistoryExistsSince(sessionID, discoveredID uint, since time.Time) (bool, error) {
	var c int64
	err := r.db.Model(&models.DiscoveryHistory{}).
		Where("session_id = ? AND discovered_id = ?", sessionID, discoveredID).
		Where("created_at > ?", since).
		Count(&c).Error
	return c > 0, err
}

func (r *DiscoveryRepository) CreateHistory(h *models.DiscoveryHistory) error {
	return r.db.Create(h).Error
}

// ReverseHistoryWithin finds the most recent opposite-direction report
// created within the window, if any.
func (r *DiscoveryRepository) ReverseHistoryWithin(sessionID, discoveredID uint, window time.Duration) (*models.DiscoveryHistory, error) {
	var h models.DiscoveryHistory
	err := r.db.
		Where("session_id = ? AND discovered_id = ?", sessionID, discoveredID).
		Where("created_at > ?", time.Now().Add(-window)).
		Order("created_at DESC").
		First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
