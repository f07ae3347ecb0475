package repository

import (
	"flitz/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SetMainCard(userID, cardID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("main_card_id", cardID).Error
}

func (r *UserRepository) UpdateFCMToken(userID uint, token string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("fcm_token", token).Error
}

func (r *UserRepository) IdentityOf(userID uint) (*models.UserIdentity, error) {
	var ident models.UserIdentity
	if err := r.db.Where("user_id = ?", userID).First(&ident).Error; err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *UserRepository) UpsertIdentity(ident *models.UserIdentity) error {
	var existing models.UserIdentity
	err := r.db.Where("user_id = ?", ident.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(ident).Error
	}
	if err != nil {
		return err
	}
	ident.ID = existing.ID
	ident.CreatedAt = existing.CreatedAt
	return r.db.Save(ident).Error
}
