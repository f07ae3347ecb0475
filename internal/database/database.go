package database

import (
	"fmt"

	"flitz/config"
	"flitz/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserIdentity{},
		&models.UserLocation{},
		&models.UserWaveSafetyZone{},
		&models.Block{},
		&models.Card{},
		&models.CardDistribution{},
		&models.DiscoverySession{},
		&models.DiscoveryHistory{},
		&models.Match{},
		&models.Notification{},
	)
}
