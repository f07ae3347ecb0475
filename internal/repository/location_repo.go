package repository

import (
	"time"

	"flitz/internal/models"
	"flitz/pkg/geo"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert writes a user's current location. Bucket key and timezone are
// always recomputed from the coordinates so the derived fields can never go
// stale.
func (r *LocationRepository) Upsert(loc *models.UserLocation) error {
	loc.Geohash = geo.BucketKey(loc.Latitude, loc.Longitude)
	loc.Timezone = geo.TimezoneName(loc.Longitude)

	var existing models.UserLocation
	err := r.db.Where("user_id = ?", loc.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(loc).Error
	}
	if err != nil {
		return err
	}
	loc.ID = existing.ID
	loc.CreatedAt = existing.CreatedAt
	return r.db.Save(loc).Error
}

func (r *LocationRepository) GetByUserID(userID uint) (*models.UserLocation, error) {
	var loc models.UserLocation
	if err := r.db.Where("user_id = ?", userID).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// PopulatedBuckets returns the distinct non-empty bucket keys across all
// location rows updated within the freshness window. Ordering is irrelevant.
func (r *LocationRepository) PopulatedBuckets(freshness time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-freshness)
	var keys []string
	err := r.db.Model(&models.UserLocation{}).
		Where("geohash <> ''").
		Where("updated_at >= ?", cutoff).
		Distinct().
		Pluck("geohash", &keys).Error
	return keys, err
}

// FreshUsersInBucket loads users whose current location bucket equals key
// and whose location is fresh, with identity and location preloaded. The
// limit caps very dense buckets.
func (r *LocationRepository) FreshUsersInBucket(key string, freshness time.Duration, limit int) ([]models.User, error) {
	cutoff := time.Now().Add(-freshness)
	var users []models.User
	q := r.db.
		Joins("JOIN user_locations ul ON ul.user_id = users.id").
		Where("ul.geohash = ?", key).
		Where("ul.updated_at >= ?", cutoff).
		Preload("Identity").
		Preload("Location")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&users).Error
	return users, err
}
