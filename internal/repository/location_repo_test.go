package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flitz/internal/models"
	"flitz/internal/repository"
	"flitz/pkg/geo"
)

func TestLocationUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLocationRepository(db)

	u := &models.User{Username: "alice", DisplayName: "alice", Email: "alice@test.com"}
	require.NoError(t, db.Create(u).Error)

	loc := &models.UserLocation{UserID: u.ID, Latitude: 40.7580, Longitude: -73.9855}
	require.NoError(t, repo.Upsert(loc))
	assert.Equal(t, geo.BucketKey(40.7580, -73.9855), loc.Geohash)
	assert.Equal(t, "UTC-5", loc.Timezone)

	// Moving recomputes the derived fields and keeps one row per user.
	moved := &models.UserLocation{UserID: u.ID, Latitude: 35.6762, Longitude: 139.6503}
	require.NoError(t, repo.Upsert(moved))
	assert.Equal(t, loc.ID, moved.ID)
	assert.Equal(t, "UTC+9", moved.Timezone)

	var count int64
	require.NoError(t, db.Model(&models.UserLocation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repo.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, geo.BucketKey(35.6762, 139.6503), got.Geohash)
}

func TestPopulatedBucketsAndFreshUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLocationRepository(db)

	mkUser := func(name string, lat, lng float64) *models.User {
		u := &models.User{Username: name, DisplayName: name, Email: name + "@test.com"}
		require.NoError(t, db.Create(u).Error)
		require.NoError(t, db.Create(&models.UserIdentity{UserID: u.ID}).Error)
		require.NoError(t, repo.Upsert(&models.UserLocation{UserID: u.ID, Latitude: lat, Longitude: lng}))
		return u
	}

	a := mkUser("alice", 40.7580, -73.9855)
	b := mkUser("bob", 40.7581, -73.9856) // same cell as alice
	mkUser("carol", 35.6762, 139.6503)
	stale := mkUser("dave", 40.7580, -73.9855)

	// Age dave's row out of the freshness window.
	require.NoError(t, db.Model(&models.UserLocation{}).
		Where("user_id = ?", stale.ID).
		Update("updated_at", time.Now().Add(-7*time.Hour)).Error)

	buckets, err := repo.PopulatedBuckets(6 * time.Hour)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		geo.BucketKey(40.7580, -73.9855),
		geo.BucketKey(35.6762, 139.6503),
	}, buckets)

	users, err := repo.FreshUsersInBucket(geo.BucketKey(40.7580, -73.9855), 6*time.Hour, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ids := []uint{users[0].ID, users[1].ID}
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)
	for i := range users {
		require.NotNil(t, users[i].Identity)
		require.NotNil(t, users[i].Location)
	}

	// Capacity cap.
	capped, err := repo.FreshUsersInBucket(geo.BucketKey(40.7580, -73.9855), 6*time.Hour, 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}
