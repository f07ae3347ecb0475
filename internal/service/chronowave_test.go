package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flitz/internal/domain"
	"flitz/internal/models"
	"flitz/pkg/geo"
)

// Times Square-ish coordinates; both points fall in the same bucket.
const (
	tsLat = 40.7580
	tsLng = -73.9855
)

func TestChronoWaveExchangesBothCards(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)

	alice := env.seedUser(t, "alice", women, men, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat+0.0001, tsLng)

	bucket := geo.BucketKey(tsLat, tsLng)
	buckets, err := matcher.PopulatedBuckets()
	require.NoError(t, err)
	assert.Contains(t, buckets, bucket)

	require.NoError(t, matcher.Run(bucket))

	aliceGot := env.distributionsOf(t, alice.ID)
	bobGot := env.distributionsOf(t, bob.ID)
	require.Len(t, aliceGot, 1)
	require.Len(t, bobGot, 1)

	assert.Equal(t, *bob.MainCardID, aliceGot[0].CardID)
	assert.Equal(t, *alice.MainCardID, bobGot[0].CardID)
	assert.Equal(t, models.DistributionChronoWave, aliceGot[0].Method)

	// Fresh exchanges start hidden: no movement, no elapsed time.
	assert.Equal(t, models.RevealHidden, aliceGot[0].RevealPhase)
	assert.Equal(t, models.RevealHidden, bobGot[0].RevealPhase)

	// The snapshot is the coarsened bucket center, not either user's point.
	centerLat, centerLng := geo.BucketCenter(bucket)
	assert.Equal(t, centerLat, aliceGot[0].Latitude)
	assert.Equal(t, centerLng, aliceGot[0].Longitude)
}

func TestChronoWaveRunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)
	alice := env.seedUser(t, "alice", women, men, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat, tsLng)

	bucket := geo.BucketKey(tsLat, tsLng)
	require.NoError(t, matcher.Run(bucket))
	require.NoError(t, matcher.Run(bucket))

	assert.Len(t, env.distributionsOf(t, alice.ID), 1)
	assert.Len(t, env.distributionsOf(t, bob.ID), 1)
}

func TestChronoWaveSkipsIncompatiblePairs(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	women := domain.NewGenderSet(domain.GenderFemale)
	men := domain.NewGenderSet(domain.GenderMale)

	// Bob seeks women, but alice seeks women too; her direction fails.
	alice := env.seedUser(t, "alice", women, women, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat, tsLng)

	require.NoError(t, matcher.Run(geo.BucketKey(tsLat, tsLng)))

	assert.Empty(t, env.distributionsOf(t, alice.ID))
	assert.Empty(t, env.distributionsOf(t, bob.ID))
}

func TestChronoWaveRespectsBlocks(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)
	alice := env.seedUser(t, "alice", women, men, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat, tsLng)

	require.NoError(t, env.safety.CreateBlock(alice.ID, bob.ID))
	require.NoError(t, matcher.Run(geo.BucketKey(tsLat, tsLng)))

	assert.Empty(t, env.distributionsOf(t, alice.ID))
	assert.Empty(t, env.distributionsOf(t, bob.ID))
}

func TestChronoWaveExcludesUsersInsideTheirSafetyZone(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)
	alice := env.seedUser(t, "alice", women, men, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat, tsLng)

	// Bob is standing inside his own enabled zone.
	require.NoError(t, env.safety.UpsertZone(&models.UserWaveSafetyZone{
		UserID:       bob.ID,
		Latitude:     tsLat,
		Longitude:    tsLng,
		RadiusMeters: 1000,
		IsEnabled:    true,
	}))

	require.NoError(t, matcher.Run(geo.BucketKey(tsLat, tsLng)))

	assert.Empty(t, env.distributionsOf(t, alice.ID))
	assert.Empty(t, env.distributionsOf(t, bob.ID))
}

func TestChronoWaveSkipsUsersWithoutMainCard(t *testing.T) {
	env := newTestEnv(t)
	matcher := env.chronoWave(t)

	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)
	alice := env.seedUser(t, "alice", women, men, tsLat, tsLng)
	bob := env.seedUser(t, "bob", men, women, tsLat, tsLng)

	// Bob deletes his main card selection; alice still exchanges hers.
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", bob.ID).
		Update("main_card_id", nil).Error)

	require.NoError(t, matcher.Run(geo.BucketKey(tsLat, tsLng)))

	assert.Empty(t, env.distributionsOf(t, alice.ID))
	require.Len(t, env.distributionsOf(t, bob.ID), 1)
	assert.Equal(t, *alice.MainCardID, env.distributionsOf(t, bob.ID)[0].CardID)
}
