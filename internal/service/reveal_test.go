package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flitz/internal/domain"
	"flitz/internal/models"
)

// Degree offsets at the equator, where one degree of latitude is ~111.2km.
const (
	deg100m  = 0.0009
	deg400m  = 0.0036
	deg600m  = 0.0054
	deg3500m = 0.0315
)

// seedPair creates an opponent (card owner) and a recipient standing at the
// given latitude, and returns an in-memory distribution whose exchange
// snapshot sits at the origin.
func seedPair(t *testing.T, env *testEnv, recipientLat float64, age time.Duration) (*models.CardDistribution, *models.User, *models.User) {
	t.Helper()
	men := domain.NewGenderSet(domain.GenderMale)
	women := domain.NewGenderSet(domain.GenderFemale)
	owner := env.seedUser(t, "owner", men, women, 0, 0)
	recipient := env.seedUser(t, "recipient", women, men, recipientLat, 0)

	card, err := env.cards.MainCardOf(owner.ID)
	require.NoError(t, err)

	d := &models.CardDistribution{
		CardID:      card.ID,
		RecipientID: recipient.ID,
		Method:      models.DistributionChronoWave,
		Latitude:    0,
		Longitude:   0,
		CreatedAt:   time.Now().Add(-age),
		Card:        *card,
	}
	return d, owner, recipient
}

func TestRevealHardByDistance(t *testing.T) {
	env := newTestEnv(t)

	// 3.5km from the exchange point, minutes after the exchange.
	d, _, _ := seedPair(t, env, deg3500m, time.Minute)
	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealFullyRevealed, d.RevealPhase)
}

func TestRevealHardByTime(t *testing.T) {
	env := newTestEnv(t)

	// 600m away and four hours later: moved past the gate, time does the rest.
	d, _, _ := seedPair(t, env, deg600m, 4*time.Hour)
	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealFullyRevealed, d.RevealPhase)
}

func TestRevealSoftStepsToBlurryOnly(t *testing.T) {
	env := newTestEnv(t)

	// 400m and 40 minutes: soft condition holds, hard does not.
	d, _, _ := seedPair(t, env, deg400m, 40*time.Minute)
	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealBlurryStrong, d.RevealPhase)

	// Re-evaluating does not move it further; the soft rule only lifts
	// HIDDEN.
	changed, err = env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.RevealBlurryStrong, d.RevealPhase)
}

func TestRevealStaysHiddenBelowThresholds(t *testing.T) {
	env := newTestEnv(t)

	d, _, _ := seedPair(t, env, deg100m, 10*time.Minute)
	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.RevealHidden, d.RevealPhase)
}

func TestRevealHardNeedsMovementGate(t *testing.T) {
	env := newTestEnv(t)

	// Hours have passed but the recipient barely moved: no full reveal, only
	// the soft step.
	d, _, _ := seedPair(t, env, deg400m, 4*time.Hour)
	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealBlurryStrong, d.RevealPhase)
}

func TestRevealBlockOverridesEverything(t *testing.T) {
	env := newTestEnv(t)

	d, owner, recipient := seedPair(t, env, deg3500m, 5*time.Hour)
	d.RevealPhase = models.RevealBlurryStrong
	require.NoError(t, env.safety.CreateBlock(recipient.ID, owner.ID))

	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealHidden, d.RevealPhase)
	assert.True(t, d.DeletedAt.Valid)
}

func TestRevealImmediateOnPriorMatch(t *testing.T) {
	env := newTestEnv(t)

	d, owner, recipient := seedPair(t, env, deg100m, time.Minute)
	_, err := env.matches.CreateMatch(owner.ID, recipient.ID)
	require.NoError(t, err)

	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealFullyRevealed, d.RevealPhase)
}

func TestRevealTerminalPhaseNeverRegresses(t *testing.T) {
	env := newTestEnv(t)

	d, owner, recipient := seedPair(t, env, deg100m, time.Minute)
	d.RevealPhase = models.RevealFullyRevealed
	require.NoError(t, env.safety.CreateBlock(recipient.ID, owner.ID))

	changed, err := env.reveal.Evaluate(d)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.RevealFullyRevealed, d.RevealPhase)
}

func TestRevealForceSoftPass(t *testing.T) {
	env := newTestEnv(t)
	cfg := defaultRevealConfig()
	cfg.ForceSoftPass = true
	engine := env.revealEngine(cfg)

	// No movement, no elapsed time; the dev override lifts HIDDEN anyway.
	d, _, _ := seedPair(t, env, 0, 0)
	changed, err := engine.Evaluate(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.RevealBlurryStrong, d.RevealPhase)
}

func TestRunPassUpdatesPersistedDistributions(t *testing.T) {
	env := newTestEnv(t)

	d, _, _ := seedPair(t, env, deg3500m, time.Minute)
	stored, isNew, err := env.cards.CreateDistribution(&models.CardDistribution{
		CardID:      d.CardID,
		RecipientID: d.RecipientID,
		Method:      d.Method,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
	})
	require.NoError(t, err)
	require.True(t, isNew)

	require.NoError(t, env.reveal.RunPass(context.Background()))

	got, err := env.cards.GetDistribution(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RevealFullyRevealed, got.RevealPhase)

	// The lease is released once the pass finishes.
	assert.False(t, env.redis.Exists("reveal:phase_pass"))
}

func TestRunPassSkipsWhenLeaseHeld(t *testing.T) {
	env := newTestEnv(t)

	d, _, _ := seedPair(t, env, deg3500m, time.Minute)
	stored, _, err := env.cards.CreateDistribution(&models.CardDistribution{
		CardID:      d.CardID,
		RecipientID: d.RecipientID,
		Method:      d.Method,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
	})
	require.NoError(t, err)

	// Another instance holds the lease.
	require.NoError(t, env.redis.Set("reveal:phase_pass", "1"))

	require.NoError(t, env.reveal.RunPass(context.Background()))

	got, err := env.cards.GetDistribution(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RevealHidden, got.RevealPhase)
	// The foreign lease is left untouched.
	assert.True(t, env.redis.Exists("reveal:phase_pass"))
}
