package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flitz/config"
	"flitz/internal/cache"
	"flitz/internal/database"
	"flitz/internal/domain"
	"flitz/internal/models"
	"flitz/internal/repository"
	"flitz/internal/service"
)

// testEnv wires the full matching stack against an isolated in-memory SQLite
// DB and a miniredis. Each test gets its own instance.
type testEnv struct {
	db    *gorm.DB
	redis *miniredis.Miniredis
	cache *cache.RedisCache

	users     *repository.UserRepository
	locations *repository.LocationRepository
	cards     *repository.CardRepository
	safety    *repository.SafetyRepository
	discovery *repository.DiscoveryRepository
	matches   *repository.MatchRepository

	gate   *service.SafetyGate
	reveal *service.RevealEngine
}

func defaultRevealConfig() *config.RevealConfig {
	return &config.RevealConfig{
		Interval:           5 * time.Minute,
		ChunkSize:          300,
		LeaseTTL:           15 * time.Minute,
		MovementMeters:     500,
		HardDistanceMeters: 3000,
		HardTime:           3 * time.Hour,
		SoftDistanceMeters: 300,
		SoftTime:           30 * time.Minute,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	env := &testEnv{
		db:        db,
		redis:     mr,
		cache:     rdb,
		users:     repository.NewUserRepository(db),
		locations: repository.NewLocationRepository(db),
		cards:     repository.NewCardRepository(db),
		safety:    repository.NewSafetyRepository(db),
		discovery: repository.NewDiscoveryRepository(db),
		matches:   repository.NewMatchRepository(db),
	}
	env.gate = service.NewSafetyGate(env.safety)
	env.reveal = env.revealEngine(defaultRevealConfig())
	return env
}

func (e *testEnv) revealEngine(cfg *config.RevealConfig) *service.RevealEngine {
	return service.NewRevealEngine(
		cfg, e.cards, e.locations, e.matches, e.gate,
		service.NoShadowban{}, service.NoOfficialCards{},
		cache.NewLease(e.cache), service.NopNotifier{},
	)
}

func (e *testEnv) chronoWave(t *testing.T) *service.ChronoWaveMatcher {
	t.Helper()
	cfg := &config.ChronoWaveConfig{
		Interval:        15 * time.Minute,
		FreshnessWindow: 6 * time.Hour,
		BucketCapacity:  500,
	}
	return service.NewChronoWaveMatcher(cfg, e.locations, e.cards, e.gate, e.reveal, service.NopNotifier{})
}

func (e *testEnv) waveMatcher(t *testing.T) *service.WaveMatcher {
	t.Helper()
	cfg := &config.WaveConfig{
		CorrelationWindow:       30 * time.Minute,
		MaxReportDistanceMeters: 250,
	}
	return service.NewWaveMatcher(
		e.db, cfg, e.discovery, e.cards, e.locations, e.users, e.matches, e.gate,
		service.HaversineNearby{MaxMeters: cfg.MaxReportDistanceMeters}, service.NopNotifier{},
	)
}

// seedUser creates a user with an identity, a main card, and a current
// location.
func (e *testEnv) seedUser(t *testing.T, name string, gender, preferred domain.GenderSet, lat, lng float64) *models.User {
	t.Helper()
	u := &models.User{Username: name, DisplayName: name, Email: name + "@test.com"}
	require.NoError(t, e.db.Create(u).Error)
	require.NoError(t, e.db.Create(&models.UserIdentity{
		UserID:           u.ID,
		Gender:           gender,
		PreferredGenders: preferred,
	}).Error)

	card := &models.Card{UserID: u.ID, Title: name, Content: `{"greeting":"hi"}`}
	require.NoError(t, e.db.Create(card).Error)
	require.NoError(t, e.users.SetMainCard(u.ID, card.ID))
	u.MainCardID = &card.ID

	require.NoError(t, e.locations.Upsert(&models.UserLocation{
		UserID: u.ID, Latitude: lat, Longitude: lng,
	}))
	return u
}

func (e *testEnv) distributionsOf(t *testing.T, recipientID uint) []models.CardDistribution {
	t.Helper()
	ds, err := e.cards.DistributionsFor(recipientID)
	require.NoError(t, err)
	return ds
}
