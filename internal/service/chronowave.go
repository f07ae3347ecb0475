package service

import (
	"flitz/config"
	"flitz/internal/logger"
	"flitz/internal/models"
	"flitz/internal/repository"
	"flitz/pkg/geo"
)

// ChronoWaveMatcher pairs compatible users who recently shared a geospatial
// cell. Each bucket is an independent unit of work; pair failures never
// abort the bucket's pass.
type ChronoWaveMatcher struct {
	cfg      *config.ChronoWaveConfig
	locRepo  *repository.LocationRepository
	cardRepo *repository.CardRepository
	gate     *SafetyGate
	reveal   *RevealEngine
	notifier Notifier
}

func NewChronoWaveMatcher(
	cfg *config.ChronoWaveConfig,
	locRepo *repository.LocationRepository,
	cardRepo *repository.CardRepository,
	gate *SafetyGate,
	reveal *RevealEngine,
	notifier Notifier,
) *ChronoWaveMatcher {
	return &ChronoWaveMatcher{
		cfg:      cfg,
		locRepo:  locRepo,
		cardRepo: cardRepo,
		gate:     gate,
		reveal:   reveal,
		notifier: notifier,
	}
}

// PopulatedBuckets lists the bucket keys worth running a pass over.
func (m *ChronoWaveMatcher) PopulatedBuckets() ([]string, error) {
	return m.locRepo.PopulatedBuckets(m.cfg.FreshnessWindow)
}

// Run executes one matching pass over a single bucket.
func (m *ChronoWaveMatcher) Run(bucketKey string) error {
	users, err := m.locRepo.FreshUsersInBucket(bucketKey, m.cfg.FreshnessWindow, m.cfg.BucketCapacity)
	if err != nil {
		return err
	}
	if len(users) < 2 {
		return nil
	}

	// Card-exchange locations use the coarsened bucket center, never the
	// users' exact coordinates.
	centerLat, centerLng := geo.BucketCenter(bucketKey)

	eligible := make([]*models.User, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Identity == nil || u.Location == nil {
			continue
		}
		ok, err := m.gate.CanParticipateInBatchMatch(u.ID, u.Location.Latitude, u.Location.Longitude)
		if err != nil {
			logger.Error("chronowave: safety zone check failed",
				"bucket", bucketKey, "user_id", u.ID, "error", err)
			continue
		}
		if ok {
			eligible = append(eligible, u)
		}
	}

	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			if err := m.tryMatch(bucketKey, eligible[i], eligible[j], centerLat, centerLng); err != nil {
				logger.Error("chronowave: pair match failed",
					"bucket", bucketKey,
					"user_a", eligible[i].ID, "user_b", eligible[j].ID,
					"error", err)
			}
		}
	}
	return nil
}

func (m *ChronoWaveMatcher) tryMatch(bucketKey string, a, b *models.User, lat, lng float64) error {
	blocked, err := m.gate.IsBlocked(a.ID, b.ID)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}

	// Acceptance is directional; both directions must pass before any
	// exchange happens.
	if !a.Identity.IsAcceptable(b.Identity) || !b.Identity.IsAcceptable(a.Identity) {
		return nil
	}

	if err := m.distributeCard(a, b, lat, lng); err != nil {
		return err
	}
	return m.distributeCard(b, a, lat, lng)
}

// distributeCard exchanges from's main card to to, skipping users without a
// main card and pairs already holding a live distribution.
func (m *ChronoWaveMatcher) distributeCard(from, to *models.User, lat, lng float64) error {
	card, err := m.cardRepo.MainCardOf(from.ID)
	if err == repository.ErrNoMainCard {
		return nil
	}
	if err != nil {
		return err
	}

	d := &models.CardDistribution{
		CardID:      card.ID,
		RecipientID: to.ID,
		Method:      models.DistributionChronoWave,
		Latitude:    lat,
		Longitude:   lng,
	}
	created, isNew, err := m.cardRepo.CreateDistribution(d)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}

	created.Card = *card
	if err := m.reveal.EvaluateAndSave(created); err != nil {
		logger.Error("chronowave: initial reveal evaluation failed",
			"distribution_id", created.ID, "error", err)
	}
	m.notifier.DistributionCreated(to.ID, card.ID, from.ID)
	return nil
}
