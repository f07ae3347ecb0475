package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"flitz/config"
	"flitz/internal/logger"
	"flitz/internal/models"
	"flitz/internal/repository"
	"flitz/pkg/geo"
)

var (
	ErrSameSession     = errors.New("cannot report own session")
	ErrInactiveSession = errors.New("session not found or inactive")
	ErrNotSessionOwner = errors.New("session does not belong to caller")
)

// DiscoveryReport is the observer's location snapshot at report time.
type DiscoveryReport struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Accuracy  float64
}

// WaveMatcher correlates two independently reported "I saw user X" events
// into a mutual card exchange.
type WaveMatcher struct {
	db            *gorm.DB
	cfg           *config.WaveConfig
	discoveryRepo *repository.DiscoveryRepository
	cardRepo      *repository.CardRepository
	locRepo       *repository.LocationRepository
	userRepo      *repository.UserRepository
	matchRepo     *repository.MatchRepository
	gate          *SafetyGate
	nearby        NearbyChecker
	notifier      Notifier
}

func NewWaveMatcher(
	db *gorm.DB,
	cfg *config.WaveConfig,
	discoveryRepo *repository.DiscoveryRepository,
	cardRepo *repository.CardRepository,
	locRepo *repository.LocationRepository,
	userRepo *repository.UserRepository,
	matchRepo *repository.MatchRepository,
	gate *SafetyGate,
	nearby NearbyChecker,
	notifier Notifier,
) *WaveMatcher {
	return &WaveMatcher{
		db:            db,
		cfg:           cfg,
		discoveryRepo: discoveryRepo,
		cardRepo:      cardRepo,
		locRepo:       locRepo,
		userRepo:      userRepo,
		matchRepo:     matchRepo,
		gate:          gate,
		nearby:        nearby,
		notifier:      notifier,
	}
}

func (m *WaveMatcher) StartDiscovery(userID uint) (*models.DiscoverySession, error) {
	return m.discoveryRepo.StartSession(userID)
}

func (m *WaveMatcher) StopDiscovery(userID uint) error {
	return m.discoveryRepo.StopSessions(userID)
}

// ReportDiscovery records that the caller's session observed another
// session, and finalizes a mutual exchange if the opposite report exists
// within the correlation window. Returns whether a match was finalized.
// Failed preconditions are a non-match result, not an error, except for
// malformed requests (wrong session, not the owner).
func (m *WaveMatcher) ReportDiscovery(callerID, sessionID, observedSessionID uint, rep DiscoveryReport) (bool, error) {
	if sessionID == observedSessionID {
		return false, ErrSameSession
	}

	observer, err := m.discoveryRepo.ActiveSession(sessionID)
	if err != nil {
		return false, err
	}
	if observer == nil {
		return false, ErrInactiveSession
	}
	if observer.UserID != callerID {
		return false, ErrNotSessionOwner
	}

	observed, err := m.discoveryRepo.ActiveSession(observedSessionID)
	if err != nil {
		return false, err
	}
	if observed == nil {
		return false, ErrInactiveSession
	}
	if observed.UserID == callerID {
		return false, ErrSameSession
	}

	ok, err := m.prerequisiteCheck(observer.UserID, observed.UserID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	ok, err = m.sanityCheck(observer.UserID, observed.UserID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	// At most one report per target per observer-local day.
	dayStart, err := m.observerDayStart(observer.UserID)
	if err != nil {
		return false, err
	}
	exists, err := m.discoveryRepo.HistoryExistsSince(observer.ID, observed.ID, dayStart)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	history := &models.DiscoveryHistory{
		SessionID:    observer.ID,
		DiscoveredID: observed.ID,
		Latitude:     rep.Latitude,
		Longitude:    rep.Longitude,
		Altitude:     rep.Altitude,
		Accuracy:     rep.Accuracy,
	}
	if err := m.discoveryRepo.CreateHistory(history); err != nil {
		return false, err
	}

	reverse, err := m.discoveryRepo.ReverseHistoryWithin(observed.ID, observer.ID, m.cfg.CorrelationWindow)
	if err != nil {
		return false, err
	}
	if reverse == nil {
		// Now we wait for the other side to report us.
		return false, nil
	}

	return true, m.finalizeMatch(observer, observed, history, reverse)
}

// prerequisiteCheck applies the bidirectional compatibility and safety
// checks up front so an asymmetric rejection never writes a one-sided
// history row.
func (m *WaveMatcher) prerequisiteCheck(observerID, observedID uint) (bool, error) {
	blocked, err := m.gate.IsBlocked(observerID, observedID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	observerIdent, err := m.userRepo.IdentityOf(observerID)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observedIdent, err := m.userRepo.IdentityOf(observedID)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !observerIdent.IsAcceptable(observedIdent) || !observedIdent.IsAcceptable(observerIdent) {
		return false, nil
	}

	for _, userID := range []uint{observerID, observedID} {
		loc, err := m.locRepo.GetByUserID(userID)
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		ok, err := m.gate.CanParticipateInBatchMatch(userID, loc.Latitude, loc.Longitude)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// sanityCheck requires both users to have a main card and to actually be
// within report range of each other.
func (m *WaveMatcher) sanityCheck(observerID, observedID uint) (bool, error) {
	for _, userID := range []uint{observerID, observedID} {
		if _, err := m.cardRepo.MainCardOf(userID); err == repository.ErrNoMainCard {
			return false, nil
		} else if err != nil {
			return false, err
		}
	}

	observerLoc, err := m.locRepo.GetByUserID(observerID)
	if err != nil {
		return false, err
	}
	observedLoc, err := m.locRepo.GetByUserID(observedID)
	if err != nil {
		return false, err
	}
	return m.nearby.AreNearby(observerLoc, observedLoc), nil
}

// observerDayStart computes "start of today" in the observer's timezone,
// derived from their last known location. Falls back to UTC.
func (m *WaveMatcher) observerDayStart(userID uint) (time.Time, error) {
	loc, err := m.locRepo.GetByUserID(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return time.Time{}, err
	}
	tz := time.UTC
	if loc != nil {
		tz = geo.LoadTimezone(loc.Timezone)
	}
	return geo.StartOfDay(time.Now(), tz), nil
}

// finalizeMatch exchanges both main cards using each side's recorded
// snapshot and records the mutual match. Both directions and the match row
// commit together, so a failure on either leg never leaves a one-sided
// exchange behind. Notifications go out only after the commit.
func (m *WaveMatcher) finalizeMatch(observer, observed *models.DiscoverySession, history, reverse *models.DiscoveryHistory) error {
	type delivery struct {
		to, card, from uint
	}
	var (
		matchCreated bool
		deliveries   []delivery
	)
	err := m.db.Transaction(func(tx *gorm.DB) error {
		cards := m.cardRepo.WithTx(tx)

		cardID, isNew, err := m.distributeCard(cards, observer.UserID, observed.UserID, history)
		if err != nil {
			return err
		}
		if isNew {
			deliveries = append(deliveries, delivery{to: observed.UserID, card: cardID, from: observer.UserID})
		}

		cardID, isNew, err = m.distributeCard(cards, observed.UserID, observer.UserID, reverse)
		if err != nil {
			return err
		}
		if isNew {
			deliveries = append(deliveries, delivery{to: observer.UserID, card: cardID, from: observed.UserID})
		}

		matchCreated, err = m.matchRepo.WithTx(tx).CreateMatch(observer.UserID, observed.UserID)
		return err
	})
	if err != nil {
		return err
	}

	for _, dl := range deliveries {
		m.notifier.DistributionCreated(dl.to, dl.card, dl.from)
	}
	if matchCreated {
		m.notifier.MatchFinalized(observer.UserID, observed.UserID)
	}
	return nil
}

func (m *WaveMatcher) distributeCard(cards *repository.CardRepository, fromUserID, toUserID uint, snapshot *models.DiscoveryHistory) (uint, bool, error) {
	card, err := cards.MainCardOf(fromUserID)
	if err != nil {
		return 0, false, err
	}

	d := &models.CardDistribution{
		CardID:      card.ID,
		RecipientID: toUserID,
		Method:      models.DistributionWave,
		Latitude:    snapshot.Latitude,
		Longitude:   snapshot.Longitude,
		Altitude:    snapshot.Altitude,
		Accuracy:    snapshot.Accuracy,
	}
	_, isNew, err := cards.CreateDistribution(d)
	if err != nil {
		return 0, false, err
	}
	if !isNew {
		logger.Debug("wave: card already distributed, skipping",
			"card_id", card.ID, "recipient_id", toUserID)
	}
	return card.ID, isNew, nil
}
