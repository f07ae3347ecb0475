package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"flitz/config"
	"flitz/internal/cache"
	"flitz/internal/logger"
	"flitz/internal/models"
	"flitz/internal/repository"
	"flitz/pkg/geo"
)

const revealPassLeaseKey = "reveal:phase_pass"

// RevealEngine is the per-distribution state machine deciding card
// visibility. Phases only move forward; FULLY_REVEALED is absorbing. A
// failed assertive safety check overrides any progress and soft-deletes the
// distribution.
type RevealEngine struct {
	cfg       *config.RevealConfig
	cardRepo  *repository.CardRepository
	locRepo   *repository.LocationRepository
	matchRepo *repository.MatchRepository
	gate      *SafetyGate
	shadowban ShadowbanChecker
	official  OfficialCardChecker
	lease     *cache.Lease
	notifier  Notifier
}

func NewRevealEngine(
	cfg *config.RevealConfig,
	cardRepo *repository.CardRepository,
	locRepo *repository.LocationRepository,
	matchRepo *repository.MatchRepository,
	gate *SafetyGate,
	shadowban ShadowbanChecker,
	official OfficialCardChecker,
	lease *cache.Lease,
	notifier Notifier,
) *RevealEngine {
	return &RevealEngine{
		cfg:       cfg,
		cardRepo:  cardRepo,
		locRepo:   locRepo,
		matchRepo: matchRepo,
		gate:      gate,
		shadowban: shadowban,
		official:  official,
		lease:     lease,
		notifier:  notifier,
	}
}

// Evaluate applies the transition rules to d in memory and reports whether
// anything changed. d.Card must be loaded. Callers persist changed rows via
// the repository.
func (e *RevealEngine) Evaluate(d *models.CardDistribution) (bool, error) {
	if d.RevealPhase == models.RevealFullyRevealed {
		return false, nil
	}

	opponentID := d.OpponentID()

	// Assertive gate: a block in either direction or a shadow-banned
	// opponent force-hides and soft-deletes the distribution.
	blocked, err := e.gate.IsBlocked(d.RecipientID, opponentID)
	if err != nil {
		return false, err
	}
	banned := false
	if !blocked {
		banned, err = e.shadowban.IsShadowbanned(opponentID)
		if err != nil {
			return false, err
		}
	}
	if blocked || banned {
		d.RevealPhase = models.RevealHidden
		d.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		return true, nil
	}

	// Immediate reveal: official card or a prior mutual match.
	officialCard, err := e.official.IsOfficial(&d.Card)
	if err != nil {
		return false, err
	}
	if !officialCard {
		matched, err := e.matchRepo.MatchExists(d.RecipientID, opponentID)
		if err != nil {
			return false, err
		}
		if !matched {
			return e.evaluateDistanceTime(d)
		}
	}
	d.RevealPhase = models.RevealFullyRevealed
	e.notifier.DistributionRevealed(d.RecipientID, d.CardID, opponentID)
	return true, nil
}

func (e *RevealEngine) evaluateDistanceTime(d *models.CardDistribution) (bool, error) {
	loc, err := e.locRepo.GetByUserID(d.RecipientID)
	if err == gorm.ErrRecordNotFound {
		// No current location: distance conditions cannot be judged yet.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	moved := geo.HaversineMeters(loc.Latitude, loc.Longitude, d.Latitude, d.Longitude)
	elapsed := time.Since(d.CreatedAt)

	// Hard reveal: the recipient left the exchange point AND either got far
	// enough away or enough time passed.
	if moved >= e.cfg.MovementMeters &&
		(moved >= e.cfg.HardDistanceMeters || elapsed >= e.cfg.HardTime) {
		d.RevealPhase = models.RevealFullyRevealed
		e.notifier.DistributionRevealed(d.RecipientID, d.CardID, d.OpponentID())
		return true, nil
	}

	// Soft reveal: only steps HIDDEN up to BLURRY_STRONG.
	softOK := e.cfg.ForceSoftPass ||
		(moved >= e.cfg.SoftDistanceMeters && elapsed >= e.cfg.SoftTime)
	if softOK && d.RevealPhase == models.RevealHidden {
		d.RevealPhase = models.RevealBlurryStrong
		return true, nil
	}

	return false, nil
}

// EvaluateAndSave runs one evaluation for a freshly created distribution and
// persists the result. Used by the matchers right after creation.
func (e *RevealEngine) EvaluateAndSave(d *models.CardDistribution) error {
	changed, err := e.Evaluate(d)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return e.cardRepo.FlushPhaseUpdates([]*models.CardDistribution{d})
}

// RunPass evaluates every non-terminal, non-dismissed, non-deleted
// distribution in bounded chunks, buffering changed rows and flushing per
// chunk. A redis lease keeps overlapping scheduled runs from interleaving.
func (e *RevealEngine) RunPass(ctx context.Context) error {
	token, err := e.lease.Acquire(ctx, revealPassLeaseKey, e.cfg.LeaseTTL)
	if err != nil {
		return err
	}
	if token == "" {
		logger.Info("reveal pass already running, skipping this run")
		return nil
	}
	defer func() {
		if err := e.lease.Release(context.WithoutCancel(ctx), revealPassLeaseKey, token); err != nil {
			logger.Error("reveal pass: lease release failed", "error", err)
		}
	}()

	started := time.Now()
	var total, updated, errors int
	var cursor uint

	for {
		chunk, err := e.cardRepo.PendingDistributions(cursor, e.cfg.ChunkSize)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			break
		}

		changed := make([]*models.CardDistribution, 0, len(chunk))
		for i := range chunk {
			d := &chunk[i]
			cursor = d.ID
			total++

			didChange, err := e.Evaluate(d)
			if err != nil {
				errors++
				logger.Error("reveal pass: distribution evaluation failed",
					"distribution_id", d.ID, "error", err)
				continue
			}
			if didChange {
				changed = append(changed, d)
				updated++
			}
		}

		if err := e.cardRepo.FlushPhaseUpdates(changed); err != nil {
			return err
		}
		if len(chunk) < e.cfg.ChunkSize {
			break
		}
	}

	logger.Info("reveal pass completed",
		"total", total, "updated", updated, "errors", errors,
		"duration", time.Since(started))
	return nil
}
