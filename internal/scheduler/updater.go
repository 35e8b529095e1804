package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

// Updater folds answer outcomes into per-(user, case) stats rows
type Updater struct {
	store Store
}

// NewUpdater creates a new updater
func NewUpdater(store Store) *Updater {
	return &Updater{store: store}
}

// Update records one answer outcome and reschedules the case. Negative
// latencies are clamped to zero. The caller is expected to have
// validated that the case exists. On a detected write conflict the
// update is retried exactly once with freshly loaded state.
func (u *Updater) Update(ctx context.Context, userID, caseID uuid.UUID, correct bool, latencyMs int64, now time.Time) (*models.UserCaseStats, error) {
	if latencyMs < 0 {
		latencyMs = 0
	}

	stats, err := u.applyOnce(ctx, userID, caseID, correct, latencyMs, now)
	if errors.Is(err, ErrConflict) {
		stats, err = u.applyOnce(ctx, userID, caseID, correct, latencyMs, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update case stats: %w", err)
	}
	return stats, nil
}

func (u *Updater) applyOnce(ctx context.Context, userID, caseID uuid.UUID, correct bool, latencyMs int64, now time.Time) (*models.UserCaseStats, error) {
	stats, err := u.store.GetStats(ctx, userID, caseID)
	if errors.Is(err, ErrNotFound) {
		stats = newStats(userID, caseID, now)
	} else if err != nil {
		return nil, err
	}

	applyAnswer(stats, correct, latencyMs, now)

	if err := u.store.UpsertStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// applyAnswer is the pure scheduling update: prior state plus one
// observation in, next state out.
func applyAnswer(stats *models.UserCaseStats, correct bool, latencyMs int64, now time.Time) {
	stats.LastAttemptAt = &now
	stats.LastLatencyMs = &latencyMs
	stats.LastResult = &correct

	if correct {
		stats.CorrectStreak++

		// The interval tier is keyed on the pre-answer interval, and
		// the growth multiplier uses the pre-adjustment ease factor.
		switch stats.IntervalDays {
		case 0:
			stats.IntervalDays = 1
		case 1:
			stats.IntervalDays = 3
		default:
			stats.IntervalDays = int(math.Round(float64(stats.IntervalDays) * stats.EaseFactor))
		}

		if latencyMs < FastAnswerMs {
			stats.EaseFactor += 0.05
		} else {
			stats.EaseFactor += 0.02
		}
		stats.EaseFactor = clampEase(stats.EaseFactor)
	} else {
		wrongAt := now
		stats.RecentlyWrongAt = &wrongAt
		stats.CorrectStreak = 0
		stats.IntervalDays = 1
		stats.EaseFactor = math.Max(MinEaseFactor, stats.EaseFactor-0.2)
	}

	stats.NextDueAt = now.AddDate(0, 0, stats.IntervalDays)
	seenAt := now
	stats.LastSeenAt = &seenAt
}

// MarkSeen records that the given cases were shown to the user without
// an answer. It is idempotent and creates a minimal row for unseen
// cases so the cooldown applies to them too.
func (u *Updater) MarkSeen(ctx context.Context, userID uuid.UUID, caseIDs []uuid.UUID, now time.Time) error {
	for _, caseID := range caseIDs {
		err := u.markSeenOnce(ctx, userID, caseID, now)
		if errors.Is(err, ErrConflict) {
			err = u.markSeenOnce(ctx, userID, caseID, now)
		}
		if err != nil {
			return fmt.Errorf("failed to mark case %s seen: %w", caseID, err)
		}
	}
	return nil
}

func (u *Updater) markSeenOnce(ctx context.Context, userID, caseID uuid.UUID, now time.Time) error {
	stats, err := u.store.GetStats(ctx, userID, caseID)
	if errors.Is(err, ErrNotFound) {
		stats = newStats(userID, caseID, now)
	} else if err != nil {
		return err
	}

	seenAt := now
	stats.LastSeenAt = &seenAt
	return u.store.UpsertStats(ctx, stats)
}

func clampEase(ef float64) float64 {
	if ef < MinEaseFactor {
		return MinEaseFactor
	}
	if ef > MaxEaseFactor {
		return MaxEaseFactor
	}
	return ef
}
