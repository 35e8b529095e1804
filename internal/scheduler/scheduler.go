// Package scheduler decides when a case becomes due again for a user
// and which cases to serve next. It owns the per-(user, case) stats
// rows and nothing else; persistence is abstracted behind Store so the
// package can be tested against MemoryStore.
package scheduler

import (
	"context"
	"errors"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

// Scheduling constants. Ease factor follows the SM-2 family: it grows
// slowly on correct answers and drops sharply on mistakes, always
// clamped to [MinEaseFactor, MaxEaseFactor].
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0

	// Answers faster than this earn the larger ease bonus
	FastAnswerMs = 2500

	// A case shown within this window is never re-surfaced, even if due
	CooldownWindow = 5 * time.Minute

	// A wrong answer boosts resurfacing for this long
	RecentlyWrongWindow = 7 * 24 * time.Hour
)

var (
	// ErrNotFound is returned by Store when no stats row exists for the pair
	ErrNotFound = errors.New("scheduler: stats not found")

	// ErrConflict is returned by Store when a concurrent write won the row
	ErrConflict = errors.New("scheduler: write conflict")
)

// Store is the persistence collaborator the scheduler depends on.
// GetStats returns ErrNotFound for an absent row. UpsertStats must be
// atomic per row; it may return ErrConflict if it detects a concurrent
// writer, in which case the Updater reloads and retries once.
type Store interface {
	GetStats(ctx context.Context, userID, caseID uuid.UUID) (*models.UserCaseStats, error)
	UpsertStats(ctx context.Context, stats *models.UserCaseStats) error
	QueryCases(ctx context.Context, difficulty string) ([]models.CaseSummary, error)
	QueryStatsForUser(ctx context.Context, userID uuid.UUID) ([]models.UserCaseStats, error)
}

// newStats seeds a stats row for a pair that has never been attempted.
// A fresh row is immediately due.
func newStats(userID, caseID uuid.UUID, now time.Time) *models.UserCaseStats {
	return &models.UserCaseStats{
		UserID:     userID,
		CaseID:     caseID,
		EaseFactor: DefaultEaseFactor,
		NextDueAt:  now,
	}
}
