package models

import (
	"time"

	"github.com/google/uuid"
)

// UserCaseStats tracks spaced-repetition scheduling state for one
// (user, case) pair. Exactly one row exists per pair, created lazily
// on the first answer or the first seen marking.
type UserCaseStats struct {
	UserID uuid.UUID `json:"user_id"`
	CaseID uuid.UUID `json:"case_id"`

	EaseFactor    float64   `json:"ease_factor"`
	IntervalDays  int       `json:"interval_days"`
	CorrectStreak int       `json:"correct_streak"`
	NextDueAt     time.Time `json:"next_due_at"`

	LastAttemptAt   *time.Time `json:"last_attempt_at,omitempty"`
	LastResult      *bool      `json:"last_result,omitempty"`
	LastLatencyMs   *int64     `json:"last_latency_ms,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	RecentlyWrongAt *time.Time `json:"recently_wrong_at,omitempty"`
}
