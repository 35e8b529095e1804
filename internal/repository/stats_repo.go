package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
	"pigmemento/internal/scheduler"
)

// StatsRepository persists per-user scheduling state. It satisfies
// scheduler.Store so the scheduler core never touches SQL directly.
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats loads the scheduling row for one (user, case) pair.
// Returns scheduler.ErrNotFound when no row exists yet.
func (r *StatsRepository) GetStats(ctx context.Context, userID, caseID uuid.UUID) (*models.UserCaseStats, error) {
	query := `
		SELECT user_id, case_id, ease_factor, interval_days, correct_streak, next_due_at,
		       last_attempt_at, last_result, last_latency_ms, last_seen_at, recently_wrong_at
		FROM user_case_stats
		WHERE user_id = ? AND case_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, userID.String(), caseID.String())
	stats, err := scanStats(row)
	if err == sql.ErrNoRows {
		return nil, scheduler.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// UpsertStats atomically inserts or replaces the scheduling row for a
// (user, case) pair using the dialect's native upsert. Last writer wins.
func (r *StatsRepository) UpsertStats(ctx context.Context, stats *models.UserCaseStats) error {
	query := r.db.Dialect.UpsertUserCaseStats()
	_, err := r.db.ExecContext(ctx, query,
		stats.UserID.String(),
		stats.CaseID.String(),
		stats.EaseFactor,
		stats.IntervalDays,
		stats.CorrectStreak,
		stats.NextDueAt,
		nullTime(stats.LastAttemptAt),
		nullBool(stats.LastResult),
		nullInt64(stats.LastLatencyMs),
		nullTime(stats.LastSeenAt),
		nullTime(stats.RecentlyWrongAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stats: %w", err)
	}
	return nil
}

// QueryCases returns summaries of every case, optionally filtered by
// difficulty. Ordering is left to the scheduler.
func (r *StatsRepository) QueryCases(ctx context.Context, difficulty string) ([]models.CaseSummary, error) {
	query := `SELECT id, difficulty, created_at FROM cases`
	args := []interface{}{}
	if difficulty != "" {
		query += ` WHERE difficulty = ?`
		args = append(args, difficulty)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var summaries []models.CaseSummary
	for rows.Next() {
		var s models.CaseSummary
		var id string
		if err := rows.Scan(&id, &s.Difficulty, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case summary: %w", err)
		}
		s.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid case id %q: %w", id, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// QueryStatsForUser returns every scheduling row belonging to a user
func (r *StatsRepository) QueryStatsForUser(ctx context.Context, userID uuid.UUID) ([]models.UserCaseStats, error) {
	query := `
		SELECT user_id, case_id, ease_factor, interval_days, correct_streak, next_due_at,
		       last_attempt_at, last_result, last_latency_ms, last_seen_at, recently_wrong_at
		FROM user_case_stats
		WHERE user_id = ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var all []models.UserCaseStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		all = append(all, *stats)
	}
	return all, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStats(s scanner) (*models.UserCaseStats, error) {
	var (
		stats           models.UserCaseStats
		userID, caseID  string
		lastAttemptAt   sql.NullTime
		lastResult      sql.NullBool
		lastLatencyMs   sql.NullInt64
		lastSeenAt      sql.NullTime
		recentlyWrongAt sql.NullTime
	)
	err := s.Scan(
		&userID,
		&caseID,
		&stats.EaseFactor,
		&stats.IntervalDays,
		&stats.CorrectStreak,
		&stats.NextDueAt,
		&lastAttemptAt,
		&lastResult,
		&lastLatencyMs,
		&lastSeenAt,
		&recentlyWrongAt,
	)
	if err != nil {
		return nil, err
	}

	stats.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	stats.CaseID, err = uuid.Parse(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case id %q: %w", caseID, err)
	}

	if lastAttemptAt.Valid {
		stats.LastAttemptAt = &lastAttemptAt.Time
	}
	if lastResult.Valid {
		stats.LastResult = &lastResult.Bool
	}
	if lastLatencyMs.Valid {
		stats.LastLatencyMs = &lastLatencyMs.Int64
	}
	if lastSeenAt.Valid {
		stats.LastSeenAt = &lastSeenAt.Time
	}
	if recentlyWrongAt.Valid {
		stats.RecentlyWrongAt = &recentlyWrongAt.Time
	}
	return &stats, nil
}
