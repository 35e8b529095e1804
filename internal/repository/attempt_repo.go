package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
)

// AttemptRepository handles database operations for the append-only
// attempts log
type AttemptRepository struct {
	db *database.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// CreateAttempt appends one answer event
func (r *AttemptRepository) CreateAttempt(a *models.Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO attempts (id, user_id, case_id, answer, correct, time_to_answer_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		a.ID.String(),
		a.UserID.String(),
		a.CaseID.String(),
		a.Answer,
		a.Correct,
		a.TimeToAnswerMs,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// CountAttemptsSince counts a user's attempts at or after the cutoff,
// used to enforce the daily attempt limit
func (r *AttemptRepository) CountAttemptsSince(userID uuid.UUID, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM attempts WHERE user_id = ? AND created_at >= ?`
	var count int
	err := r.db.QueryRow(query, userID.String(), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// GetRecentAttempts returns a user's attempts newest first. When after
// is non-nil the page starts strictly before that (created_at, id)
// position, which keeps paging stable as new attempts arrive.
func (r *AttemptRepository) GetRecentAttempts(userID uuid.UUID, limit int, afterCreatedAt *time.Time, afterID *uuid.UUID) ([]models.Attempt, error) {
	query := `
		SELECT id, user_id, case_id, answer, correct, time_to_answer_ms, created_at
		FROM attempts
		WHERE user_id = ?
	`
	args := []interface{}{userID.String()}
	if afterCreatedAt != nil && afterID != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		args = append(args, *afterCreatedAt, *afterCreatedAt, afterID.String())
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var (
			a                  models.Attempt
			id, userID, caseID string
		)
		if err := rows.Scan(&id, &userID, &caseID, &a.Answer, &a.Correct, &a.TimeToAnswerMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid attempt id %q: %w", id, err)
		}
		a.UserID, err = uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		a.CaseID, err = uuid.Parse(caseID)
		if err != nil {
			return nil, fmt.Errorf("invalid case id %q: %w", caseID, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetAttemptResults joins a user's attempts with the true label of
// each case, oldest first, for progress metrics
func (r *AttemptRepository) GetAttemptResults(userID uuid.UUID) ([]models.AttemptResult, error) {
	query := `
		SELECT a.answer, a.correct, c.label, a.time_to_answer_ms, a.created_at
		FROM attempts a
		JOIN cases c ON c.id = a.case_id
		WHERE a.user_id = ?
		ORDER BY a.created_at ASC, a.id ASC
	`
	rows, err := r.db.Query(query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt results: %w", err)
	}
	defer rows.Close()

	var results []models.AttemptResult
	for rows.Next() {
		var res models.AttemptResult
		if err := rows.Scan(&res.Answer, &res.Correct, &res.Label, &res.TimeToAnswerMs, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
