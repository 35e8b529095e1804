package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
)

// TokenRepository handles database operations for refresh tokens
type TokenRepository struct {
	db *database.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateToken stores a newly issued refresh token
func (r *TokenRepository) CreateToken(t *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, t.Token, t.UserID.String(), t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetToken retrieves a refresh token by its value.
// Returns nil, nil when the token does not exist.
func (r *TokenRepository) GetToken(token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token = ?
	`
	var (
		t         models.RefreshToken
		userID    string
		revokedAt sql.NullTime
	)
	err := r.db.QueryRow(query, token).Scan(&t.Token, &userID, &t.ExpiresAt, &t.CreatedAt, &revokedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	t.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}
	return &t, nil
}

// RevokeToken marks a refresh token as no longer redeemable
func (r *TokenRepository) RevokeToken(token string, at time.Time) error {
	query := `UPDATE refresh_tokens SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`
	_, err := r.db.Exec(query, at, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every live token a user holds
func (r *TokenRepository) RevokeAllForUser(userID uuid.UUID, at time.Time) error {
	query := `UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`
	_, err := r.db.Exec(query, at, userID.String())
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpiredTokens removes tokens past their expiry, returning how
// many were deleted
func (r *TokenRepository) DeleteExpiredTokens(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
