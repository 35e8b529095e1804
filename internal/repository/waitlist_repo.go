package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
)

// WaitlistRepository handles database operations for waitlist signups
type WaitlistRepository struct {
	db *database.DB
}

// NewWaitlistRepository creates a new waitlist repository
func NewWaitlistRepository(db *database.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// AddEntry records a waitlist signup
func (r *WaitlistRepository) AddEntry(email string) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	query := `INSERT INTO waitlist (id, email, created_at) VALUES (?, ?, ?)`
	_, err := r.db.Exec(query, entry.ID.String(), entry.Email, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add waitlist entry: %w", err)
	}
	return entry, nil
}

// GetEntryByEmail retrieves an entry by email.
// Returns nil, nil when the email has not signed up.
func (r *WaitlistRepository) GetEntryByEmail(email string) (*models.WaitlistEntry, error) {
	query := `SELECT id, email, created_at FROM waitlist WHERE email = ?`
	var (
		entry models.WaitlistEntry
		id    string
	)
	err := r.db.QueryRow(query, email).Scan(&id, &entry.Email, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	entry.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid waitlist id %q: %w", id, err)
	}
	return &entry, nil
}

// CountEntries returns the number of waitlist signups
func (r *WaitlistRepository) CountEntries() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM waitlist`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return count, nil
}
