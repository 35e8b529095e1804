package scheduler

import (
	"context"
	"sync"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

type statsKey struct {
	userID uuid.UUID
	caseID uuid.UUID
}

// MemoryStore is an in-memory Store used in tests and anywhere a
// database is unwanted. All methods are safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	stats map[statsKey]models.UserCaseStats
	cases []models.CaseSummary
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stats: make(map[statsKey]models.UserCaseStats),
	}
}

// AddCase registers a case so QueryCases can return it
func (m *MemoryStore) AddCase(id uuid.UUID, difficulty string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases = append(m.cases, models.CaseSummary{ID: id, Difficulty: difficulty, CreatedAt: createdAt})
}

// GetStats returns the stats row for the pair, or ErrNotFound
func (m *MemoryStore) GetStats(ctx context.Context, userID, caseID uuid.UUID) (*models.UserCaseStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats, ok := m.stats[statsKey{userID: userID, caseID: caseID}]
	if !ok {
		return nil, ErrNotFound
	}
	copied := stats
	return &copied, nil
}

// UpsertStats stores a copy of the row, replacing any existing one
func (m *MemoryStore) UpsertStats(ctx context.Context, stats *models.UserCaseStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats[statsKey{userID: stats.UserID, caseID: stats.CaseID}] = *stats
	return nil
}

// QueryCases returns case summaries, filtered by difficulty when non-empty
func (m *MemoryStore) QueryCases(ctx context.Context, difficulty string) ([]models.CaseSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.CaseSummary
	for _, c := range m.cases {
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// QueryStatsForUser returns copies of all stats rows for the user
func (m *MemoryStore) QueryStatsForUser(ctx context.Context, userID uuid.UUID) ([]models.UserCaseStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.UserCaseStats
	for key, stats := range m.stats {
		if key.userID == userID {
			result = append(result, stats)
		}
	}
	return result, nil
}
