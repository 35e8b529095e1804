package scheduler

import (
	"context"
	"testing"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// conflictStore fails UpsertStats with ErrConflict a fixed number of
// times before delegating to the wrapped store.
type conflictStore struct {
	*MemoryStore
	conflicts int
}

func (s *conflictStore) UpsertStats(ctx context.Context, stats *models.UserCaseStats) error {
	if s.conflicts > 0 {
		s.conflicts--
		return ErrConflict
	}
	return s.MemoryStore.UpsertStats(ctx, stats)
}

func seedStats(t *testing.T, store Store, stats models.UserCaseStats) {
	t.Helper()
	if err := store.UpsertStats(context.Background(), &stats); err != nil {
		t.Fatalf("failed to seed stats: %v", err)
	}
}

func TestUpdateFirstAnswerCreatesRow(t *testing.T) {
	store := NewMemoryStore()
	updater := NewUpdater(store)
	userID := uuid.New()
	caseID := uuid.New()

	stats, err := updater.Update(context.Background(), userID, caseID, true, 1000, testNow)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if stats.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", stats.IntervalDays)
	}
	if stats.CorrectStreak != 1 {
		t.Errorf("CorrectStreak = %d, want 1", stats.CorrectStreak)
	}
	if stats.EaseFactor != 2.55 {
		t.Errorf("EaseFactor = %v, want 2.55", stats.EaseFactor)
	}
	wantDue := testNow.AddDate(0, 0, 1)
	if !stats.NextDueAt.Equal(wantDue) {
		t.Errorf("NextDueAt = %v, want %v", stats.NextDueAt, wantDue)
	}
	if stats.LastSeenAt == nil || !stats.LastSeenAt.Equal(testNow) {
		t.Errorf("LastSeenAt = %v, want %v", stats.LastSeenAt, testNow)
	}

	persisted, err := store.GetStats(context.Background(), userID, caseID)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if persisted.IntervalDays != 1 || persisted.EaseFactor != 2.55 {
		t.Errorf("persisted row = %+v, want interval 1 ease 2.55", persisted)
	}
}

func TestUpdateIncorrectAnswer(t *testing.T) {
	tests := []struct {
		name     string
		prior    *models.UserCaseStats
		wantEase float64
	}{
		{
			name:     "first answer wrong",
			prior:    nil,
			wantEase: 2.3,
		},
		{
			name: "resets streak and interval",
			prior: &models.UserCaseStats{
				EaseFactor:    2.7,
				IntervalDays:  14,
				CorrectStreak: 5,
				NextDueAt:     testNow.AddDate(0, 0, -1),
			},
			wantEase: 2.5,
		},
		{
			name: "ease floored at minimum",
			prior: &models.UserCaseStats{
				EaseFactor:    1.4,
				IntervalDays:  3,
				CorrectStreak: 2,
				NextDueAt:     testNow,
			},
			wantEase: 1.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			updater := NewUpdater(store)
			userID := uuid.New()
			caseID := uuid.New()

			if tt.prior != nil {
				tt.prior.UserID = userID
				tt.prior.CaseID = caseID
				seedStats(t, store, *tt.prior)
			}

			stats, err := updater.Update(context.Background(), userID, caseID, false, 3000, testNow)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			if stats.IntervalDays != 1 {
				t.Errorf("IntervalDays = %d, want 1", stats.IntervalDays)
			}
			if stats.CorrectStreak != 0 {
				t.Errorf("CorrectStreak = %d, want 0", stats.CorrectStreak)
			}
			if stats.RecentlyWrongAt == nil || !stats.RecentlyWrongAt.Equal(testNow) {
				t.Errorf("RecentlyWrongAt = %v, want %v", stats.RecentlyWrongAt, testNow)
			}
			if stats.EaseFactor != tt.wantEase {
				t.Errorf("EaseFactor = %v, want %v", stats.EaseFactor, tt.wantEase)
			}
			if !stats.NextDueAt.Equal(testNow.AddDate(0, 0, 1)) {
				t.Errorf("NextDueAt = %v, want %v", stats.NextDueAt, testNow.AddDate(0, 0, 1))
			}
		})
	}
}

func TestUpdateCorrectIntervalTiers(t *testing.T) {
	tests := []struct {
		name         string
		prevInterval int
		prevEase     float64
		wantInterval int
	}{
		{"interval zero goes to one day", 0, 2.5, 1},
		{"interval one goes to three days", 1, 2.5, 3},
		{"interval two multiplies by ease", 2, 2.5, 5},
		{"interval four multiplies by ease", 4, 2.5, 10},
		{"rounding is to nearest", 3, 2.5, 8}, // 7.5 rounds up
		{"low ease grows slowly", 10, 1.3, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			updater := NewUpdater(store)
			userID := uuid.New()
			caseID := uuid.New()

			seedStats(t, store, models.UserCaseStats{
				UserID:        userID,
				CaseID:        caseID,
				EaseFactor:    tt.prevEase,
				IntervalDays:  tt.prevInterval,
				CorrectStreak: 1,
				NextDueAt:     testNow,
			})

			stats, err := updater.Update(context.Background(), userID, caseID, true, 3000, testNow)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			if stats.IntervalDays != tt.wantInterval {
				t.Errorf("IntervalDays = %d, want %d", stats.IntervalDays, tt.wantInterval)
			}
			if stats.CorrectStreak != 2 {
				t.Errorf("CorrectStreak = %d, want 2", stats.CorrectStreak)
			}
			wantDue := testNow.AddDate(0, 0, tt.wantInterval)
			if !stats.NextDueAt.Equal(wantDue) {
				t.Errorf("NextDueAt = %v, want %v", stats.NextDueAt, wantDue)
			}
		})
	}
}

func TestUpdateEaseLatencyAdjustment(t *testing.T) {
	tests := []struct {
		name      string
		latencyMs int64
		wantEase  float64
	}{
		{"fast answer earns larger bonus", 1000, 2.55},
		{"boundary latency earns smaller bonus", 2500, 2.52},
		{"slow answer earns smaller bonus", 10000, 2.52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			updater := NewUpdater(store)
			userID := uuid.New()
			caseID := uuid.New()

			stats, err := updater.Update(context.Background(), userID, caseID, true, tt.latencyMs, testNow)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if stats.EaseFactor != tt.wantEase {
				t.Errorf("EaseFactor = %v, want %v", stats.EaseFactor, tt.wantEase)
			}
		})
	}
}

func TestEaseFactorStaysClamped(t *testing.T) {
	store := NewMemoryStore()
	updater := NewUpdater(store)
	userID := uuid.New()
	caseID := uuid.New()
	now := testNow

	// Repeated mistakes cannot push ease below the floor
	for i := 0; i < 20; i++ {
		stats, err := updater.Update(context.Background(), userID, caseID, false, 5000, now)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if stats.EaseFactor < MinEaseFactor {
			t.Fatalf("EaseFactor = %v below floor after %d wrong answers", stats.EaseFactor, i+1)
		}
		now = now.Add(time.Hour)
	}

	// Repeated fast correct answers cannot push ease above the cap
	for i := 0; i < 40; i++ {
		stats, err := updater.Update(context.Background(), userID, caseID, true, 500, now)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if stats.EaseFactor > MaxEaseFactor {
			t.Fatalf("EaseFactor = %v above cap after %d correct answers", stats.EaseFactor, i+1)
		}
		now = now.Add(time.Hour)
	}
}

func TestUpdateClampsNegativeLatency(t *testing.T) {
	store := NewMemoryStore()
	updater := NewUpdater(store)

	stats, err := updater.Update(context.Background(), uuid.New(), uuid.New(), true, -50, testNow)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if stats.LastLatencyMs == nil || *stats.LastLatencyMs != 0 {
		t.Errorf("LastLatencyMs = %v, want 0", stats.LastLatencyMs)
	}
}

func TestUpdateRetriesOnceOnConflict(t *testing.T) {
	t.Run("single conflict succeeds", func(t *testing.T) {
		store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: 1}
		updater := NewUpdater(store)

		stats, err := updater.Update(context.Background(), uuid.New(), uuid.New(), true, 1000, testNow)
		if err != nil {
			t.Fatalf("Update() error = %v, want retry to succeed", err)
		}
		if stats.IntervalDays != 1 {
			t.Errorf("IntervalDays = %d, want 1", stats.IntervalDays)
		}
	})

	t.Run("repeated conflict surfaces error", func(t *testing.T) {
		store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: 2}
		updater := NewUpdater(store)

		if _, err := updater.Update(context.Background(), uuid.New(), uuid.New(), true, 1000, testNow); err == nil {
			t.Fatal("Update() expected error after second conflict")
		}
	})
}

func TestReplayDeterminism(t *testing.T) {
	type event struct {
		correct   bool
		latencyMs int64
		at        time.Time
	}
	events := []event{
		{true, 1200, testNow},
		{true, 3000, testNow.Add(24 * time.Hour)},
		{false, 8000, testNow.Add(96 * time.Hour)},
		{true, 900, testNow.Add(120 * time.Hour)},
		{true, 2000, testNow.Add(200 * time.Hour)},
	}

	userID := uuid.New()
	caseID := uuid.New()

	run := func() *models.UserCaseStats {
		store := NewMemoryStore()
		updater := NewUpdater(store)
		var last *models.UserCaseStats
		for _, e := range events {
			stats, err := updater.Update(context.Background(), userID, caseID, e.correct, e.latencyMs, e.at)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			last = stats
		}
		return last
	}

	first := run()
	second := run()

	if first.EaseFactor != second.EaseFactor ||
		first.IntervalDays != second.IntervalDays ||
		first.CorrectStreak != second.CorrectStreak ||
		!first.NextDueAt.Equal(second.NextDueAt) {
		t.Errorf("replay diverged: first %+v, second %+v", first, second)
	}
}

func TestMarkSeen(t *testing.T) {
	store := NewMemoryStore()
	updater := NewUpdater(store)
	userID := uuid.New()
	unseen := uuid.New()
	attempted := uuid.New()

	seedStats(t, store, models.UserCaseStats{
		UserID:        userID,
		CaseID:        attempted,
		EaseFactor:    2.7,
		IntervalDays:  3,
		CorrectStreak: 2,
		NextDueAt:     testNow.AddDate(0, 0, 3),
	})

	if err := updater.MarkSeen(context.Background(), userID, []uuid.UUID{unseen, attempted}, testNow); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}

	created, err := store.GetStats(context.Background(), userID, unseen)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if created.LastSeenAt == nil || !created.LastSeenAt.Equal(testNow) {
		t.Errorf("LastSeenAt = %v, want %v", created.LastSeenAt, testNow)
	}
	if created.EaseFactor != DefaultEaseFactor || created.IntervalDays != 0 || created.CorrectStreak != 0 {
		t.Errorf("created row = %+v, want seed defaults", created)
	}

	existing, err := store.GetStats(context.Background(), userID, attempted)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if existing.IntervalDays != 3 || existing.CorrectStreak != 2 || existing.EaseFactor != 2.7 {
		t.Errorf("MarkSeen changed scheduling state: %+v", existing)
	}
	if existing.LastSeenAt == nil || !existing.LastSeenAt.Equal(testNow) {
		t.Errorf("LastSeenAt = %v, want %v", existing.LastSeenAt, testNow)
	}

	// Idempotent: repeating the call leaves the same state
	if err := updater.MarkSeen(context.Background(), userID, []uuid.UUID{unseen}, testNow); err != nil {
		t.Fatalf("MarkSeen() repeat error = %v", err)
	}
	repeat, err := store.GetStats(context.Background(), userID, unseen)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if !repeat.LastSeenAt.Equal(testNow) || repeat.IntervalDays != 0 {
		t.Errorf("repeat MarkSeen changed row: %+v", repeat)
	}
}
