package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
)

// TrendDays is how many days of history the accuracy trend covers
const TrendDays = 14

// DayStat is one day's slice of the accuracy trend
type DayStat struct {
	Date     string `json:"date"`
	Attempts int    `json:"attempts"`
	Correct  int    `json:"correct"`
}

// Progress summarizes a user's performance across all attempts
type Progress struct {
	TotalAttempts     int       `json:"total_attempts"`
	CorrectAttempts   int       `json:"correct_attempts"`
	Accuracy          float64   `json:"accuracy"`
	Sensitivity       float64   `json:"sensitivity"`
	Specificity       float64   `json:"specificity"`
	AvgTimeToAnswerMs int64     `json:"avg_time_to_answer_ms"`
	DayStreak         int       `json:"day_streak"`
	DueCount          int       `json:"due_count"`
	Trend             []DayStat `json:"trend"`
}

// ProgressService computes performance metrics from the attempts log
type ProgressService struct {
	attemptRepo *repository.AttemptRepository
	statsRepo   *repository.StatsRepository
}

// NewProgressService creates a new progress service
func NewProgressService(attemptRepo *repository.AttemptRepository, statsRepo *repository.StatsRepository) *ProgressService {
	return &ProgressService{
		attemptRepo: attemptRepo,
		statsRepo:   statsRepo,
	}
}

// GetProgress returns the user's full progress summary
func (s *ProgressService) GetProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	results, err := s.attemptRepo.GetAttemptResults(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	progress := ComputeProgress(results, now)

	stats, err := s.statsRepo.QueryStatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	for _, st := range stats {
		if !st.NextDueAt.After(now) {
			progress.DueCount++
		}
	}
	return progress, nil
}

// ComputeProgress derives all attempt-based metrics. Sensitivity is
// accuracy on malignant cases, specificity accuracy on benign ones;
// each ratio is zero when its denominator is zero.
func ComputeProgress(results []models.AttemptResult, now time.Time) *Progress {
	progress := &Progress{}

	var (
		totalTimeMs                 int64
		malignant, malignantCorrect int
		benign, benignCorrect       int
		days                        = make(map[string]bool)
	)
	for _, r := range results {
		progress.TotalAttempts++
		if r.Correct {
			progress.CorrectAttempts++
		}
		totalTimeMs += r.TimeToAnswerMs
		days[r.CreatedAt.UTC().Format("2006-01-02")] = true

		switch r.Label {
		case models.LabelMalignant:
			malignant++
			if r.Correct {
				malignantCorrect++
			}
		case models.LabelBenign:
			benign++
			if r.Correct {
				benignCorrect++
			}
		}
	}

	if progress.TotalAttempts > 0 {
		progress.Accuracy = float64(progress.CorrectAttempts) / float64(progress.TotalAttempts)
		progress.AvgTimeToAnswerMs = totalTimeMs / int64(progress.TotalAttempts)
	}
	if malignant > 0 {
		progress.Sensitivity = float64(malignantCorrect) / float64(malignant)
	}
	if benign > 0 {
		progress.Specificity = float64(benignCorrect) / float64(benign)
	}

	progress.DayStreak = dayStreak(days, now)
	progress.Trend = trend(results, now)
	return progress
}

// dayStreak counts consecutive days with at least one attempt. A
// streak survives until the end of the day after the last practice, so
// practicing yesterday but not yet today still counts.
func dayStreak(days map[string]bool, now time.Time) int {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func trend(results []models.AttemptResult, now time.Time) []DayStat {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(TrendDays - 1))

	byDate := make(map[string]*DayStat, TrendDays)
	stats := make([]DayStat, TrendDays)
	for i := 0; i < TrendDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		stats[i] = DayStat{Date: date}
		byDate[date] = &stats[i]
	}

	for _, r := range results {
		if ds, ok := byDate[r.CreatedAt.UTC().Format("2006-01-02")]; ok {
			ds.Attempts++
			if r.Correct {
				ds.Correct++
			}
		}
	}
	return stats
}
