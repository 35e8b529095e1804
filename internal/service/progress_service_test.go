package service

import (
	"testing"
	"time"

	"pigmemento/internal/models"
)

var progressNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func result(label string, correct bool, timeMs int64, at time.Time) models.AttemptResult {
	answer := models.LabelBenign
	if (label == models.LabelMalignant) == correct {
		answer = models.LabelMalignant
	}
	return models.AttemptResult{
		Answer:         answer,
		Correct:        correct,
		Label:          label,
		TimeToAnswerMs: timeMs,
		CreatedAt:      at,
	}
}

func TestComputeProgressEmpty(t *testing.T) {
	p := ComputeProgress(nil, progressNow)

	if p.TotalAttempts != 0 || p.CorrectAttempts != 0 {
		t.Errorf("expected zero attempts, got %d/%d", p.CorrectAttempts, p.TotalAttempts)
	}
	if p.Accuracy != 0 || p.Sensitivity != 0 || p.Specificity != 0 {
		t.Errorf("expected zero rates, got %v %v %v", p.Accuracy, p.Sensitivity, p.Specificity)
	}
	if p.AvgTimeToAnswerMs != 0 {
		t.Errorf("expected zero avg time, got %d", p.AvgTimeToAnswerMs)
	}
	if p.DayStreak != 0 {
		t.Errorf("expected zero streak, got %d", p.DayStreak)
	}
	if len(p.Trend) != TrendDays {
		t.Fatalf("expected %d trend days, got %d", TrendDays, len(p.Trend))
	}
	for _, ds := range p.Trend {
		if ds.Attempts != 0 || ds.Correct != 0 {
			t.Errorf("day %s: expected empty bucket, got %d/%d", ds.Date, ds.Correct, ds.Attempts)
		}
	}
}

func TestComputeProgressRates(t *testing.T) {
	results := []models.AttemptResult{
		result(models.LabelMalignant, true, 1000, progressNow),
		result(models.LabelMalignant, false, 2000, progressNow),
		result(models.LabelBenign, true, 3000, progressNow),
		result(models.LabelBenign, true, 4000, progressNow),
	}

	p := ComputeProgress(results, progressNow)

	if p.TotalAttempts != 4 || p.CorrectAttempts != 3 {
		t.Errorf("expected 3/4 correct, got %d/%d", p.CorrectAttempts, p.TotalAttempts)
	}
	if p.Accuracy != 0.75 {
		t.Errorf("expected accuracy 0.75, got %v", p.Accuracy)
	}
	if p.Sensitivity != 0.5 {
		t.Errorf("expected sensitivity 0.5, got %v", p.Sensitivity)
	}
	if p.Specificity != 1.0 {
		t.Errorf("expected specificity 1.0, got %v", p.Specificity)
	}
	if p.AvgTimeToAnswerMs != 2500 {
		t.Errorf("expected avg time 2500, got %d", p.AvgTimeToAnswerMs)
	}
}

func TestComputeProgressOneSidedRates(t *testing.T) {
	// Only benign attempts: sensitivity has no denominator and stays zero
	results := []models.AttemptResult{
		result(models.LabelBenign, true, 1000, progressNow),
	}

	p := ComputeProgress(results, progressNow)

	if p.Sensitivity != 0 {
		t.Errorf("expected sensitivity 0 with no malignant attempts, got %v", p.Sensitivity)
	}
	if p.Specificity != 1.0 {
		t.Errorf("expected specificity 1.0, got %v", p.Specificity)
	}
}

func TestDayStreak(t *testing.T) {
	day := func(daysAgo int) time.Time {
		return progressNow.AddDate(0, 0, -daysAgo)
	}

	tests := []struct {
		name     string
		attempts []time.Time
		expected int
	}{
		{"no attempts", nil, 0},
		{"today only", []time.Time{day(0)}, 1},
		{"today and yesterday", []time.Time{day(0), day(1)}, 2},
		{"yesterday but not today keeps streak", []time.Time{day(1), day(2), day(3)}, 3},
		{"gap two days ago breaks streak", []time.Time{day(0), day(2)}, 1},
		{"last practice two days ago", []time.Time{day(2), day(3)}, 0},
		{"multiple attempts one day", []time.Time{day(0), day(0), day(0)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results []models.AttemptResult
			for _, at := range tt.attempts {
				results = append(results, result(models.LabelBenign, true, 1000, at))
			}
			p := ComputeProgress(results, progressNow)
			if p.DayStreak != tt.expected {
				t.Errorf("expected streak %d, got %d", tt.expected, p.DayStreak)
			}
		})
	}
}

func TestTrendBuckets(t *testing.T) {
	results := []models.AttemptResult{
		result(models.LabelBenign, true, 1000, progressNow),
		result(models.LabelMalignant, false, 1000, progressNow.AddDate(0, 0, -3)),
		result(models.LabelBenign, true, 1000, progressNow.AddDate(0, 0, -3)),
		// Outside the window, must not appear anywhere
		result(models.LabelBenign, true, 1000, progressNow.AddDate(0, 0, -20)),
	}

	p := ComputeProgress(results, progressNow)

	if len(p.Trend) != TrendDays {
		t.Fatalf("expected %d trend days, got %d", TrendDays, len(p.Trend))
	}

	last := p.Trend[TrendDays-1]
	if last.Date != "2026-05-01" || last.Attempts != 1 || last.Correct != 1 {
		t.Errorf("unexpected bucket for today: %+v", last)
	}

	threeAgo := p.Trend[TrendDays-4]
	if threeAgo.Date != "2026-04-28" || threeAgo.Attempts != 2 || threeAgo.Correct != 1 {
		t.Errorf("unexpected bucket three days ago: %+v", threeAgo)
	}

	total := 0
	for _, ds := range p.Trend {
		total += ds.Attempts
	}
	if total != 3 {
		t.Errorf("expected 3 attempts inside the window, got %d", total)
	}
}
