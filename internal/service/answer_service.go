package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
	"pigmemento/internal/scheduler"
	"pigmemento/internal/validation"
)

// DailyAttemptLimit caps how many cases a user may answer per UTC day
const DailyAttemptLimit = 10

var (
	ErrCaseNotFound      = errors.New("case not found")
	ErrDailyLimitReached = errors.New("daily attempt limit reached")
)

// AnswerFeedback is what the user learns after answering a case
type AnswerFeedback struct {
	Attempt        *models.Attempt        `json:"attempt"`
	Correct        bool                   `json:"correct"`
	CorrectLabel   string                 `json:"correct_label"`
	TeachingPoints []models.TeachingPoint `json:"teaching_points"`
}

// AnswerService grades answers, records attempts and feeds results
// into the scheduler
type AnswerService struct {
	caseRepo    *repository.CaseRepository
	attemptRepo *repository.AttemptRepository
	updater     *scheduler.Updater
}

// NewAnswerService creates a new answer service
func NewAnswerService(caseRepo *repository.CaseRepository, attemptRepo *repository.AttemptRepository, updater *scheduler.Updater) *AnswerService {
	return &AnswerService{
		caseRepo:    caseRepo,
		attemptRepo: attemptRepo,
		updater:     updater,
	}
}

// SubmitAnswer grades one answer. The attempt record is the source of
// truth and is written before the scheduler update; if the scheduler
// update fails the attempt still stands and the failure is only logged.
func (s *AnswerService) SubmitAnswer(ctx context.Context, userID, caseID uuid.UUID, answer string, timeToAnswerMs int64) (*AnswerFeedback, error) {
	answer = validation.NormalizeAnswer(answer)
	if err := validation.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	if timeToAnswerMs < 0 {
		timeToAnswerMs = 0
	}

	c, err := s.caseRepo.GetCaseByID(caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCaseNotFound
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.attemptRepo.CountAttemptsSince(userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily limit: %w", err)
	}
	if count >= DailyAttemptLimit {
		return nil, ErrDailyLimitReached
	}

	correct := answer == c.Label
	attempt := &models.Attempt{
		ID:             uuid.New(),
		UserID:         userID,
		CaseID:         caseID,
		Answer:         answer,
		Correct:        correct,
		TimeToAnswerMs: timeToAnswerMs,
		CreatedAt:      now,
	}
	if err := s.attemptRepo.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	if _, err := s.updater.Update(ctx, userID, caseID, correct, timeToAnswerMs, now); err != nil {
		log.Printf("Failed to update scheduling stats for user %s case %s: %v", userID, caseID, err)
	}

	return &AnswerFeedback{
		Attempt:        attempt,
		Correct:        correct,
		CorrectLabel:   c.Label,
		TeachingPoints: c.TeachingPoints,
	}, nil
}

// RecentAttempts returns a page of the user's attempts, newest first
func (s *AnswerService) RecentAttempts(userID uuid.UUID, limit int, afterCreatedAt *time.Time, afterID *uuid.UUID) ([]models.Attempt, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return s.attemptRepo.GetRecentAttempts(userID, limit, afterCreatedAt, afterID)
}
