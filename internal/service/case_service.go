package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
	"pigmemento/internal/scheduler"
	"pigmemento/internal/validation"
)

// CaseService serves the quiz feed: scheduled case selection plus
// single-case lookup
type CaseService struct {
	caseRepo *repository.CaseRepository
	selector *scheduler.Selector
	updater  *scheduler.Updater
}

// NewCaseService creates a new case service
func NewCaseService(caseRepo *repository.CaseRepository, selector *scheduler.Selector, updater *scheduler.Updater) *CaseService {
	return &CaseService{
		caseRepo: caseRepo,
		selector: selector,
		updater:  updater,
	}
}

// NextCases picks the next cases for a user and marks them as seen so
// an immediate re-request does not hand back the same ones. Pass
// uuid.Nil for anonymous users, who get a plain page instead of a
// scheduled selection.
func (s *CaseService) NextCases(ctx context.Context, userID uuid.UUID, difficulty string, limit int) ([]models.Case, error) {
	if err := validation.ValidateDifficulty(difficulty); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ids, err := s.selector.SelectCases(ctx, userID, difficulty, limit, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select cases: %w", err)
	}

	byID, err := s.caseRepo.GetCasesByIDs(ids)
	if err != nil {
		return nil, err
	}
	ordered := make([]models.Case, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, *c)
		}
	}

	if userID != uuid.Nil && len(ids) > 0 {
		// Selection already happened, so a failed seen-marking only
		// weakens the cooldown. Log it and serve the cases anyway.
		if err := s.updater.MarkSeen(ctx, userID, ids, now); err != nil {
			log.Printf("Failed to mark cases seen for user %s: %v", userID, err)
		}
	}
	return ordered, nil
}

// GetCase loads one case with its teaching points.
// Returns nil, nil when the case does not exist.
func (s *CaseService) GetCase(id uuid.UUID) (*models.Case, error) {
	return s.caseRepo.GetCaseByID(id)
}
