package models

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is an immutable record of one answer event
type Attempt struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	CaseID         uuid.UUID `json:"case_id"`
	Answer         string    `json:"answer"`
	Correct        bool      `json:"correct"`
	TimeToAnswerMs int64     `json:"time_to_answer_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// AttemptResult joins an attempt with the true label of its case,
// used for progress metrics
type AttemptResult struct {
	Answer         string
	Correct        bool
	Label          string
	TimeToAnswerMs int64
	CreatedAt      time.Time
}
