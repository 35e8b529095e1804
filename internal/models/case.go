package models

import (
	"time"

	"github.com/google/uuid"
)

// Case labels
const (
	LabelBenign    = "benign"
	LabelMalignant = "malignant"
	LabelUnknown   = "unknown"
)

// Case difficulties
const (
	DifficultyEasy = "easy"
	DifficultyMed  = "med"
	DifficultyHard = "hard"
)

// Case represents one de-identified dermatology case
type Case struct {
	ID             uuid.UUID `json:"id"`
	ImageURL       string    `json:"image_url"`
	Label          string    `json:"label"`
	Difficulty     string    `json:"difficulty"`
	PatientAge     int       `json:"patient_age"`
	Site           string    `json:"site"`
	ClinicalNote   string    `json:"clinical_note"`
	CreatedAt      time.Time `json:"created_at"`
	TeachingPoints []TeachingPoint `json:"teaching_points,omitempty"`
}

// TeachingPoint is one feedback bullet shown after a case is answered
type TeachingPoint struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"case_id"`
	Text      string    `json:"text"`
	SortOrder int       `json:"sort_order"`
}

// CaseSummary is the minimal projection the scheduler works with
type CaseSummary struct {
	ID         uuid.UUID `json:"id"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidLabel reports whether s is an answerable case label
func ValidLabel(s string) bool {
	return s == LabelBenign || s == LabelMalignant
}

// ValidDifficulty reports whether s is a recognized difficulty
func ValidDifficulty(s string) bool {
	return s == DifficultyEasy || s == DifficultyMed || s == DifficultyHard
}
