package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type seedCase struct {
	imageURL     string
	label        string
	difficulty   string
	patientAge   int
	site         string
	clinicalNote string
	points       []string
}

// demoCases is a small starter set so a fresh install has something to
// drill against before real cases are loaded.
var demoCases = []seedCase{
	{
		imageURL:     "https://cdn.pigmemento.app/demo/nevus-01.jpg",
		label:        "benign",
		difficulty:   "easy",
		patientAge:   34,
		site:         "back",
		clinicalNote: "Stable pigmented lesion, present for years per patient.",
		points: []string{
			"Symmetry and even pigmentation favour a benign nevus.",
			"A long stable history lowers suspicion.",
		},
	},
	{
		imageURL:     "https://cdn.pigmemento.app/demo/melanoma-01.jpg",
		label:        "malignant",
		difficulty:   "med",
		patientAge:   61,
		site:         "calf",
		clinicalNote: "New lesion noticed three months ago, darkening.",
		points: []string{
			"Asymmetry and colour variegation are red flags.",
			"Recent change in an adult is the single strongest clue.",
		},
	},
	{
		imageURL:     "https://cdn.pigmemento.app/demo/seb-k-01.jpg",
		label:        "benign",
		difficulty:   "hard",
		patientAge:   72,
		site:         "temple",
		clinicalNote: "Waxy raised lesion, multiple similar lesions elsewhere.",
		points: []string{
			"Stuck-on appearance suggests seborrheic keratosis.",
			"Multiple similar lesions support a benign pattern.",
		},
	},
	{
		imageURL:     "https://cdn.pigmemento.app/demo/melanoma-02.jpg",
		label:        "malignant",
		difficulty:   "hard",
		patientAge:   48,
		site:         "shoulder",
		clinicalNote: "Irregular border, patient reports occasional itching.",
		points: []string{
			"Border irregularity plus symptoms warrants referral.",
		},
	},
}

// SeedDemoCases inserts the demo case set when the cases table is
// empty. Safe to call on every startup.
func (db *DB) SeedDemoCases() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM cases").Scan(&count); err != nil {
		return fmt.Errorf("failed to count cases: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, c := range demoCases {
		caseID := uuid.New()
		_, err := db.Exec(`
			INSERT INTO cases (id, image_url, label, difficulty, patient_age, site, clinical_note, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, caseID.String(), c.imageURL, c.label, c.difficulty, c.patientAge, c.site, c.clinicalNote, now)
		if err != nil {
			return fmt.Errorf("failed to seed case: %w", err)
		}

		for i, text := range c.points {
			_, err := db.Exec(`
				INSERT INTO teaching_points (id, case_id, text, sort_order)
				VALUES (?, ?, ?, ?)
			`, uuid.New().String(), caseID.String(), text, i)
			if err != nil {
				return fmt.Errorf("failed to seed teaching point: %w", err)
			}
		}
	}

	return nil
}
