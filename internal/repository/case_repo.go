package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
)

// CaseRepository handles database operations for cases and their
// teaching points
type CaseRepository struct {
	db *database.DB
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *database.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// CreateCase inserts a new case together with its teaching points in
// one transaction
func (r *CaseRepository) CreateCase(c *models.Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cases (id, image_url, label, difficulty, patient_age, site, clinical_note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, c.ID.String(), c.ImageURL, c.Label, c.Difficulty, c.PatientAge, c.Site, c.ClinicalNote, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	for i := range c.TeachingPoints {
		tp := &c.TeachingPoints[i]
		tp.CaseID = c.ID
		if err := addTeachingPoint(tx, tp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateCase updates the editable fields of a case and replaces its
// teaching points in one transaction
func (r *CaseRepository) UpdateCase(c *models.Case) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE cases
		SET image_url = ?, label = ?, difficulty = ?, patient_age = ?, site = ?, clinical_note = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query, c.ImageURL, c.Label, c.Difficulty, c.PatientAge, c.Site, c.ClinicalNote, c.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`DELETE FROM teaching_points WHERE case_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("failed to replace teaching points: %w", err)
	}
	for i := range c.TeachingPoints {
		tp := &c.TeachingPoints[i]
		tp.CaseID = c.ID
		if err := addTeachingPoint(tx, tp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteCase removes a case. Teaching points, attempts and stats rows
// go with it via ON DELETE CASCADE.
func (r *CaseRepository) DeleteCase(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM cases WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetCaseByID retrieves a case with its teaching points in sort order.
// Returns nil, nil when the case does not exist.
func (r *CaseRepository) GetCaseByID(id uuid.UUID) (*models.Case, error) {
	query := `
		SELECT id, image_url, label, difficulty, patient_age, site, clinical_note, created_at
		FROM cases
		WHERE id = ?
	`
	c, err := scanCase(r.db.QueryRow(query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	c.TeachingPoints, err = r.GetTeachingPoints(c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCasesByIDs retrieves multiple cases keyed by ID. Missing IDs are
// simply absent from the map.
func (r *CaseRepository) GetCasesByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Case, error) {
	found := make(map[uuid.UUID]*models.Case, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}
	query := fmt.Sprintf(`
		SELECT id, image_url, label, difficulty, patient_age, site, clinical_note, created_at
		FROM cases
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		found[c.ID] = c
	}
	return found, rows.Err()
}

// ListCases returns cases ordered newest first, optionally filtered by
// difficulty. limit <= 0 means no limit.
func (r *CaseRepository) ListCases(difficulty string, limit int) ([]models.Case, error) {
	query := `
		SELECT id, image_url, label, difficulty, patient_age, site, clinical_note, created_at
		FROM cases
	`
	args := []interface{}{}
	if difficulty != "" {
		query += ` WHERE difficulty = ?`
		args = append(args, difficulty)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

// GetTeachingPoints returns a case's teaching points ordered by
// sort_order
func (r *CaseRepository) GetTeachingPoints(caseID uuid.UUID) ([]models.TeachingPoint, error) {
	query := `
		SELECT id, case_id, text, sort_order
		FROM teaching_points
		WHERE case_id = ?
		ORDER BY sort_order, id
	`
	rows, err := r.db.Query(query, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get teaching points: %w", err)
	}
	defer rows.Close()

	var points []models.TeachingPoint
	for rows.Next() {
		var (
			tp      models.TeachingPoint
			id, cid string
		)
		if err := rows.Scan(&id, &cid, &tp.Text, &tp.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan teaching point: %w", err)
		}
		tp.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid teaching point id %q: %w", id, err)
		}
		tp.CaseID, err = uuid.Parse(cid)
		if err != nil {
			return nil, fmt.Errorf("invalid case id %q: %w", cid, err)
		}
		points = append(points, tp)
	}
	return points, rows.Err()
}

func addTeachingPoint(tx database.DBTX, tp *models.TeachingPoint) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	query := `
		INSERT INTO teaching_points (id, case_id, text, sort_order)
		VALUES (?, ?, ?, ?)
	`
	_, err := tx.Exec(query, tp.ID.String(), tp.CaseID.String(), tp.Text, tp.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to create teaching point: %w", err)
	}
	return nil
}

func scanCase(s scanner) (*models.Case, error) {
	var (
		c  models.Case
		id string
	)
	err := s.Scan(&id, &c.ImageURL, &c.Label, &c.Difficulty, &c.PatientAge, &c.Site, &c.ClinicalNote, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid case id %q: %w", id, err)
	}
	return &c, nil
}
