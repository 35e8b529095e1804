package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/database"
	"pigmemento/internal/models"
	"pigmemento/internal/repository"
)

// BackupData is the portable on-disk backup format. It is plain JSON
// so a backup taken on sqlite restores into postgres or mysql.
// Refresh tokens are deliberately excluded: they are short-lived
// credentials, not data.
type BackupData struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Users      []UserBackup           `json:"users"`
	Cases      []models.Case          `json:"cases"`
	Attempts   []models.Attempt       `json:"attempts"`
	Stats      []models.UserCaseStats `json:"stats"`
	Waitlist   []models.WaitlistEntry `json:"waitlist"`
}

// UserBackup is a user record including the password hash, which the
// regular user model never serializes
type UserBackup struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BackupService exports and restores the whole database as JSON
type BackupService struct {
	db        *database.DB
	caseRepo  *repository.CaseRepository
	statsRepo *repository.StatsRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:        db,
		caseRepo:  repository.NewCaseRepository(db),
		statsRepo: repository.NewStatsRepository(db),
	}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportCases(backup); err != nil {
		return fmt.Errorf("failed to export cases: %w", err)
	}
	if err := s.exportAttempts(backup); err != nil {
		return fmt.Errorf("failed to export attempts: %w", err)
	}
	if err := s.exportStats(backup); err != nil {
		return fmt.Errorf("failed to export stats: %w", err)
	}
	if err := s.exportWaitlist(backup); err != nil {
		return fmt.Errorf("failed to export waitlist: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d cases, %d attempts, %d stats rows, %d waitlist entries",
		len(backup.Users), len(backup.Cases), len(backup.Attempts),
		len(backup.Stats), len(backup.Waitlist))
	return nil
}

// Import restores a backup file into the database
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup, inserting rows in dependency
// order so foreign keys hold
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importCases(backup.Cases); err != nil {
		return fmt.Errorf("failed to import cases: %w", err)
	}
	if err := s.importAttempts(backup.Attempts); err != nil {
		return fmt.Errorf("failed to import attempts: %w", err)
	}
	if err := s.importStats(backup.Stats); err != nil {
		return fmt.Errorf("failed to import stats: %w", err)
	}
	if err := s.importWaitlist(backup.Waitlist); err != nil {
		return fmt.Errorf("failed to import waitlist: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u  UserBackup
			id string
		)
		if err := rows.Scan(&id, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		u.ID, err = uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", id, err)
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportCases(backup *BackupData) error {
	cases, err := s.caseRepo.ListCases("", 0)
	if err != nil {
		return err
	}
	for i := range cases {
		cases[i].TeachingPoints, err = s.caseRepo.GetTeachingPoints(cases[i].ID)
		if err != nil {
			return err
		}
	}
	backup.Cases = cases
	return nil
}

func (s *BackupService) exportAttempts(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, user_id, case_id, answer, correct, time_to_answer_ms, created_at
		FROM attempts
		ORDER BY created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                  models.Attempt
			id, userID, caseID string
		)
		if err := rows.Scan(&id, &userID, &caseID, &a.Answer, &a.Correct, &a.TimeToAnswerMs, &a.CreatedAt); err != nil {
			return err
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid attempt id %q: %w", id, err)
		}
		if a.UserID, err = uuid.Parse(userID); err != nil {
			return fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		if a.CaseID, err = uuid.Parse(caseID); err != nil {
			return fmt.Errorf("invalid case id %q: %w", caseID, err)
		}
		backup.Attempts = append(backup.Attempts, a)
	}
	return rows.Err()
}

func (s *BackupService) exportStats(backup *BackupData) error {
	rows, err := s.db.Query(`SELECT DISTINCT user_id FROM user_case_stats`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		userID, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", id, err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, userID := range userIDs {
		stats, err := s.statsRepo.QueryStatsForUser(context.Background(), userID)
		if err != nil {
			return err
		}
		backup.Stats = append(backup.Stats, stats...)
	}
	return nil
}

func (s *BackupService) exportWaitlist(backup *BackupData) error {
	rows, err := s.db.Query(`SELECT id, email, created_at FROM waitlist ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry models.WaitlistEntry
			id    string
		)
		if err := rows.Scan(&id, &entry.Email, &entry.CreatedAt); err != nil {
			return err
		}
		entry.ID, err = uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid waitlist id %q: %w", id, err)
		}
		backup.Waitlist = append(backup.Waitlist, entry)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	for _, u := range users {
		_, err := s.db.Exec(`
			INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, u.ID.String(), u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importCases(cases []models.Case) error {
	for i := range cases {
		if err := s.caseRepo.CreateCase(&cases[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importAttempts(attempts []models.Attempt) error {
	for _, a := range attempts {
		_, err := s.db.Exec(`
			INSERT INTO attempts (id, user_id, case_id, answer, correct, time_to_answer_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.ID.String(), a.UserID.String(), a.CaseID.String(), a.Answer, a.Correct, a.TimeToAnswerMs, a.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importStats(stats []models.UserCaseStats) error {
	for i := range stats {
		if err := s.statsRepo.UpsertStats(context.Background(), &stats[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importWaitlist(entries []models.WaitlistEntry) error {
	for _, e := range entries {
		_, err := s.db.Exec(`
			INSERT INTO waitlist (id, email, created_at)
			VALUES (?, ?, ?)
		`, e.ID.String(), e.Email, e.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
