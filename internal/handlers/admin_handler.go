package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
)

// AdminHandler manages the case library. All routes require the admin
// role; responses here do include labels.
type AdminHandler struct {
	caseRepo     *repository.CaseRepository
	waitlistRepo *repository.WaitlistRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(caseRepo *repository.CaseRepository, waitlistRepo *repository.WaitlistRepository) *AdminHandler {
	return &AdminHandler{
		caseRepo:     caseRepo,
		waitlistRepo: waitlistRepo,
	}
}

type caseRequest struct {
	ImageURL       string   `json:"image_url"`
	Label          string   `json:"label"`
	Difficulty     string   `json:"difficulty"`
	PatientAge     int      `json:"patient_age"`
	Site           string   `json:"site"`
	ClinicalNote   string   `json:"clinical_note"`
	TeachingPoints []string `json:"teaching_points"`
}

func (req *caseRequest) toCase() (*models.Case, string) {
	if req.ImageURL == "" {
		return nil, "image_url is required"
	}
	if !models.ValidLabel(req.Label) {
		return nil, "label must be benign or malignant"
	}
	if !models.ValidDifficulty(req.Difficulty) {
		return nil, "difficulty must be easy, med or hard"
	}
	if req.PatientAge < 0 || req.PatientAge > 120 {
		return nil, "patient_age must be between 0 and 120"
	}

	c := &models.Case{
		ImageURL:     req.ImageURL,
		Label:        req.Label,
		Difficulty:   req.Difficulty,
		PatientAge:   req.PatientAge,
		Site:         req.Site,
		ClinicalNote: req.ClinicalNote,
	}
	for i, text := range req.TeachingPoints {
		if text == "" {
			continue
		}
		c.TeachingPoints = append(c.TeachingPoints, models.TeachingPoint{
			Text:      text,
			SortOrder: i,
		})
	}
	return c, ""
}

// CreateCase handles POST /admin/cases
func (h *AdminHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	c, problem := req.toCase()
	if problem != "" {
		respondWithError(w, http.StatusBadRequest, problem, "", nil)
		return
	}

	if err := h.caseRepo.CreateCase(c); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create case", "Failed to create case", err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// UpdateCase handles PUT /admin/cases/{id}
func (h *AdminHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid case ID", "", nil)
		return
	}

	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	c, problem := req.toCase()
	if problem != "" {
		respondWithError(w, http.StatusBadRequest, problem, "", nil)
		return
	}
	c.ID = id

	if err := h.caseRepo.UpdateCase(c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Case not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update case", "Failed to update case", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCase handles DELETE /admin/cases/{id}
func (h *AdminHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid case ID", "", nil)
		return
	}

	if err := h.caseRepo.DeleteCase(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Case not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete case", "Failed to delete case", err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ListCases handles GET /admin/cases
func (h *AdminHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	difficulty := r.URL.Query().Get("difficulty")
	if difficulty != "" && !models.ValidDifficulty(difficulty) {
		respondWithError(w, http.StatusBadRequest, "difficulty must be easy, med or hard", "", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = parsed
	}

	cases, err := h.caseRepo.ListCases(difficulty, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list cases", "Failed to list cases", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cases": cases})
}

// GetCase handles GET /admin/cases/{id}, label and teaching points
// included
func (h *AdminHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid case ID", "", nil)
		return
	}

	c, err := h.caseRepo.GetCaseByID(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load case", "Failed to get case", err)
		return
	}
	if c == nil {
		respondWithError(w, http.StatusNotFound, "Case not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// WaitlistCount handles GET /admin/waitlist
func (h *AdminHandler) WaitlistCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.waitlistRepo.CountEntries()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count waitlist", "Failed to count waitlist entries", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}
