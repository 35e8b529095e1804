package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/service"
	"pigmemento/internal/validation"
)

// CaseHandler serves the quiz feed. Responses never include the case
// label or teaching points; those are only revealed through the answer
// endpoint.
type CaseHandler struct {
	caseService *service.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// casePresentation is the client-facing view of an unanswered case
type casePresentation struct {
	ID           uuid.UUID `json:"id"`
	ImageURL     string    `json:"image_url"`
	Difficulty   string    `json:"difficulty"`
	PatientAge   int       `json:"patient_age"`
	Site         string    `json:"site"`
	ClinicalNote string    `json:"clinical_note"`
	CreatedAt    time.Time `json:"created_at"`
}

func presentCase(c *models.Case) casePresentation {
	return casePresentation{
		ID:           c.ID,
		ImageURL:     c.ImageURL,
		Difficulty:   c.Difficulty,
		PatientAge:   c.PatientAge,
		Site:         c.Site,
		ClinicalNote: c.ClinicalNote,
		CreatedAt:    c.CreatedAt,
	}
}

// ListCases handles GET /cases
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	difficulty := r.URL.Query().Get("difficulty")

	limit := DefaultCaseLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = parsed
	}
	if limit > MaxCaseLimit {
		limit = MaxCaseLimit
	}

	userID := UserIDFromContext(r.Context())
	cases, err := h.caseService.NextCases(r.Context(), userID, difficulty, limit)
	if err != nil {
		var validationErr validation.ValidationError
		if errors.As(err, &validationErr) {
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load cases", "Failed to select cases", err)
		return
	}

	presented := make([]casePresentation, 0, len(cases))
	for i := range cases {
		presented = append(presented, presentCase(&cases[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cases":      presented,
		"disclaimer": Disclaimer,
	})
}

// GetCase handles GET /cases/{id}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid case ID", "", nil)
		return
	}

	c, err := h.caseService.GetCase(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load case", "Failed to get case", err)
		return
	}
	if c == nil {
		respondWithError(w, http.StatusNotFound, "Case not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, presentCase(c))
}
