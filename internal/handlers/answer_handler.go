package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/service"
	"pigmemento/internal/validation"
)

// AnswerHandler grades answers and serves the attempt history
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

type answerRequest struct {
	CaseID         uuid.UUID `json:"case_id"`
	Answer         string    `json:"answer"`
	TimeToAnswerMs int64     `json:"time_to_answer_ms"`
}

// SubmitAnswer handles POST /answers
func (h *AnswerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.CaseID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "case_id is required", "", nil)
		return
	}

	userID := UserIDFromContext(r.Context())
	feedback, err := h.answerService.SubmitAnswer(r.Context(), userID, req.CaseID, req.Answer, req.TimeToAnswerMs)
	if err != nil {
		var validationErr validation.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
		case errors.Is(err, service.ErrCaseNotFound):
			respondWithError(w, http.StatusNotFound, "Case not found", "", nil)
		case errors.Is(err, service.ErrDailyLimitReached):
			respondWithError(w, http.StatusTooManyRequests, "Daily attempt limit reached, come back tomorrow", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to submit answer", "Failed to grade answer", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"attempt":         feedback.Attempt,
		"correct":         feedback.Correct,
		"correct_label":   feedback.CorrectLabel,
		"teaching_points": feedback.TeachingPoints,
		"disclaimer":      Disclaimer,
	})
}

// RecentAttempts handles GET /answers/recent
func (h *AnswerHandler) RecentAttempts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = parsed
	}

	var (
		afterCreatedAt *time.Time
		afterID        *uuid.UUID
	)
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		createdAt, id, err := decodeCursor(cursor)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid cursor", "", nil)
			return
		}
		afterCreatedAt = &createdAt
		afterID = &id
	}

	userID := UserIDFromContext(r.Context())
	attempts, err := h.answerService.RecentAttempts(userID, limit, afterCreatedAt, afterID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load attempts", "Failed to get recent attempts", err)
		return
	}

	response := map[string]interface{}{
		"attempts": attempts,
	}
	if len(attempts) == limit {
		last := attempts[len(attempts)-1]
		response["next_cursor"] = encodeCursor(last.CreatedAt, last.ID)
	}
	respondJSON(w, http.StatusOK, response)
}
