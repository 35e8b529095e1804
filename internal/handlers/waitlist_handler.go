package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pigmemento/internal/service"
	"pigmemento/internal/validation"
)

// WaitlistHandler records pre-launch signups
type WaitlistHandler struct {
	waitlistService *service.WaitlistService
}

// NewWaitlistHandler creates a new waitlist handler
func NewWaitlistHandler(waitlistService *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

type waitlistRequest struct {
	Email string `json:"email"`
}

// Join handles POST /waitlist
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if _, err := h.waitlistService.Join(r.Context(), req.Email); err != nil {
		var validationErr validation.ValidationError
		if errors.As(err, &validationErr) {
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to join waitlist", "Failed to add waitlist entry", err)
		return
	}

	// Same response whether or not the email was already signed up
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "You're on the list",
	})
}
