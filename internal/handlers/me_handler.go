package handlers

import (
	"net/http"

	"pigmemento/internal/service"
)

// MeHandler serves the authenticated user's own account and progress
type MeHandler struct {
	authService     *service.AuthService
	progressService *service.ProgressService
}

// NewMeHandler creates a new me handler
func NewMeHandler(authService *service.AuthService, progressService *service.ProgressService) *MeHandler {
	return &MeHandler{
		authService:     authService,
		progressService: progressService,
	}
}

// GetMe handles GET /me
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load account", "Failed to get user", err)
		return
	}
	if user == nil {
		respondWithError(w, http.StatusNotFound, "Account not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetProgress handles GET /me/progress
func (h *MeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	progress, err := h.progressService.GetProgress(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "Failed to compute progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
