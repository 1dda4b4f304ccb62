package handlers

import (
	"net/http"

	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

type SessionHandler struct {
	service *services.HealthService
	tokens  *middleware.SessionTokens
}

func NewSessionHandler(service *services.HealthService, tokens *middleware.SessionTokens) *SessionHandler {
	return &SessionHandler{service: service, tokens: tokens}
}

// Create starts an empty chat transcript and returns the bearer token that
// scopes later chat calls to it.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.StartSession(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(sess.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.SessionResponse{Session: sess, Token: token})
}
