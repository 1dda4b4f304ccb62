package handlers

import (
	"net/http"

	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

type ChatHandler struct {
	service *services.HealthService
}

func NewChatHandler(service *services.HealthService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	reply, turns, err := h.service.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, Turns: turns})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	turns, err := h.service.History(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": turns})
}
