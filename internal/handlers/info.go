package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

type InfoHandler struct {
	service *services.HealthService
}

func NewInfoHandler(service *services.HealthService) *InfoHandler {
	return &InfoHandler{service: service}
}

func (h *InfoHandler) DailyTip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"tip": h.service.DailyTip()})
}

// Feedback is recorded in the log only.
func (h *InfoHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"message": "Feedback must not be empty"}, r))
		return
	}

	hlog.FromRequest(r).Info().Str("feedback", msg).Msg("user feedback received")
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Thank you for your feedback!"})
}
