package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

type ChartHandler struct {
	service *services.HealthService
}

func NewChartHandler(service *services.HealthService) *ChartHandler {
	return &ChartHandler{service: service}
}

// Get returns the chart with its built-in data.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	spec, err := h.service.Chart(chi.URLParam(r, "type"), nil)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// Custom builds the chart from caller-supplied data.
func (h *ChartHandler) Custom(w http.ResponseWriter, r *http.Request) {
	var req models.ChartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	spec, err := h.service.Chart(chi.URLParam(r, "type"), req.Data)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}
