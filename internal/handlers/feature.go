package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
)

// multipartOverhead covers form boundaries and headers around the image part.
const multipartOverhead = 1 << 20

type FeatureHandler struct {
	service       *services.HealthService
	maxImageBytes int64
}

func NewFeatureHandler(service *services.HealthService, maxImageBytes int64) *FeatureHandler {
	return &FeatureHandler{service: service, maxImageBytes: maxImageBytes}
}

func (h *FeatureHandler) Symptoms(w http.ResponseWriter, r *http.Request) {
	var req models.SymptomRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := h.service.CheckSymptoms(r.Context(), req.Symptoms)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TextResponse{Text: text})
}

func (h *FeatureHandler) Meditation(w http.ResponseWriter, r *http.Request) {
	var req models.MeditationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := h.service.GuideMeditation(r.Context(), req.Type, req.DurationMinutes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TextResponse{Text: text})
}

func (h *FeatureHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	var req models.NutritionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := h.service.PlanNutrition(r.Context(), req.Goal, req.Restrictions)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TextResponse{Text: text})
}

// AnalyzeImage reads the "image" multipart field, which must be a PNG or JPEG
// no larger than the configured limit.
func (h *FeatureHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("PAYLOAD_TOO_LARGE", h.tooLargeMessage(), r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"image": "An image file is required"}, r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read image", r))
		return
	}
	if int64(len(data)) > h.maxImageBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("PAYLOAD_TOO_LARGE", h.tooLargeMessage(), r))
		return
	}

	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg":
	default:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"image": "Only PNG and JPEG images are supported"}, r))
		return
	}

	text, err := h.service.AnalyzeImage(r.Context(), data)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TextResponse{Text: text})
}

func (h *FeatureHandler) tooLargeMessage() string {
	return fmt.Sprintf("Image must be at most %d bytes", h.maxImageBytes)
}
