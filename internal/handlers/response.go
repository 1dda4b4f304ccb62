package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/services"
	"healthmate-backend/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

// statusFor maps a service error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND"
	}

	switch services.KindOf(err) {
	case services.InvalidInput:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case services.BackendUnavailable:
		return http.StatusServiceUnavailable, "AI_UNAVAILABLE"
	case services.RequestFailed:
		return http.StatusBadGateway, "AI_ERROR"
	case services.EmptyResponse:
		return http.StatusBadGateway, "AI_EMPTY_RESPONSE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// ErrorBody builds the error envelope for err, shared with the WebSocket
// handler which sends it as a frame instead of a response.
func ErrorBody(err error, r *http.Request) models.APIError {
	status, code := statusFor(err)

	if status == http.StatusNotFound {
		return errorResp(code, "Session not found", r).Error
	}

	var e *services.Error
	if errors.As(err, &e) {
		return errorRespWithFields(code, e.Message, e.Fields, r).Error
	}
	return errorResp(code, "An unexpected error occurred", r).Error
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled service error")
	}
	writeJSON(w, status, models.ErrorResponse{Error: ErrorBody(err, r)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	return true
}
