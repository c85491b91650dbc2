package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	app_errors "neptune-ai/backend/internal/errors"
)

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic success body.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps business-layer errors to HTTP status codes. Only
// validation messages are echoed; everything else gets a fixed message.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	var message string
	level := zerolog.WarnLevel

	switch {
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Missing or invalid credentials."
	case errors.Is(err, app_errors.ErrPermission):
		statusCode = http.StatusForbidden
		message = "You do not have permission to perform this action."
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = "A conflict occurred with the current state of the resource."
	case errors.Is(err, app_errors.ErrEngineUnavailable), errors.Is(err, app_errors.ErrCodec):
		statusCode = http.StatusServiceUnavailable
		message = "The requested model backend is not available."
		level = zerolog.ErrorLevel
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, app_errors.ErrStreamTimeout):
		statusCode = http.StatusGatewayTimeout
		message = "Generation timed out."
		level = zerolog.ErrorLevel
	case errors.Is(err, app_errors.ErrEngine):
		statusCode = http.StatusInternalServerError
		message = "Generation failed."
		level = zerolog.ErrorLevel
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
		level = zerolog.ErrorLevel
	}

	hlog.FromRequest(r).WithLevel(level).Err(err).
		Int("status_code", statusCode).
		Str("client_message", message).
		Msg("responding with error")

	respondWithJSON(w, r, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to marshal JSON response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write JSON response")
	}
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return validateRequest(dst)
}
