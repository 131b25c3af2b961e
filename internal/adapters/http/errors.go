package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"performer-marketplace/internal/core/domain"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError names one violated field in a validation failure. Every
// violation in the request is reported, not just the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{Error: message}, logger)
}

func writeValidationError(w http.ResponseWriter, fields []FieldError, logger *slog.Logger) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields}, logger)
}

// respondError maps the domain error taxonomy onto HTTP statuses in one
// place so handlers stay uniform.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSONError(w, err.Error(), http.StatusBadRequest, logger)

	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		writeJSONError(w, "unauthenticated", http.StatusUnauthorized, logger)

	case errors.Is(err, domain.ErrForbidden):
		writeJSONError(w, "forbidden", http.StatusForbidden, logger)

	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, "not found", http.StatusNotFound, logger)

	case errors.Is(err, domain.ErrInvalidState):
		writeJSONError(w, "transition not allowed from current state", http.StatusConflict, logger)

	case errors.Is(err, domain.ErrAlreadySettled):
		writeJSONError(w, "referral already settled", http.StatusConflict, logger)

	case errors.Is(err, domain.ErrUsernameTaken):
		writeJSONError(w, "username is already taken", http.StatusConflict, logger)

	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrBrokerUnavailable):
		logger.Warn("temporary failure in external dependency", "error", err)
		writeJSONError(w, "service temporarily unavailable", http.StatusServiceUnavailable, logger)

	default:
		logger.Error("unexpected error", "error", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError, logger)
	}
}
