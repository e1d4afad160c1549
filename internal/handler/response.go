// Package handler contains the HTTP layer: JSON handlers for the API,
// HTML handlers for the admin UI, and the helpers that keep their
// responses consistent.
//
// Handlers parse requests and write responses; everything between those
// two steps belongs to the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/task-tracker/internal/apperror"
)

// errorResponse is the body for every single-message API error:
// {"error": "User not found"}.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse carries the field-to-message map for constraint
// violations: {"errors": {"email": "Invalid email format"}}.
type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

// writeJSON sends data with the given status. Headers and status must
// go out before the body; once Encode writes, they are locked in.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its response. The taxonomy:
//
//	ErrMalformed  → 400 {"error": "Invalid JSON"}
//	ErrValidation → 400 {"errors": {field: message}}
//	ErrNotFound   → 404 {"error": ...}
//	ErrConflict   → 409 {"error": ...}
//	anything else → 500 {"error": "Database error"}
//
// The 500 branch never leaks the underlying error: driver messages can
// contain SQL fragments and file paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrMalformed):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: appErr.Message})
			return
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, validationResponse{Errors: appErr.Fields})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, errorResponse{Error: appErr.Message})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database error"})
}
