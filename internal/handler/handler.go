// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/attendly/attendly/internal/model"
	"github.com/attendly/attendly/internal/repository"
	"github.com/attendly/attendly/internal/service"
)

// Handler wraps application-level endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is a simple root endpoint for smoke testing.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Attendly!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// errorBody is the client-visible error shape. It never carries hashes,
// tokens or internal details.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeServiceError maps service errors to client responses per the
// error taxonomy: validation 400/422, auth 401, conflict 409, not-found
// 404. Integrity failures are the only class logged loudly and hidden
// behind a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrInvalidTimestamp):
		writeError(w, http.StatusBadRequest, "INVALID_TIMESTAMP", "Invalid date format. Please use ISO format (YYYY-MM-DDTHH:MM:SS)")
	case errors.Is(err, model.ErrUnknownMealType):
		writeError(w, http.StatusBadRequest, "INVALID_MEAL_PREFERENCE", "Invalid meal preference")
	case errors.Is(err, model.ErrUnknownMealTime):
		writeError(w, http.StatusBadRequest, "INVALID_MEAL_CHOICE", "Invalid meal choice")
	case errors.Is(err, service.ErrIncompleteWindow):
		writeError(w, http.StatusBadRequest, "INCOMPLETE_WINDOW", "Both participation start and end times are required")
	case errors.Is(err, service.ErrStartInPast):
		writeError(w, http.StatusUnprocessableEntity, "START_IN_PAST", "Participation start time cannot be in the past")
	case errors.Is(err, service.ErrEndBeforeStart):
		writeError(w, http.StatusUnprocessableEntity, "END_BEFORE_START", "Participation end time cannot be earlier than start time")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, repository.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, repository.ErrMealNotSeeded):
		// Deployment bug, not user error.
		logger.Error("meal seed missing", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "MEAL_NOT_SEEDED", "Meal slots are not configured")
	default:
		logger.Error("unhandled service error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}
