package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgelight/crucible/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Helper functions for responding

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	// Encode to the buffer first
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, so all we can do is log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	// Lookup messages
	ErrMsgBookNotFoundError   = "Recipe book not found"
	ErrMsgRecipeNotFoundError = "Recipe not found"
	ErrMsgActorNotFoundError  = "Actor not found"
	ErrMsgItemNotFoundError   = "Item not found"

	// Crafting messages
	ErrMsgToolMissingError          = "A required crafting tool is missing"
	ErrMsgInsufficientResourceError = "Not enough ingredients to craft"
	ErrMsgCraftFailedNotConsumedErr = "Crafting failed. Nothing was consumed"
	ErrMsgCraftFailedConsumedError  = "Crafting failed. The components were consumed"
	ErrMsgValidationScriptError     = "The recipe's validation script failed"

	// Cauldron messages
	ErrMsgNotEnoughIngredientsError = "The cauldron needs at least two ingredients"

	// Registry messages
	ErrMsgNoPermissionError      = "You do not have permission for that recipe"
	ErrMsgInvalidImportDataError = "The import data is not a valid recipe export"
	ErrMsgVersionConflictError   = "The recipe collection changed underneath you. Try again"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
// This function converts internal service errors to appropriate HTTP status codes
// and messages that users can understand and act upon.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	// Check for specific domain errors
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, ErrMsgBookNotFoundError
	case errors.Is(err, domain.ErrRecipeNotFound):
		return http.StatusNotFound, ErrMsgRecipeNotFoundError
	case errors.Is(err, domain.ErrActorNotFound):
		return http.StatusNotFound, ErrMsgActorNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusBadRequest, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrToolMissing):
		return http.StatusBadRequest, ErrMsgToolMissingError
	case errors.Is(err, domain.ErrInsufficientResource):
		return http.StatusBadRequest, ErrMsgInsufficientResourceError
	case errors.Is(err, domain.ErrCraftFailedNotConsumed):
		return http.StatusBadRequest, ErrMsgCraftFailedNotConsumedErr
	case errors.Is(err, domain.ErrCraftFailedConsumed):
		return http.StatusBadRequest, ErrMsgCraftFailedConsumedError
	case errors.Is(err, domain.ErrValidationScript):
		return http.StatusBadRequest, ErrMsgValidationScriptError
	case errors.Is(err, domain.ErrNotEnoughIngredients):
		return http.StatusBadRequest, ErrMsgNotEnoughIngredientsError
	case errors.Is(err, domain.ErrNoPermission):
		return http.StatusForbidden, ErrMsgNoPermissionError
	case errors.Is(err, domain.ErrInvalidImportData):
		return http.StatusBadRequest, ErrMsgInvalidImportDataError
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, ErrMsgVersionConflictError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	}

	// For wrapped errors with domain errors as the base, try unwrapping
	unwrapped := errors.Unwrap(err)
	if unwrapped != nil && unwrapped != err {
		return mapServiceErrorToUserMessage(unwrapped)
	}

	// Short custom messages from mocks and adapters stay user-visible
	errMsg := err.Error()
	if errMsg != "" && len(errMsg) < 200 {
		return http.StatusInternalServerError, errMsg
	}

	// Default to generic message for very long or system-level errors
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs the failure and writes the mapped user message.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	slog.Default().Error(opName+" failed", "error", err, "path", r.URL.Path)
	statusCode, userMsg := mapServiceErrorToUserMessage(err)
	respondError(w, statusCode, userMsg)
}
