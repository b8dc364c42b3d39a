package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/hobbyshop/internal/admin"
	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/cart"
	"github.com/Lixing-Zhang/hobbyshop/internal/checkout"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
	"github.com/Lixing-Zhang/hobbyshop/internal/tcg"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// ErrorResponse is the body of every non-2xx reply. Fields is set for
// validation failures only.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteServiceError maps a domain error to its HTTP status
func WriteServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if ve, ok := apperr.AsValidationError(err); ok {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "Validation failed", Fields: ve.Fields}, logger)
		return
	}

	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		WriteError(w, http.StatusNotFound, "Product not found", logger)
	case errors.Is(err, admin.ErrCardNotFound):
		WriteError(w, http.StatusNotFound, "Card not found", logger)
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, err.Error(), logger)
	case errors.Is(err, apperr.ErrNotConfirmed), errors.Is(err, admin.ErrWrongMode):
		WriteError(w, http.StatusConflict, err.Error(), logger)
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, admin.ErrInvalidMode), errors.Is(err, tcg.ErrUnknownCategory),
		errors.Is(err, tcg.ErrEmptyQuery):
		WriteError(w, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, tcg.ErrComingSoon):
		WriteError(w, http.StatusConflict, err.Error(), logger)
	case apperr.IsFetchError(err):
		logger.Error("remote call failed", "error", err)
		WriteError(w, http.StatusBadGateway, "Upstream service unavailable", logger)
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}
