package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, statusCode int, fields []domain.FieldError) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Errors: fields})
}

// respondServiceError maps checkout errors onto status codes
func respondServiceError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationErrors
	var rejection *domain.PromoRejection

	switch {
	case errors.As(err, &validation):
		respondError(w, "Validation failed", http.StatusBadRequest, validation.Fields)
	case errors.As(err, &rejection):
		respondError(w, rejection.Reason, http.StatusUnprocessableEntity, nil)
	case errors.Is(err, domain.ErrInvalidPromoCode):
		respondError(w, "Invalid promo code", http.StatusUnprocessableEntity, nil)
	case errors.Is(err, domain.ErrMalformedCartLine),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidOrderType):
		respondError(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrConfigurationInvalid):
		respondError(w, "Location configuration is invalid", http.StatusConflict, nil)
	case errors.Is(err, domain.ErrLocationUnavailable):
		respondError(w, "Location is unavailable", http.StatusServiceUnavailable, nil)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}
