package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger,
	}
}

type CheckoutStatusResponse struct {
	CheckoutID       string     `json:"checkout_id"`
	Status           string     `json:"status"`
	Total            string     `json:"total"`
	PointsEarned     int64      `json:"points_earned"`
	PointsRedeemed   int64      `json:"points_redeemed"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	AwaitingGateway  bool       `json:"awaiting_gateway"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (h *TrackingHandler) GetCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "checkoutID")

	result, err := h.service.GetCheckoutStatus(r.Context(), checkoutID)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutNotFound) {
			respondError(w, "Checkout not found", http.StatusNotFound, nil)
			return
		}
		h.logger.Error("db_query_failed", "Failed to load checkout", logger.RequestID(r.Context()), map[string]interface{}{
			"checkout_id": checkoutID,
		}, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutStatusResponse{
		CheckoutID:       result.CheckoutID,
		Status:           string(result.Status),
		Total:            result.Total.StringFixed(2),
		PointsEarned:     result.PointsEarned,
		PointsRedeemed:   result.PointsRedeemed,
		PaymentReference: result.PaymentReference,
		AwaitingGateway:  result.AwaitingGateway,
		UpdatedAt:        result.UpdatedAt,
		CompletedAt:      result.CompletedAt,
	})
}
