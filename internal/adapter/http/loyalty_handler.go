package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type LoyaltyHandler struct {
	service interfaces.CheckoutService
	logger  logger.Logger
}

func NewLoyaltyHandler(service interfaces.CheckoutService, logger logger.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		service: service,
		logger:  logger,
	}
}

type LoyaltyResponse struct {
	UserID          string  `json:"user_id"`
	AvailablePoints int64   `json:"available_points"`
	LifetimePoints  int64   `json:"lifetime_points"`
	PointsValue     string  `json:"points_value"`
	CurrentTier     string  `json:"current_tier"`
	NextTier        *string `json:"next_tier"`
	NextTierPoints  *int64  `json:"next_tier_points"`
	ProgressPercent float64 `json:"progress_percent"`
	PointsToNext    int64   `json:"points_to_next"`
}

func (h *LoyaltyHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	tenantID := r.URL.Query().Get("tenant_id")
	locationID := r.URL.Query().Get("location_id")

	fields := &domain.ValidationErrors{}
	if tenantID == "" {
		fields.Add("tenant_id", "tenant id is required")
	}
	if locationID == "" {
		fields.Add("location_id", "location id is required")
	}
	if !fields.Empty() {
		respondError(w, "Validation failed", http.StatusBadRequest, fields.Fields)
		return
	}

	status, err := h.service.LoyaltyStatus(r.Context(), tenantID, locationID, userID)
	if err != nil {
		h.logger.Error("loyalty_status_failed", "Failed to load loyalty status", logger.RequestID(r.Context()), map[string]interface{}{
			"user_id": userID,
		}, err)
		respondServiceError(w, err)
		return
	}

	resp := LoyaltyResponse{
		UserID:          status.UserID,
		AvailablePoints: status.AvailablePoints,
		LifetimePoints:  status.LifetimePoints,
		PointsValue:     status.PointsValue.StringFixed(2),
		CurrentTier:     string(status.Progress.CurrentTier),
		NextTierPoints:  status.Progress.NextTierPoints,
		ProgressPercent: status.Progress.ProgressPercent,
		PointsToNext:    status.Progress.PointsToNext,
	}
	if status.Progress.NextTier != nil {
		next := string(*status.Progress.NextTier)
		resp.NextTier = &next
	}

	respondJSON(w, http.StatusOK, resp)
}
