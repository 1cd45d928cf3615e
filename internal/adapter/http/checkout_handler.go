package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type CheckoutHandler struct {
	service interfaces.CheckoutService
	logger  logger.Logger
}

func NewCheckoutHandler(service interfaces.CheckoutService, logger logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

type CheckoutRequest struct {
	TenantID        string            `json:"tenant_id"`
	LocationID      string            `json:"location_id"`
	UserID          string            `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	OrderType       string            `json:"order_type"`
	DeliveryAddress *string           `json:"delivery_address,omitempty"`
	PromoCode       string            `json:"promo_code,omitempty"`
	RedeemPoints    bool              `json:"redeem_points"`
	Items           []CartItemRequest `json:"items"`
}

type CartItemRequest struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Price     *decimal.Decimal  `json:"price"`
	Quantity  int               `json:"quantity"`
	Size      *string           `json:"size,omitempty"`
	Modifiers []ModifierRequest `json:"modifiers,omitempty"`
}

type ModifierRequest struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type BreakdownResponse struct {
	Subtotal          string `json:"subtotal"`
	ModifiersTotal    string `json:"modifiers_total"`
	HappyHourActive   bool   `json:"happy_hour_active"`
	HappyHourDiscount string `json:"happy_hour_discount"`
	PromoDiscount     string `json:"promo_discount"`
	LoyaltyDiscount   string `json:"loyalty_discount"`
	TaxableBase       string `json:"taxable_base"`
	DeliveryFee       string `json:"delivery_fee"`
	TaxAmount         string `json:"tax_amount"`
	Total             string `json:"total"`
	PointsEarned      int64  `json:"points_earned"`
	PointsRedeemed    int64  `json:"points_redeemed"`
}

type QuoteResponse struct {
	Breakdown       BreakdownResponse `json:"breakdown"`
	PromoCode       string            `json:"promo_code,omitempty"`
	PromoRejection  string            `json:"promo_rejection,omitempty"`
	AvailablePoints int64             `json:"available_points"`
	DefaultsApplied bool              `json:"defaults_applied"`
}

type SubmitResponse struct {
	CheckoutID     string `json:"checkout_id"`
	Status         string `json:"status"`
	Total          string `json:"total"`
	PointsEarned   int64  `json:"points_earned"`
	PointsRedeemed int64  `json:"points_redeemed"`
}

type ValidatePromoRequest struct {
	TenantID string          `json:"tenant_id"`
	UserID   string          `json:"user_id"`
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type PromoResponse struct {
	Code                 string   `json:"code"`
	DiscountType         string   `json:"discount_type"`
	DiscountValue        string   `json:"discount_value"`
	MinOrderAmount       *string  `json:"min_order_amount,omitempty"`
	ApplicableCategories []string `json:"applicable_categories,omitempty"`
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	cmd, err := req.command()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	quote, err := h.service.Quote(r.Context(), cmd)
	if err != nil {
		h.logger.Error("quote_failed", "Failed to price cart", logger.RequestID(r.Context()), nil, err)
		respondServiceError(w, err)
		return
	}

	resp := QuoteResponse{
		Breakdown:       newBreakdownResponse(quote.Pricing),
		PromoRejection:  quote.PromoRejection,
		AvailablePoints: quote.AvailablePoints,
		DefaultsApplied: quote.DefaultsApplied,
	}
	if quote.Promo != nil {
		resp.PromoCode = quote.Promo.Code
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	cmd, err := req.command()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	checkout, err := h.service.Submit(r.Context(), cmd)
	if err != nil {
		h.logger.Error("checkout_failed", "Failed to submit checkout", logger.RequestID(r.Context()), nil, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponse{
		CheckoutID:     checkout.ID,
		Status:         string(checkout.Status),
		Total:          checkout.Pricing.Total.StringFixed(2),
		PointsEarned:   checkout.Pricing.PointsEarned,
		PointsRedeemed: checkout.Pricing.PointsRedeemed,
	})
}

func (h *CheckoutHandler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	fields := &domain.ValidationErrors{}
	if req.TenantID == "" {
		fields.Add("tenant_id", "tenant id is required")
	}
	if strings.TrimSpace(req.Code) == "" {
		fields.Add("code", "promo code is required")
	}
	if req.Subtotal.IsNegative() {
		fields.Add("subtotal", "subtotal must not be negative")
	}
	if !fields.Empty() {
		respondError(w, "Validation failed", http.StatusBadRequest, fields.Fields)
		return
	}

	promo, err := h.service.ValidatePromo(r.Context(), req.TenantID, req.Code, req.Subtotal, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := PromoResponse{
		Code:                 promo.Code,
		DiscountType:         string(promo.DiscountType),
		DiscountValue:        promo.DiscountValue.String(),
		ApplicableCategories: promo.ApplicableCategories,
	}
	if promo.MinOrderAmount != nil {
		minOrder := promo.MinOrderAmount.StringFixed(2)
		resp.MinOrderAmount = &minOrder
	}

	respondJSON(w, http.StatusOK, resp)
}

// command maps the request onto a checkout command. Items or modifiers sent
// without a price are rejected here instead of being priced at zero.
func (req CheckoutRequest) command() (interfaces.CheckoutCommand, error) {
	lines := make([]domain.CartLine, len(req.Items))
	for i, item := range req.Items {
		if item.Price == nil {
			return interfaces.CheckoutCommand{}, fmt.Errorf("%w: item %d (%s) has no price", domain.ErrMalformedCartLine, i, item.ID)
		}
		modifiers := make([]domain.Modifier, len(item.Modifiers))
		for j, m := range item.Modifiers {
			if m.Price == nil {
				return interfaces.CheckoutCommand{}, fmt.Errorf("%w: item %d modifier %q has no price", domain.ErrMalformedCartLine, i, m.Name)
			}
			modifiers[j] = domain.Modifier{Name: m.Name, Price: m.Price}
		}
		lines[i] = domain.CartLine{
			ID:        item.ID,
			Name:      strings.TrimSpace(item.Name),
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Modifiers: modifiers,
		}
	}

	return interfaces.CheckoutCommand{
		TenantID:        req.TenantID,
		LocationID:      req.LocationID,
		UserID:          req.UserID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		OrderType:       domain.OrderType(strings.ToLower(req.OrderType)),
		DeliveryAddress: req.DeliveryAddress,
		PromoCode:       strings.TrimSpace(req.PromoCode),
		RedeemPoints:    req.RedeemPoints,
		Lines:           lines,
	}, nil
}

func newBreakdownResponse(p domain.PricingResult) BreakdownResponse {
	p = p.Rounded()
	return BreakdownResponse{
		Subtotal:          p.Subtotal.StringFixed(2),
		ModifiersTotal:    p.ModifiersTotal.StringFixed(2),
		HappyHourActive:   p.HappyHourActive,
		HappyHourDiscount: p.HappyHourDiscount.StringFixed(2),
		PromoDiscount:     p.PromoDiscount.StringFixed(2),
		LoyaltyDiscount:   p.LoyaltyDiscount.StringFixed(2),
		TaxableBase:       p.TaxableBase.StringFixed(2),
		DeliveryFee:       p.DeliveryFee.StringFixed(2),
		TaxAmount:         p.TaxAmount.StringFixed(2),
		Total:             p.Total.StringFixed(2),
		PointsEarned:      p.PointsEarned,
		PointsRedeemed:    p.PointsRedeemed,
	}
}
