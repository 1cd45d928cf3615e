package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

// CheckoutCommand is a snapshot of the customer's cart and choices at checkout
type CheckoutCommand struct {
	TenantID        string
	LocationID      string
	UserID          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	OrderType       domain.OrderType
	DeliveryAddress *string
	PromoCode       string
	RedeemPoints    bool
	Lines           []domain.CartLine
}

type Quote struct {
	Pricing         domain.PricingResult
	Promo           *domain.PromoCode
	PromoRejection  string
	AvailablePoints int64
	DefaultsApplied bool
}

type LoyaltyStatus struct {
	UserID          string
	AvailablePoints int64
	LifetimePoints  int64
	PointsValue     decimal.Decimal
	Progress        domain.TierProgress
}

type CheckoutService interface {
	Quote(ctx context.Context, cmd CheckoutCommand) (*Quote, error)
	Submit(ctx context.Context, cmd CheckoutCommand) (*domain.Checkout, error)
	CompleteCheckout(ctx context.Context, msg PaymentOutcomeMessage) error
	ValidatePromo(ctx context.Context, tenantID, code string, subtotal decimal.Decimal, userID string) (*domain.PromoCode, error)
	LoyaltyStatus(ctx context.Context, tenantID, locationID, userID string) (*LoyaltyStatus, error)
}

// CheckoutStatusResponse is the tracking view of one checkout
type CheckoutStatusResponse struct {
	CheckoutID       string
	Status           domain.CheckoutStatus
	Total            decimal.Decimal
	PointsEarned     int64
	PointsRedeemed   int64
	PaymentReference *string
	UpdatedAt        time.Time
	CompletedAt      *time.Time

	// AwaitingGateway is set once a pending checkout outlives the stale threshold
	AwaitingGateway bool
}

type TrackingService interface {
	GetCheckoutStatus(ctx context.Context, checkoutID string) (*CheckoutStatusResponse, error)
}
