package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

// PaymentSessionRequest is handed to the payment gateway to open a charge session
type PaymentSessionRequest struct {
	CheckoutID     string               `json:"checkout_id"`
	TenantID       string               `json:"tenant_id"`
	LocationID     string               `json:"location_id"`
	UserID         string               `json:"user_id"`
	CustomerEmail  string               `json:"customer_email"`
	OrderType      domain.OrderType     `json:"order_type"`
	PromoCode      string               `json:"promo_code,omitempty"`
	RedeemPoints   bool                 `json:"redeem_points"`
	Pricing        domain.PricingResult `json:"pricing"`
	AmountDue      string               `json:"amount_due"`
	Currency       string               `json:"currency"`
	RequestedAt    time.Time            `json:"requested_at"`
	IdempotencyKey string               `json:"idempotency_key"`
}

// PaymentOutcomeMessage is the gateway's opaque answer for a session
type PaymentOutcomeMessage struct {
	CheckoutID       string    `json:"checkout_id"`
	Succeeded        bool      `json:"succeeded"`
	PaymentReference string    `json:"payment_reference"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// LoyaltyUpdateMessage announces a committed points movement
type LoyaltyUpdateMessage struct {
	TenantID        string      `json:"tenant_id"`
	UserID          string      `json:"user_id"`
	CheckoutID      string      `json:"checkout_id"`
	PointsEarned    int64       `json:"points_earned"`
	PointsRedeemed  int64       `json:"points_redeemed"`
	AvailablePoints int64       `json:"available_points"`
	Tier            domain.Tier `json:"tier"`
	Timestamp       time.Time   `json:"timestamp"`
}

// Payment gateway collaborator (Adapter/RabbitMQ)
type PaymentGateway interface {
	RequestPaymentSession(ctx context.Context, req PaymentSessionRequest) error
}

type LoyaltyPublisher interface {
	PublishLoyaltyUpdate(ctx context.Context, msg LoyaltyUpdateMessage) error
}

type MessageConsumer interface {
	ConsumePaymentOutcomes(ctx context.Context, handler MessageHandler) error
	ConsumeLoyaltyUpdates(ctx context.Context, handler MessageHandler) error
}

type MessageHandler func(ctx context.Context, body []byte) error

// ErrTransient marks a handler failure worth one more delivery. Any other
// handler error sends the message to the dead letter queue.
var ErrTransient = errors.New("transient failure")
