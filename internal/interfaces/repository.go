package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

// Configuration collaborator (Adapter/Postgres)
type SettingsRepository interface {
	GetPromotionSettings(ctx context.Context, tenantID, locationID string) (domain.PromotionSettings, error)
	GetLocation(ctx context.Context, tenantID, locationID string) (domain.LocationSettings, error)
}

// Promo validation collaborator. A rejected code returns *domain.PromoRejection.
type PromoRepository interface {
	ValidatePromo(ctx context.Context, tenantID, code string, subtotal decimal.Decimal, userID string) (*domain.PromoCode, error)
	RecordRedemption(ctx context.Context, tenantID, code, userID, checkoutID string) error
}

// Balance collaborator. CommitPoints must be atomic and idempotent per checkout.
type BalanceRepository interface {
	GetBalance(ctx context.Context, tenantID, userID string) (domain.LoyaltyBalance, error)
	CommitPoints(ctx context.Context, commit domain.PointsCommit) (domain.LoyaltyBalance, error)
}

type CheckoutRepository interface {
	Create(ctx context.Context, checkout *domain.Checkout) error
	FindByID(ctx context.Context, id string) (*domain.Checkout, error)
	Update(ctx context.Context, checkout *domain.Checkout) error
}
