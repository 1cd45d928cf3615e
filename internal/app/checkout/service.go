package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/promotion"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type Options struct {
	SettingsTimeout        time.Duration
	EnforcePromoCategories bool
	Currency               string

	// Clock and NewID default to time.Now and uuid.NewString
	Clock func() time.Time
	NewID func() string
}

type Service struct {
	settings  interfaces.SettingsRepository
	promos    interfaces.PromoRepository
	balances  interfaces.BalanceRepository
	checkouts interfaces.CheckoutRepository
	gateway   interfaces.PaymentGateway
	loyalty   interfaces.LoyaltyPublisher
	logger    logger.Logger
	opts      Options
}

func NewService(
	settings interfaces.SettingsRepository,
	promos interfaces.PromoRepository,
	balances interfaces.BalanceRepository,
	checkouts interfaces.CheckoutRepository,
	gateway interfaces.PaymentGateway,
	loyalty interfaces.LoyaltyPublisher,
	logger logger.Logger,
	opts Options,
) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.SettingsTimeout <= 0 {
		opts.SettingsTimeout = 3 * time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}

	return &Service{
		settings:  settings,
		promos:    promos,
		balances:  balances,
		checkouts: checkouts,
		gateway:   gateway,
		loyalty:   loyalty,
		logger:    logger,
		opts:      opts,
	}
}

// Quote prices the cart without submitting it. A rejected promo is reported
// on the quote and the cart is priced without it.
func (s *Service) Quote(ctx context.Context, cmd interfaces.CheckoutCommand) (*interfaces.Quote, error) {
	return s.price(ctx, cmd, s.opts.Clock(), false)
}

// Submit validates the customer fields, prices the cart, stores a pending
// checkout and opens a payment session for it.
func (s *Service) Submit(ctx context.Context, cmd interfaces.CheckoutCommand) (*domain.Checkout, error) {
	requestID := logger.RequestID(ctx)
	now := s.opts.Clock()

	checkout, err := domain.NewCheckout(s.opts.NewID(), domain.Checkout{
		TenantID:        cmd.TenantID,
		LocationID:      cmd.LocationID,
		UserID:          cmd.UserID,
		CustomerName:    cmd.CustomerName,
		CustomerEmail:   cmd.CustomerEmail,
		CustomerPhone:   cmd.CustomerPhone,
		OrderType:       cmd.OrderType,
		DeliveryAddress: cmd.DeliveryAddress,
		RedeemPoints:    cmd.RedeemPoints,
		Lines:           cmd.Lines,
	}, now)
	if err != nil {
		s.logger.Error("validation_failed", "Checkout validation failed", requestID, nil, err)
		return nil, err
	}
	if len(cmd.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	quote, err := s.price(ctx, cmd, now, true)
	if err != nil {
		return nil, err
	}
	checkout.Pricing = quote.Pricing
	if quote.Promo != nil {
		checkout.PromoCode = quote.Promo.Code
	}

	if err := s.checkouts.Create(ctx, checkout); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to store checkout", requestID, nil, err)
		return nil, fmt.Errorf("failed to store checkout: %w", err)
	}

	req := interfaces.PaymentSessionRequest{
		CheckoutID:     checkout.ID,
		TenantID:       checkout.TenantID,
		LocationID:     checkout.LocationID,
		UserID:         checkout.UserID,
		CustomerEmail:  checkout.CustomerEmail,
		OrderType:      checkout.OrderType,
		PromoCode:      checkout.PromoCode,
		RedeemPoints:   checkout.RedeemPoints,
		Pricing:        checkout.Pricing,
		AmountDue:      checkout.Pricing.Total.StringFixed(2),
		Currency:       s.opts.Currency,
		RequestedAt:    now,
		IdempotencyKey: checkout.ID,
	}

	if err := s.gateway.RequestPaymentSession(ctx, req); err != nil {
		s.logger.Error("payment_session_failed", "Failed to request payment session", requestID, map[string]interface{}{
			"checkout_id": checkout.ID,
		}, err)
		if terr := checkout.TransitionTo(domain.CheckoutStatusFailed, "", s.opts.Clock()); terr == nil {
			if uerr := s.checkouts.Update(ctx, checkout); uerr != nil {
				s.logger.Error("db_error", "Failed to mark checkout failed", requestID, nil, uerr)
			}
		}
		return nil, fmt.Errorf("failed to request payment session: %w", err)
	}

	s.logger.Info("checkout_submitted", "Checkout submitted for payment", requestID, map[string]interface{}{
		"checkout_id":     checkout.ID,
		"tenant_id":       checkout.TenantID,
		"location_id":     checkout.LocationID,
		"total":           req.AmountDue,
		"points_earned":   checkout.Pricing.PointsEarned,
		"points_redeemed": checkout.Pricing.PointsRedeemed,
	})

	return checkout, nil
}

// CompleteCheckout applies a payment outcome. Outcomes for checkouts that are
// no longer pending are ignored, so redelivery is harmless.
func (s *Service) CompleteCheckout(ctx context.Context, msg interfaces.PaymentOutcomeMessage) error {
	checkout, err := s.checkouts.FindByID(ctx, msg.CheckoutID)
	if err != nil {
		return fmt.Errorf("failed to load checkout %s: %w", msg.CheckoutID, err)
	}

	if checkout.Status != domain.CheckoutStatusPending {
		s.logger.Debug("payment_outcome_duplicate", "Checkout already completed", msg.CheckoutID, map[string]interface{}{
			"status": checkout.Status,
		})
		return nil
	}

	if !msg.Succeeded {
		if err := checkout.TransitionTo(domain.CheckoutStatusFailed, msg.PaymentReference, s.opts.Clock()); err != nil {
			return err
		}
		if err := s.checkouts.Update(ctx, checkout); err != nil {
			return fmt.Errorf("failed to update checkout: %w", err)
		}
		s.logger.Info("payment_failed", "Payment failed, no points moved", msg.CheckoutID, map[string]interface{}{
			"reason": msg.FailureReason,
		})
		return nil
	}

	pricingResult := checkout.Pricing
	var balance *domain.LoyaltyBalance
	if pricingResult.PointsEarned > 0 || pricingResult.PointsRedeemed > 0 {
		b, err := s.balances.CommitPoints(ctx, domain.PointsCommit{
			TenantID:   checkout.TenantID,
			UserID:     checkout.UserID,
			CheckoutID: checkout.ID,
			Earned:     pricingResult.PointsEarned,
			Redeemed:   pricingResult.PointsRedeemed,
		})
		if err != nil {
			s.logger.Error("points_commit_failed", "Failed to commit points", msg.CheckoutID, nil, err)
			return fmt.Errorf("failed to commit points: %w", err)
		}
		balance = &b
	}

	if checkout.PromoCode != "" {
		if err := s.promos.RecordRedemption(ctx, checkout.TenantID, checkout.PromoCode, checkout.UserID, checkout.ID); err != nil {
			// payment is captured already, the promo usage can be reconciled later
			s.logger.Error("promo_redemption_failed", "Failed to record promo redemption", msg.CheckoutID, nil, err)
		}
	}

	if err := checkout.TransitionTo(domain.CheckoutStatusPaid, msg.PaymentReference, s.opts.Clock()); err != nil {
		return err
	}
	if err := s.checkouts.Update(ctx, checkout); err != nil {
		return fmt.Errorf("failed to update checkout: %w", err)
	}

	s.logger.Info("checkout_paid", "Checkout paid", msg.CheckoutID, map[string]interface{}{
		"points_earned":   pricingResult.PointsEarned,
		"points_redeemed": pricingResult.PointsRedeemed,
	})

	if balance != nil {
		s.publishLoyaltyUpdate(ctx, checkout, *balance)
	}
	return nil
}

func (s *Service) ValidatePromo(ctx context.Context, tenantID, code string, subtotal decimal.Decimal, userID string) (*domain.PromoCode, error) {
	promo, err := s.promos.ValidatePromo(ctx, tenantID, code, subtotal, userID)
	if err != nil {
		var rejection *domain.PromoRejection
		if errors.As(err, &rejection) {
			s.logger.Debug("promo_rejected", rejection.Reason, logger.RequestID(ctx), map[string]interface{}{"code": code})
			return nil, err
		}
		return nil, fmt.Errorf("failed to validate promo: %w", err)
	}
	return promo, nil
}

// LoyaltyStatus reports the balance and tier progress. Tiers are computed on
// lifetime points so redeeming never demotes a customer.
func (s *Service) LoyaltyStatus(ctx context.Context, tenantID, locationID, userID string) (*interfaces.LoyaltyStatus, error) {
	settings, _, err := s.promotionSettings(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balances.GetBalance(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}

	progress, err := promotion.Progress(balance.LifetimePoints, settings.LoyaltyProgram)
	if err != nil {
		return nil, err
	}
	value, err := promotion.PointsValue(balance.AvailablePoints, settings.LoyaltyProgram)
	if err != nil {
		return nil, err
	}

	return &interfaces.LoyaltyStatus{
		UserID:          userID,
		AvailablePoints: balance.AvailablePoints,
		LifetimePoints:  balance.LifetimePoints,
		PointsValue:     value,
		Progress:        progress,
	}, nil
}
