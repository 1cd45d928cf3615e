package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/pricing"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/promotion"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

// price gathers every collaborator input into one snapshot taken at now and
// runs the calculator once. With strictPromo a rejected promo code fails the call.
func (s *Service) price(ctx context.Context, cmd interfaces.CheckoutCommand, now time.Time, strictPromo bool) (*interfaces.Quote, error) {
	requestID := logger.RequestID(ctx)

	for i, line := range cmd.Lines {
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("cart line %d: %w", i, err)
		}
	}

	location, err := s.location(ctx, cmd.TenantID, cmd.LocationID)
	if err != nil {
		return nil, err
	}
	tz, err := loadTimezone(location.Timezone)
	if err != nil {
		return nil, err
	}

	settings, defaulted, err := s.promotionSettings(ctx, cmd.TenantID, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	quote := &interfaces.Quote{DefaultsApplied: defaulted}

	if cmd.PromoCode != "" {
		promo, err := s.promos.ValidatePromo(ctx, cmd.TenantID, cmd.PromoCode, subtotal(cmd.Lines), cmd.UserID)
		var rejection *domain.PromoRejection
		switch {
		case errors.As(err, &rejection):
			s.logger.Debug("promo_rejected", rejection.Reason, requestID, map[string]interface{}{"code": cmd.PromoCode})
			if strictPromo {
				return nil, err
			}
			quote.PromoRejection = rejection.Reason
		case err != nil:
			return nil, fmt.Errorf("failed to validate promo: %w", err)
		default:
			quote.Promo = promo
		}
	}

	if cmd.RedeemPoints {
		balance, err := s.balances.GetBalance(ctx, cmd.TenantID, cmd.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load balance: %w", err)
		}
		quote.AvailablePoints = balance.AvailablePoints
	}

	result, err := pricing.ComputeTotals(pricing.Input{
		Cart:                   cmd.Lines,
		Promo:                  quote.Promo,
		Settings:               settings,
		Location:               location,
		OrderType:              cmd.OrderType,
		RedeemPoints:           cmd.RedeemPoints,
		AvailablePoints:        quote.AvailablePoints,
		Now:                    now,
		Timezone:               tz,
		EnforcePromoCategories: s.opts.EnforcePromoCategories,
	})
	if err != nil {
		s.logger.Error("pricing_failed", "Failed to compute totals", requestID, map[string]interface{}{
			"tenant_id":   cmd.TenantID,
			"location_id": cmd.LocationID,
		}, err)
		return nil, err
	}
	quote.Pricing = result
	return quote, nil
}

func (s *Service) location(ctx context.Context, tenantID, locationID string) (domain.LocationSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SettingsTimeout)
	defer cancel()

	location, err := s.settings.GetLocation(ctx, tenantID, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationInvalid) {
			return domain.LocationSettings{}, err
		}
		return domain.LocationSettings{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return location, nil
}

// promotionSettings falls back to the defaults when the store cannot be
// reached. Settings that were fetched but are invalid stay fatal.
func (s *Service) promotionSettings(ctx context.Context, tenantID, locationID string) (domain.PromotionSettings, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SettingsTimeout)
	defer cancel()

	settings, err := s.settings.GetPromotionSettings(ctx, tenantID, locationID)
	if err == nil {
		return settings, false, nil
	}
	if errors.Is(err, domain.ErrConfigurationInvalid) {
		return domain.PromotionSettings{}, false, err
	}

	s.logger.Error("configuration_unavailable", "Promotion settings unavailable, using defaults", logger.RequestID(ctx), map[string]interface{}{
		"tenant_id":   tenantID,
		"location_id": locationID,
	}, fmt.Errorf("%w: %w", domain.ErrConfigurationUnavailable, err))
	return domain.DefaultPromotionSettings(), true, nil
}

func (s *Service) publishLoyaltyUpdate(ctx context.Context, checkout *domain.Checkout, balance domain.LoyaltyBalance) {
	settings, _, err := s.promotionSettings(ctx, checkout.TenantID, checkout.LocationID)
	if err != nil {
		s.logger.Error("loyalty_update_skipped", "Cannot resolve tier for loyalty update", checkout.ID, nil, err)
		return
	}

	msg := interfaces.LoyaltyUpdateMessage{
		TenantID:        checkout.TenantID,
		UserID:          checkout.UserID,
		CheckoutID:      checkout.ID,
		PointsEarned:    checkout.Pricing.PointsEarned,
		PointsRedeemed:  checkout.Pricing.PointsRedeemed,
		AvailablePoints: balance.AvailablePoints,
		Tier:            promotion.Tier(balance.LifetimePoints, settings.LoyaltyProgram),
		Timestamp:       s.opts.Clock(),
	}
	if err := s.loyalty.PublishLoyaltyUpdate(ctx, msg); err != nil {
		// notification only, the points are already committed
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish loyalty update", checkout.ID, nil, err)
	}
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", domain.ErrConfigurationInvalid, name, err)
	}
	return loc, nil
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}
