package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

// friday 16:00 in New York
var checkoutNow = time.Date(2026, time.October, 16, 20, 0, 0, 0, time.UTC)

type harness struct {
	svc       *Service
	settings  *fakeSettings
	promos    *fakePromos
	balances  *fakeBalances
	checkouts *fakeCheckouts
	gateway   *fakeGateway
	loyalty   *fakeLoyaltyPublisher
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		settings: &fakeSettings{
			promotion: domain.PromotionSettings{
				HappyHour: domain.HappyHour{
					Enabled:         true,
					Days:            []string{"friday"},
					StartTime:       "15:00",
					EndTime:         "18:00",
					DiscountPercent: dec("20"),
				},
				LoyaltyProgram: domain.LoyaltyProgram{Enabled: true, PointsPerDollar: dec("1"), RewardThreshold: 100},
			},
			location: domain.LocationSettings{
				TenantID:    "tenant-1",
				LocationID:  "loc-1",
				TaxRate:     dec("8"),
				DeliveryFee: dec("5"),
				Timezone:    "America/New_York",
			},
		},
		promos: &fakePromos{codes: map[string]domain.PromoCode{
			"SAVE10": {Code: "SAVE10", DiscountType: domain.DiscountTypeFixed, DiscountValue: dec("10")},
		}},
		balances:  &fakeBalances{balance: domain.LoyaltyBalance{AvailablePoints: 50, LifetimePoints: 450}},
		checkouts: newFakeCheckouts(),
		gateway:   &fakeGateway{},
		loyalty:   &fakeLoyaltyPublisher{},
	}

	h.svc = NewService(h.settings, h.promos, h.balances, h.checkouts, h.gateway, h.loyalty, logger.NewNop(), Options{
		Clock: func() time.Time { return checkoutNow },
		NewID: func() string { return "chk-1" },
	})
	return h
}

func deliveryCommand() interfaces.CheckoutCommand {
	address := "221B Baker Street, Springfield"
	return interfaces.CheckoutCommand{
		TenantID:        "tenant-1",
		LocationID:      "loc-1",
		UserID:          "user-1",
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+15550100",
		OrderType:       domain.OrderTypeDelivery,
		DeliveryAddress: &address,
		PromoCode:       "SAVE10",
		Lines: []domain.CartLine{
			{ID: "pizza", Price: domain.Amount(dec("50")), Quantity: 2},
		},
	}
}

func TestQuote(t *testing.T) {
	h := newHarness(t)

	quote, err := h.svc.Quote(context.Background(), deliveryCommand())
	require.NoError(t, err)

	assert.False(t, quote.DefaultsApplied)
	require.NotNil(t, quote.Promo)
	assert.Equal(t, "80.60", quote.Pricing.Total.StringFixed(2))
	assert.Equal(t, int64(80), quote.Pricing.PointsEarned)
	assert.Empty(t, h.gateway.requests, "quotes never reach the gateway")
}

func TestQuote_PromoRejectionIsReportedNotFatal(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.PromoCode = "NOPE"

	quote, err := h.svc.Quote(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, "Invalid promo code", quote.PromoRejection)
	assert.Nil(t, quote.Promo)
	assert.True(t, quote.Pricing.PromoDiscount.IsZero())
}

func TestQuote_SettingsUnavailableFallsBackToDefaults(t *testing.T) {
	h := newHarness(t)
	h.settings.promotionErr = errStoreDown
	cmd := deliveryCommand()
	cmd.RedeemPoints = true

	quote, err := h.svc.Quote(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, quote.DefaultsApplied)
	assert.True(t, quote.Pricing.HappyHourDiscount.IsZero())
	assert.True(t, quote.Pricing.LoyaltyDiscount.IsZero())
	assert.Zero(t, quote.Pricing.PointsEarned)
}

func TestQuote_InvalidSettingsAreFatal(t *testing.T) {
	h := newHarness(t)
	h.settings.promotion.LoyaltyProgram.RewardThreshold = 0

	_, err := h.svc.Quote(context.Background(), deliveryCommand())
	assert.ErrorIs(t, err, domain.ErrConfigurationInvalid)
}

func TestQuote_LocationUnavailable(t *testing.T) {
	h := newHarness(t)
	h.settings.locationErr = errStoreDown

	_, err := h.svc.Quote(context.Background(), deliveryCommand())
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestQuote_UnknownTimezone(t *testing.T) {
	h := newHarness(t)
	h.settings.location.Timezone = "Mars/Olympus_Mons"

	_, err := h.svc.Quote(context.Background(), deliveryCommand())
	assert.ErrorIs(t, err, domain.ErrConfigurationInvalid)
}

func TestQuote_HappyHourUsesLocationTimezone(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.PromoCode = ""

	quote, err := h.svc.Quote(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, quote.Pricing.HappyHourActive)

	// the same instant is 20:00 in UTC, outside the window
	h.settings.location.Timezone = "UTC"
	quote, err = h.svc.Quote(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, quote.Pricing.HappyHourActive)
}

func TestQuote_MalformedLine(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.Lines[0].Quantity = 0

	_, err := h.svc.Quote(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrMalformedCartLine)
}

func TestMissingPriceIsRejected(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.Lines = append(cmd.Lines, domain.CartLine{ID: "burger", Quantity: 3})

	_, err := h.svc.Quote(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrMalformedCartLine)

	_, err = h.svc.Submit(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrMalformedCartLine)
	assert.Empty(t, h.checkouts.byID)
	assert.Empty(t, h.gateway.requests)

	cmd.Lines = []domain.CartLine{{ID: "pizza", Price: domain.Amount(dec("50")), Quantity: 1, Modifiers: []domain.Modifier{{Name: "bacon"}}}}
	_, err = h.svc.Quote(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrMalformedCartLine)
}

func TestSubmit_PricesAtSubmissionInstant(t *testing.T) {
	h := newHarness(t)

	// 18:00 in New York is the last minute of happy hour; every later clock read is a minute on
	tick := time.Date(2026, time.October, 16, 22, 0, 0, 0, time.UTC)
	h.svc.opts.Clock = func() time.Time {
		now := tick
		tick = tick.Add(time.Minute)
		return now
	}

	checkout, err := h.svc.Submit(context.Background(), deliveryCommand())
	require.NoError(t, err)

	submittedAt := time.Date(2026, time.October, 16, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, submittedAt, checkout.CreatedAt)
	assert.True(t, checkout.Pricing.HappyHourActive)
	assert.Equal(t, "20", checkout.Pricing.HappyHourDiscount.String())
	require.Len(t, h.gateway.requests, 1)
	assert.Equal(t, submittedAt, h.gateway.requests[0].RequestedAt)
}

func TestSubmit(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.RedeemPoints = true

	checkout, err := h.svc.Submit(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, "chk-1", checkout.ID)
	assert.Equal(t, domain.CheckoutStatusPending, checkout.Status)
	assert.Equal(t, "SAVE10", checkout.PromoCode)
	assert.Equal(t, int64(50), checkout.Pricing.PointsRedeemed)

	stored, err := h.checkouts.FindByID(context.Background(), "chk-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPending, stored.Status)

	require.Len(t, h.gateway.requests, 1)
	req := h.gateway.requests[0]
	assert.Equal(t, "chk-1", req.IdempotencyKey)
	assert.Equal(t, "80.10", req.AmountDue)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, "loc-1", req.LocationID)
	assert.True(t, req.RedeemPoints)
	assert.Equal(t, domain.OrderTypeDelivery, req.OrderType)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.DeliveryAddress = nil
	cmd.CustomerEmail = "not-an-email"

	_, err := h.svc.Submit(context.Background(), cmd)

	var verr *domain.ValidationErrors
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"delivery_address", "customer_email"}, fields)
	assert.Empty(t, h.gateway.requests)
}

func TestSubmit_EmptyCart(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.Lines = nil

	_, err := h.svc.Submit(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestSubmit_RejectedPromoBlocks(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.PromoCode = "EXPIRED"

	_, err := h.svc.Submit(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidPromoCode)

	var rejection *domain.PromoRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "Invalid promo code", rejection.Reason)
	assert.Empty(t, h.checkouts.byID)
}

func TestSubmit_GatewayFailureMarksCheckoutFailed(t *testing.T) {
	h := newHarness(t)
	h.gateway.err = errStoreDown

	_, err := h.svc.Submit(context.Background(), deliveryCommand())
	require.ErrorIs(t, err, errStoreDown)

	stored, err := h.checkouts.FindByID(context.Background(), "chk-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusFailed, stored.Status)
}

func TestCompleteCheckout_Success(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.RedeemPoints = true
	_, err := h.svc.Submit(context.Background(), cmd)
	require.NoError(t, err)

	outcome := interfaces.PaymentOutcomeMessage{CheckoutID: "chk-1", Succeeded: true, PaymentReference: "pi_123"}
	require.NoError(t, h.svc.CompleteCheckout(context.Background(), outcome))

	stored, err := h.checkouts.FindByID(context.Background(), "chk-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPaid, stored.Status)
	require.NotNil(t, stored.PaymentReference)
	assert.Equal(t, "pi_123", *stored.PaymentReference)

	// 50 available - 50 redeemed + 80 earned
	assert.Equal(t, int64(80), h.balances.balance.AvailablePoints)
	assert.Equal(t, int64(530), h.balances.balance.LifetimePoints)
	assert.Equal(t, []string{"SAVE10/chk-1"}, h.promos.recorded)

	require.Len(t, h.loyalty.messages, 1)
	msg := h.loyalty.messages[0]
	assert.Equal(t, int64(80), msg.PointsEarned)
	assert.Equal(t, int64(50), msg.PointsRedeemed)
	assert.Equal(t, domain.TierGold, msg.Tier)

	// redelivery is a no-op
	require.NoError(t, h.svc.CompleteCheckout(context.Background(), outcome))
	assert.Equal(t, int64(80), h.balances.balance.AvailablePoints)
	assert.Len(t, h.loyalty.messages, 1)
}

func TestCompleteCheckout_Failure(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Submit(context.Background(), deliveryCommand())
	require.NoError(t, err)

	err = h.svc.CompleteCheckout(context.Background(), interfaces.PaymentOutcomeMessage{
		CheckoutID:    "chk-1",
		Succeeded:     false,
		FailureReason: "card_declined",
	})
	require.NoError(t, err)

	stored, _ := h.checkouts.FindByID(context.Background(), "chk-1")
	assert.Equal(t, domain.CheckoutStatusFailed, stored.Status)
	assert.Equal(t, int64(50), h.balances.balance.AvailablePoints)
	assert.Empty(t, h.promos.recorded)
	assert.Empty(t, h.loyalty.messages)
}

func TestCompleteCheckout_InsufficientPointsLeavesCheckoutPending(t *testing.T) {
	h := newHarness(t)
	cmd := deliveryCommand()
	cmd.RedeemPoints = true
	_, err := h.svc.Submit(context.Background(), cmd)
	require.NoError(t, err)

	// points spent elsewhere between submit and payment
	h.balances.balance.AvailablePoints = 10

	err = h.svc.CompleteCheckout(context.Background(), interfaces.PaymentOutcomeMessage{CheckoutID: "chk-1", Succeeded: true})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	stored, _ := h.checkouts.FindByID(context.Background(), "chk-1")
	assert.Equal(t, domain.CheckoutStatusPending, stored.Status)
}

func TestCompleteCheckout_UnknownCheckout(t *testing.T) {
	h := newHarness(t)

	err := h.svc.CompleteCheckout(context.Background(), interfaces.PaymentOutcomeMessage{CheckoutID: "missing", Succeeded: true})
	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestValidatePromo(t *testing.T) {
	h := newHarness(t)

	promo, err := h.svc.ValidatePromo(context.Background(), "tenant-1", "SAVE10", dec("40"), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", promo.Code)

	_, err = h.svc.ValidatePromo(context.Background(), "tenant-1", "BOGUS", dec("40"), "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidPromoCode)

	h.promos.err = errStoreDown
	_, err = h.svc.ValidatePromo(context.Background(), "tenant-1", "SAVE10", dec("40"), "user-1")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrInvalidPromoCode)
}

func TestLoyaltyStatus(t *testing.T) {
	h := newHarness(t)

	status, err := h.svc.LoyaltyStatus(context.Background(), "tenant-1", "loc-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, int64(50), status.AvailablePoints)
	assert.Equal(t, "0.50", status.PointsValue.StringFixed(2))
	assert.Equal(t, domain.TierSilver, status.Progress.CurrentTier)
	require.NotNil(t, status.Progress.NextTierPoints)
	assert.Equal(t, int64(500), *status.Progress.NextTierPoints)
	assert.Equal(t, int64(50), status.Progress.PointsToNext)
	assert.InDelta(t, 90.0, status.Progress.ProgressPercent, 1e-9)
}
