// Package pricing turns a cart and already-resolved promotion inputs into the
// authoritative checkout breakdown.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/promotion"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Input is an immutable snapshot of everything one pricing run needs
type Input struct {
	Cart            []domain.CartLine
	Promo           *domain.PromoCode
	Settings        domain.PromotionSettings
	Location        domain.LocationSettings
	OrderType       domain.OrderType
	RedeemPoints    bool
	AvailablePoints int64
	Now             time.Time
	Timezone        *time.Location

	// EnforcePromoCategories limits the promo discount to lines in the promo's
	// applicable categories. Off, the promo applies to the whole subtotal.
	EnforcePromoCategories bool
}

// ComputeTotals prices the cart. Discounts stack in a fixed order: happy hour,
// promo code, loyalty redemption. Each is taken from the original subtotal and
// the three together never exceed it.
func ComputeTotals(in Input) (domain.PricingResult, error) {
	if err := validate(in); err != nil {
		return domain.PricingResult{}, err
	}

	var res domain.PricingResult
	program := in.Settings.LoyaltyProgram

	// 1. subtotal
	res.Subtotal = decimal.Zero
	res.ModifiersTotal = decimal.Zero
	for _, line := range in.Cart {
		res.Subtotal = res.Subtotal.Add(line.LineTotal())
		res.ModifiersTotal = res.ModifiersTotal.Add(line.ModifiersTotal())
	}

	// 2. happy hour
	res.HappyHourActive = promotion.IsHappyHourActive(in.Settings, in.Now, in.Timezone)
	res.HappyHourDiscount = promotion.HappyHourDiscount(res.Subtotal, in.Settings, in.Now, in.Timezone)

	// 3. promo code, capped at what happy hour left
	res.PromoDiscount = PromoDiscount(in.Promo, in.Cart, res.Subtotal, in.EnforcePromoCategories)
	afterHappyHour := nonNegative(res.Subtotal.Sub(res.HappyHourDiscount))
	res.PromoDiscount = decimal.Min(res.PromoDiscount, afterHappyHour)

	// 4. tax on the base before loyalty redemption
	res.TaxableBase = nonNegative(res.Subtotal.Sub(res.HappyHourDiscount).Sub(res.PromoDiscount))
	res.TaxAmount = decimal.Zero
	if in.OrderType == domain.OrderTypeDelivery {
		res.TaxAmount = res.TaxableBase.Mul(in.Location.TaxRate).Div(hundred)
	}

	// 5. delivery fee
	res.DeliveryFee = decimal.Zero
	if in.OrderType == domain.OrderTypeDelivery {
		res.DeliveryFee = in.Location.DeliveryFee
	}

	// 6. loyalty redemption, clamped rather than rejected
	res.LoyaltyDiscount = decimal.Zero
	if in.RedeemPoints {
		pointsValue, err := promotion.PointsValue(max(0, in.AvailablePoints), program)
		if err != nil {
			return domain.PricingResult{}, err
		}
		res.LoyaltyDiscount = decimal.Min(pointsValue, res.TaxableBase)
	}

	// 7. points consumed, derived back from the dollars redeemed
	if res.LoyaltyDiscount.IsPositive() {
		units := res.LoyaltyDiscount.Mul(decimal.NewFromInt(program.RewardThreshold)).Round(0).IntPart()
		res.PointsRedeemed = min(units, in.AvailablePoints)
	}

	// 8. total
	merchandise := nonNegative(res.Subtotal.Sub(res.HappyHourDiscount).Sub(res.PromoDiscount).Sub(res.LoyaltyDiscount))
	res.Total = merchandise.Add(res.DeliveryFee).Add(res.TaxAmount)

	// 9. points earned on the charged total
	res.PointsEarned = promotion.PointsEarned(res.Total, program)

	return res, nil
}

// PromoDiscount is the raw discount a promo grants before stacking caps. A
// promo whose minimum order is not met is inert and grants nothing.
func PromoDiscount(promo *domain.PromoCode, cart []domain.CartLine, subtotal decimal.Decimal, enforceCategories bool) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	if promo.MinOrderAmount != nil && subtotal.LessThan(*promo.MinOrderAmount) {
		return decimal.Zero
	}

	base := subtotal
	if enforceCategories {
		base = decimal.Zero
		for _, line := range cart {
			if promo.AppliesTo(line.Category) {
				base = base.Add(line.LineTotal())
			}
		}
	}

	switch promo.DiscountType {
	case domain.DiscountTypePercentage:
		return promo.DiscountValue.Div(hundred).Mul(base)
	case domain.DiscountTypeFixed:
		if enforceCategories {
			return decimal.Min(promo.DiscountValue, base)
		}
		return promo.DiscountValue
	default:
		return decimal.Zero
	}
}

func validate(in Input) error {
	for i, line := range in.Cart {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("cart line %d: %w", i, err)
		}
	}
	if !in.OrderType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidOrderType, in.OrderType)
	}
	if err := in.Settings.Validate(); err != nil {
		return err
	}
	if err := in.Location.Validate(); err != nil {
		return err
	}
	if in.Promo != nil {
		if err := in.Promo.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
