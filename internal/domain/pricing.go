package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LocationSettings are the location-level fields pricing needs besides promotions
type LocationSettings struct {
	TenantID    string
	LocationID  string
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
	Timezone    string
}

func (l LocationSettings) Validate() error {
	if l.TaxRate.IsNegative() {
		return fmt.Errorf("%w: tax rate %s is negative", ErrConfigurationInvalid, l.TaxRate)
	}
	if l.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: delivery fee %s is negative", ErrConfigurationInvalid, l.DeliveryFee)
	}
	return nil
}

// PricingResult is the authoritative checkout breakdown. Amounts are unrounded.
type PricingResult struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ModifiersTotal    decimal.Decimal `json:"modifiersTotal"`
	HappyHourActive   bool            `json:"happyHourActive"`
	HappyHourDiscount decimal.Decimal `json:"happyHourDiscount"`
	PromoDiscount     decimal.Decimal `json:"promoDiscount"`
	LoyaltyDiscount   decimal.Decimal `json:"loyaltyDiscount"`
	TaxableBase       decimal.Decimal `json:"taxableBase"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	Total             decimal.Decimal `json:"total"`
	PointsEarned      int64           `json:"pointsEarned"`
	PointsRedeemed    int64           `json:"pointsRedeemed"`
}

// Rounded returns a copy with every amount rounded to cents, for display only
func (r PricingResult) Rounded() PricingResult {
	out := r
	out.Subtotal = r.Subtotal.Round(2)
	out.ModifiersTotal = r.ModifiersTotal.Round(2)
	out.HappyHourDiscount = r.HappyHourDiscount.Round(2)
	out.PromoDiscount = r.PromoDiscount.Round(2)
	out.LoyaltyDiscount = r.LoyaltyDiscount.Round(2)
	out.TaxableBase = r.TaxableBase.Round(2)
	out.DeliveryFee = r.DeliveryFee.Round(2)
	out.TaxAmount = r.TaxAmount.Round(2)
	out.Total = r.Total.Round(2)
	return out
}

// TotalDiscount is the sum of all three discounts
func (r PricingResult) TotalDiscount() decimal.Decimal {
	return r.HappyHourDiscount.Add(r.PromoDiscount).Add(r.LoyaltyDiscount)
}
