package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PromoCode is a promo already resolved by the promo validation collaborator
type PromoCode struct {
	Code                 string           `json:"code"`
	DiscountType         DiscountType     `json:"discountType"`
	DiscountValue        decimal.Decimal  `json:"discountValue"`
	MinOrderAmount       *decimal.Decimal `json:"minOrderAmount,omitempty"`
	ApplicableCategories []string         `json:"applicableCategories,omitempty"`
}

func (p PromoCode) Validate() error {
	if p.DiscountValue.IsNegative() {
		return fmt.Errorf("%w: %s has negative discount value", ErrInvalidPromoCode, p.Code)
	}
	switch p.DiscountType {
	case DiscountTypePercentage:
		if p.DiscountValue.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s percentage above 100", ErrInvalidPromoCode, p.Code)
		}
	case DiscountTypeFixed:
	default:
		return fmt.Errorf("%w: %s has unknown discount type %q", ErrInvalidPromoCode, p.Code, p.DiscountType)
	}
	if p.MinOrderAmount != nil && p.MinOrderAmount.IsNegative() {
		return fmt.Errorf("%w: %s has negative minimum order", ErrInvalidPromoCode, p.Code)
	}
	return nil
}

// AppliesTo reports whether a line category is covered. No categories means everything is.
func (p PromoCode) AppliesTo(category string) bool {
	if len(p.ApplicableCategories) == 0 {
		return true
	}
	for _, c := range p.ApplicableCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
