package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Modifier is an add-on priced per unit of its line. A nil Price means the
// caller never supplied one.
type Modifier struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

// CartLine is one menu item in the cart. Modifier prices are not part of Price
// unless the caller already folded them in. A nil Price is malformed, never free.
type CartLine struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Category  string           `json:"category,omitempty"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  int              `json:"quantity"`
	Size      *string          `json:"size,omitempty"`
	Modifiers []Modifier       `json:"modifiers,omitempty"`
}

func (l CartLine) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: line has no id", ErrMalformedCartLine)
	}
	if l.Price == nil {
		return fmt.Errorf("%w: line %s has no price", ErrMalformedCartLine, l.ID)
	}
	if l.Price.IsNegative() {
		return fmt.Errorf("%w: line %s has negative price %s", ErrMalformedCartLine, l.ID, l.Price)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: line %s has quantity %d", ErrMalformedCartLine, l.ID, l.Quantity)
	}
	for _, m := range l.Modifiers {
		if m.Price == nil {
			return fmt.Errorf("%w: line %s modifier %q has no price", ErrMalformedCartLine, l.ID, m.Name)
		}
		if m.Price.IsNegative() {
			return fmt.Errorf("%w: line %s modifier %q has negative price", ErrMalformedCartLine, l.ID, m.Name)
		}
	}
	return nil
}

// LineTotal is price times quantity. Call Validate first.
func (l CartLine) LineTotal() decimal.Decimal {
	if l.Price == nil {
		return decimal.Zero
	}
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ModifiersTotal is the sum of modifier prices times quantity
func (l CartLine) ModifiersTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range l.Modifiers {
		if m.Price != nil {
			sum = sum.Add(*m.Price)
		}
	}
	return sum.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Amount wraps a price for building cart lines in code
func Amount(d decimal.Decimal) *decimal.Decimal {
	return &d
}
