package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPromoCode         = errors.New("invalid promo code")
	ErrConfigurationUnavailable = errors.New("configuration unavailable")
	ErrConfigurationInvalid     = errors.New("configuration invalid")
	ErrMalformedCartLine        = errors.New("malformed cart line")
	ErrInvalidOrderType         = errors.New("invalid order type")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrLocationUnavailable      = errors.New("location unavailable")
	ErrInsufficientPoints       = errors.New("insufficient points")
	ErrCheckoutNotFound         = errors.New("checkout not found")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
)

// PromoRejection is returned by the promo validation collaborator. Reason is
// shown to the customer as is.
type PromoRejection struct {
	Code   string
	Reason string
}

func (r *PromoRejection) Error() string {
	return fmt.Sprintf("promo code %q rejected: %s", r.Code, r.Reason)
}

func (r *PromoRejection) Is(target error) bool {
	return target == ErrInvalidPromoCode
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed field of a checkout request
type ValidationErrors struct {
	Fields []FieldError
}

func (v *ValidationErrors) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

func (v *ValidationErrors) Empty() bool {
	return len(v.Fields) == 0
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
