package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Checkout is one submitted checkout attempt waiting on the payment gateway
type Checkout struct {
	ID               string
	TenantID         string
	LocationID       string
	UserID           string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	OrderType        OrderType
	DeliveryAddress  *string
	PromoCode        string
	RedeemPoints     bool
	Lines            []CartLine
	Pricing          PricingResult
	Status           CheckoutStatus
	PaymentReference *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// NewCheckout builds a pending checkout and validates the customer-facing fields
func NewCheckout(id string, c Checkout, now time.Time) (*Checkout, error) {
	c.ID = id
	c.Status = CheckoutStatusPending
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks presence of required customer and delivery fields
func (c *Checkout) Validate() error {
	errs := &ValidationErrors{}

	if c.TenantID == "" {
		errs.Add("tenant_id", "tenant id is required")
	}
	if c.LocationID == "" {
		errs.Add("location_id", "location id is required")
	}
	if c.UserID == "" {
		errs.Add("user_id", "user id is required")
	}

	name := strings.TrimSpace(c.CustomerName)
	if len(name) < 1 || len(name) > 100 {
		errs.Add("customer_name", "customer name must be 1-100 characters")
	}
	if _, err := mail.ParseAddress(c.CustomerEmail); err != nil {
		errs.Add("customer_email", "customer email is invalid")
	}

	switch c.OrderType {
	case OrderTypeDelivery:
		if c.DeliveryAddress == nil || len(strings.TrimSpace(*c.DeliveryAddress)) < 10 {
			errs.Add("delivery_address", "delivery address required (min 10 characters)")
		}
		if strings.TrimSpace(c.CustomerPhone) == "" {
			errs.Add("customer_phone", "phone number is required for delivery orders")
		}
	case OrderTypePickup:
		if c.DeliveryAddress != nil {
			errs.Add("delivery_address", "delivery address must not be present for pickup orders")
		}
	default:
		errs.Add("order_type", "order type must be one of: pickup, delivery")
	}

	if !errs.Empty() {
		return errs
	}
	return nil
}

// TransitionTo moves the checkout to a terminal payment status
func (c *Checkout) TransitionTo(newStatus CheckoutStatus, paymentRef string, now time.Time) error {
	if !c.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, c.Status, newStatus)
	}

	c.Status = newStatus
	c.UpdatedAt = now
	if paymentRef != "" {
		c.PaymentReference = &paymentRef
	}
	c.CompletedAt = &now
	return nil
}

func (c *Checkout) CanTransitionTo(newStatus CheckoutStatus) bool {
	validTransitions := map[CheckoutStatus][]CheckoutStatus{
		CheckoutStatusPending: {CheckoutStatusPaid, CheckoutStatusFailed},
		CheckoutStatusPaid:    {},
		CheckoutStatusFailed:  {},
	}

	for _, s := range validTransitions[c.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}
