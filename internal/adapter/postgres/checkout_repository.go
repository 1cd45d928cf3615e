package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type checkoutRepository struct {
	db DB
}

func NewCheckoutRepository(db DB) interfaces.CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, c *domain.Checkout) error {
	lines, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart lines: %w", err)
	}
	breakdown, err := json.Marshal(c.Pricing)
	if err != nil {
		return fmt.Errorf("failed to encode pricing: %w", err)
	}

	query := `
		INSERT INTO checkouts (id, tenant_id, location_id, user_id, customer_name, customer_email,
		                       customer_phone, order_type, delivery_address, promo_code, redeem_points,
		                       lines, pricing, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = r.db.Exec(ctx, query,
		c.ID, c.TenantID, c.LocationID, c.UserID, c.CustomerName, c.CustomerEmail,
		c.CustomerPhone, c.OrderType, c.DeliveryAddress, c.PromoCode, c.RedeemPoints,
		lines, breakdown, c.Pricing.Total.Round(2), c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkout: %w", err)
	}
	return nil
}

func (r *checkoutRepository) FindByID(ctx context.Context, id string) (*domain.Checkout, error) {
	query := `
		SELECT id, tenant_id, location_id, user_id, customer_name, customer_email,
		       customer_phone, order_type, delivery_address, promo_code, redeem_points,
		       lines, pricing, status, payment_reference, created_at, updated_at, completed_at
		FROM checkouts
		WHERE id = $1
	`

	var c domain.Checkout
	var lines, breakdown []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TenantID, &c.LocationID, &c.UserID, &c.CustomerName, &c.CustomerEmail,
		&c.CustomerPhone, &c.OrderType, &c.DeliveryAddress, &c.PromoCode, &c.RedeemPoints,
		&lines, &breakdown, &c.Status, &c.PaymentReference, &c.CreatedAt, &c.UpdatedAt, &c.CompletedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCheckoutNotFound, id)
		}
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}

	if err := json.Unmarshal(lines, &c.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	if err := json.Unmarshal(breakdown, &c.Pricing); err != nil {
		return nil, fmt.Errorf("failed to decode pricing: %w", err)
	}
	return &c, nil
}

func (r *checkoutRepository) Update(ctx context.Context, c *domain.Checkout) error {
	query := `
		UPDATE checkouts
		SET status = $1, payment_reference = $2, updated_at = $3, completed_at = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, c.Status, c.PaymentReference, c.UpdatedAt, c.CompletedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update checkout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCheckoutNotFound, c.ID)
	}
	return nil
}
