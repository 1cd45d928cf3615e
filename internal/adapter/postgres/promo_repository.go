package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

const (
	reasonUnknown      = "Invalid promo code"
	reasonInactive     = "Promo code is no longer active"
	reasonNotStarted   = "Promo code is not active yet"
	reasonExpired      = "Promo code has expired"
	reasonUsageLimit   = "Promo code usage limit reached"
	reasonAlreadyUsed  = "Promo code has already been used"
	reasonBelowMinimum = "Minimum order of $%s required for this promo code"
)

type promoRepository struct {
	db  DB
	now func() time.Time
}

func NewPromoRepository(db DB) interfaces.PromoRepository {
	return &promoRepository{db: db, now: time.Now}
}

// promoRow is a promo_codes row before eligibility checks
type promoRow struct {
	code        string
	kind        string
	value       string
	minOrder    *string
	categories  []string
	active      bool
	validFrom   *time.Time
	validTo     *time.Time
	maxUses     *int64
	timesUsed   int64
	oncePerUser bool
}

func (r *promoRepository) ValidatePromo(ctx context.Context, tenantID, code string, subtotal decimal.Decimal, userID string) (*domain.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	query := `
		SELECT code, discount_type, discount_value::text, min_order_amount::text,
		       applicable_categories, active, valid_from, valid_to,
		       max_uses, times_used, once_per_user
		FROM promo_codes
		WHERE tenant_id = $1 AND code = $2
	`

	var row promoRow
	err := r.db.QueryRow(ctx, query, tenantID, code).Scan(
		&row.code, &row.kind, &row.value, &row.minOrder,
		&row.categories, &row.active, &row.validFrom, &row.validTo,
		&row.maxUses, &row.timesUsed, &row.oncePerUser,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, &domain.PromoRejection{Code: code, Reason: reasonUnknown}
		}
		return nil, fmt.Errorf("failed to load promo code: %w", err)
	}

	used := false
	if row.oncePerUser && userID != "" {
		usedQuery := `
			SELECT EXISTS (
				SELECT 1 FROM promo_redemptions
				WHERE tenant_id = $1 AND code = $2 AND user_id = $3
			)
		`
		if err := r.db.QueryRow(ctx, usedQuery, tenantID, code, userID).Scan(&used); err != nil {
			return nil, fmt.Errorf("failed to check promo usage: %w", err)
		}
	}

	return evaluatePromo(row, subtotal, used, r.now())
}

// RecordRedemption is idempotent per checkout
func (r *promoRepository) RecordRedemption(ctx context.Context, tenantID, code, userID, checkoutID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO promo_redemptions (tenant_id, code, user_id, checkout_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (checkout_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, insert, tenantID, code, userID, checkoutID, r.now())
	if err != nil {
		return fmt.Errorf("failed to insert promo redemption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	update := `
		UPDATE promo_codes
		SET times_used = times_used + 1
		WHERE tenant_id = $1 AND code = $2
	`
	if _, err := tx.Exec(ctx, update, tenantID, code); err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}

	return tx.Commit(ctx)
}

func evaluatePromo(row promoRow, subtotal decimal.Decimal, used bool, now time.Time) (*domain.PromoCode, error) {
	reject := func(reason string) (*domain.PromoCode, error) {
		return nil, &domain.PromoRejection{Code: row.code, Reason: reason}
	}

	switch {
	case !row.active:
		return reject(reasonInactive)
	case row.validFrom != nil && now.Before(*row.validFrom):
		return reject(reasonNotStarted)
	case row.validTo != nil && now.After(*row.validTo):
		return reject(reasonExpired)
	case row.maxUses != nil && row.timesUsed >= *row.maxUses:
		return reject(reasonUsageLimit)
	case used:
		return reject(reasonAlreadyUsed)
	}

	value, err := decimal.NewFromString(row.value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s discount value %q", domain.ErrInvalidPromoCode, row.code, row.value)
	}

	promo := &domain.PromoCode{
		Code:                 row.code,
		DiscountType:         domain.DiscountType(row.kind),
		DiscountValue:        value,
		ApplicableCategories: row.categories,
	}

	if row.minOrder != nil {
		minOrder, err := decimal.NewFromString(*row.minOrder)
		if err != nil {
			return nil, fmt.Errorf("%w: %s minimum order %q", domain.ErrInvalidPromoCode, row.code, *row.minOrder)
		}
		if subtotal.LessThan(minOrder) {
			return reject(fmt.Sprintf(reasonBelowMinimum, minOrder.StringFixed(2)))
		}
		promo.MinOrderAmount = &minOrder
	}

	if err := promo.Validate(); err != nil {
		return nil, err
	}
	return promo, nil
}
