package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

var promoNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func activePromo() promoRow {
	return promoRow{code: "SAVE10", kind: "fixed", value: "10", active: true}
}

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	var rejection *domain.PromoRejection
	require.True(t, errors.As(err, &rejection), "expected a promo rejection, got %v", err)
	return rejection.Reason
}

func TestEvaluatePromo(t *testing.T) {
	yesterday := promoNow.Add(-24 * time.Hour)
	tomorrow := promoNow.Add(24 * time.Hour)
	minOrder := "25"
	maxUses := int64(3)

	cases := []struct {
		name   string
		mutate func(r *promoRow)
		used   bool
		reason string
	}{
		{name: "inactive", mutate: func(r *promoRow) { r.active = false }, reason: reasonInactive},
		{name: "not started", mutate: func(r *promoRow) { r.validFrom = &tomorrow }, reason: reasonNotStarted},
		{name: "expired", mutate: func(r *promoRow) { r.validTo = &yesterday }, reason: reasonExpired},
		{name: "usage limit", mutate: func(r *promoRow) { r.maxUses, r.timesUsed = &maxUses, 3 }, reason: reasonUsageLimit},
		{name: "already used", mutate: func(r *promoRow) {}, used: true, reason: reasonAlreadyUsed},
		{name: "below minimum", mutate: func(r *promoRow) { r.minOrder = &minOrder }, reason: "Minimum order of $25.00 required for this promo code"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := activePromo()
			tc.mutate(&row)

			_, err := evaluatePromo(row, decimal.NewFromInt(20), tc.used, promoNow)
			assert.ErrorIs(t, err, domain.ErrInvalidPromoCode)
			assert.Equal(t, tc.reason, rejectionReason(t, err))
		})
	}
}

func TestEvaluatePromo_Accepted(t *testing.T) {
	row := activePromo()
	row.kind = "percentage"
	row.value = "15"
	minOrder := "20.00"
	row.minOrder = &minOrder
	row.categories = []string{"pizza"}
	validTo := promoNow.Add(time.Hour)
	row.validTo = &validTo

	promo, err := evaluatePromo(row, decimal.NewFromInt(20), false, promoNow)
	require.NoError(t, err)

	assert.Equal(t, domain.DiscountTypePercentage, promo.DiscountType)
	assert.Equal(t, "15", promo.DiscountValue.String())
	require.NotNil(t, promo.MinOrderAmount)
	assert.Equal(t, "20", promo.MinOrderAmount.String())
	assert.Equal(t, []string{"pizza"}, promo.ApplicableCategories)
}

func TestEvaluatePromo_CorruptRowIsNotARejection(t *testing.T) {
	row := activePromo()
	row.kind = "bogo"

	_, err := evaluatePromo(row, decimal.NewFromInt(20), false, promoNow)
	assert.ErrorIs(t, err, domain.ErrInvalidPromoCode)

	var rejection *domain.PromoRejection
	assert.False(t, errors.As(err, &rejection))
}

func TestPromoRepository_ValidatePromo(t *testing.T) {
	db := newFakeDB()
	db.rows["FROM promo_codes"] = []any{
		"SAVE10", "fixed", "10", nil,
		[]string(nil), true, nil, nil,
		nil, int64(0), true,
	}
	db.rows["SELECT EXISTS"] = []any{false}

	repo := &promoRepository{db: db, now: func() time.Time { return promoNow }}

	promo, err := repo.ValidatePromo(context.Background(), "t", " save10 ", decimal.NewFromInt(40), "u")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", promo.Code)
	assert.Equal(t, "10", promo.DiscountValue.String())

	db.rows["SELECT EXISTS"] = []any{true}
	_, err = repo.ValidatePromo(context.Background(), "t", "SAVE10", decimal.NewFromInt(40), "u")
	assert.Equal(t, reasonAlreadyUsed, rejectionReason(t, err))
}

func TestPromoRepository_UnknownCode(t *testing.T) {
	db := newFakeDB()
	db.noRows["FROM promo_codes"] = true

	_, err := NewPromoRepository(db).ValidatePromo(context.Background(), "t", "NOPE", decimal.NewFromInt(40), "u")
	assert.Equal(t, reasonUnknown, rejectionReason(t, err))
}

func TestPromoRepository_RecordRedemptionIsIdempotent(t *testing.T) {
	db := newFakeDB()
	repo := NewPromoRepository(db)

	require.NoError(t, repo.RecordRedemption(context.Background(), "t", "SAVE10", "u", "chk-1"))
	assert.Len(t, db.execs, 2)

	db.execs = nil
	db.affected["INSERT INTO promo_redemptions"] = 0
	require.NoError(t, repo.RecordRedemption(context.Background(), "t", "SAVE10", "u", "chk-1"))
	assert.Len(t, db.execs, 1, "usage counter is only bumped for a new redemption")
	assert.Equal(t, 2, db.commits)
}
