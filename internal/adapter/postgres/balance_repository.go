package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type balanceRepository struct {
	db  DB
	now func() time.Time
}

func NewBalanceRepository(db DB) interfaces.BalanceRepository {
	return &balanceRepository{db: db, now: time.Now}
}

// GetBalance returns a zero balance for users that never earned points
func (r *balanceRepository) GetBalance(ctx context.Context, tenantID, userID string) (domain.LoyaltyBalance, error) {
	query := `
		SELECT available_points, lifetime_points, updated_at
		FROM loyalty_balances
		WHERE tenant_id = $1 AND user_id = $2
	`

	balance := domain.LoyaltyBalance{TenantID: tenantID, UserID: userID}
	err := r.db.QueryRow(ctx, query, tenantID, userID).Scan(
		&balance.AvailablePoints, &balance.LifetimePoints, &balance.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return balance, nil
		}
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to load loyalty balance: %w", err)
	}
	return balance, nil
}

// CommitPoints applies one checkout's earn and redeem atomically. The ledger
// row is unique per checkout so a replayed commit changes nothing. The
// decrement only succeeds while the balance still covers the redemption.
func (r *balanceRepository) CommitPoints(ctx context.Context, commit domain.PointsCommit) (domain.LoyaltyBalance, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := r.now()

	ledger := `
		INSERT INTO loyalty_ledger (tenant_id, user_id, checkout_id, points_earned, points_redeemed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (checkout_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, ledger, commit.TenantID, commit.UserID, commit.CheckoutID, commit.Earned, commit.Redeemed, now)
	if err != nil {
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	balance := domain.LoyaltyBalance{TenantID: commit.TenantID, UserID: commit.UserID}

	if tag.RowsAffected() == 0 {
		current := `
			SELECT available_points, lifetime_points, updated_at
			FROM loyalty_balances
			WHERE tenant_id = $1 AND user_id = $2
		`
		err := tx.QueryRow(ctx, current, commit.TenantID, commit.UserID).Scan(
			&balance.AvailablePoints, &balance.LifetimePoints, &balance.UpdatedAt,
		)
		if err != nil && !isNoRows(err) {
			return domain.LoyaltyBalance{}, fmt.Errorf("failed to load loyalty balance: %w", err)
		}
		return balance, tx.Commit(ctx)
	}

	ensure := `
		INSERT INTO loyalty_balances (tenant_id, user_id, available_points, lifetime_points, updated_at)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (tenant_id, user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, ensure, commit.TenantID, commit.UserID, now); err != nil {
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to create loyalty balance: %w", err)
	}

	update := `
		UPDATE loyalty_balances
		SET available_points = available_points - $3 + $4,
		    lifetime_points = lifetime_points + $4,
		    updated_at = $5
		WHERE tenant_id = $1 AND user_id = $2 AND available_points >= $3
		RETURNING available_points, lifetime_points, updated_at
	`
	err = tx.QueryRow(ctx, update, commit.TenantID, commit.UserID, commit.Redeemed, commit.Earned, now).Scan(
		&balance.AvailablePoints, &balance.LifetimePoints, &balance.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.LoyaltyBalance{}, domain.ErrInsufficientPoints
		}
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to update loyalty balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.LoyaltyBalance{}, fmt.Errorf("failed to commit points: %w", err)
	}
	return balance, nil
}
