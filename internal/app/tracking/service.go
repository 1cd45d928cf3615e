package tracking

import (
	"context"
	"time"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

// DefaultStaleAfter is how long a checkout may wait on the gateway before it is flagged
const DefaultStaleAfter = 15 * time.Minute

type Service struct {
	checkouts  interfaces.CheckoutRepository
	logger     logger.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewService(checkouts interfaces.CheckoutRepository, logger logger.Logger, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Service{
		checkouts:  checkouts,
		logger:     logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (s *Service) GetCheckoutStatus(ctx context.Context, checkoutID string) (*interfaces.CheckoutStatusResponse, error) {
	c, err := s.checkouts.FindByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	resp := &interfaces.CheckoutStatusResponse{
		CheckoutID:       c.ID,
		Status:           c.Status,
		Total:            c.Pricing.Total.Round(2),
		PointsEarned:     c.Pricing.PointsEarned,
		PointsRedeemed:   c.Pricing.PointsRedeemed,
		PaymentReference: c.PaymentReference,
		UpdatedAt:        c.UpdatedAt,
		CompletedAt:      c.CompletedAt,
	}

	if c.Status == domain.CheckoutStatusPending && s.now().Sub(c.CreatedAt) > s.staleAfter {
		resp.AwaitingGateway = true
		s.logger.Debug("checkout_stale", "Checkout still waiting on payment gateway", c.ID, map[string]interface{}{
			"created_at": c.CreatedAt,
		})
	}

	return resp, nil
}
