package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type fakeSettings struct {
	promotion    domain.PromotionSettings
	promotionErr error
	location     domain.LocationSettings
	locationErr  error
}

func (f *fakeSettings) GetPromotionSettings(ctx context.Context, tenantID, locationID string) (domain.PromotionSettings, error) {
	return f.promotion, f.promotionErr
}

func (f *fakeSettings) GetLocation(ctx context.Context, tenantID, locationID string) (domain.LocationSettings, error) {
	return f.location, f.locationErr
}

type fakePromos struct {
	codes    map[string]domain.PromoCode
	err      error
	recorded []string
}

func (f *fakePromos) ValidatePromo(ctx context.Context, tenantID, code string, subtotal decimal.Decimal, userID string) (*domain.PromoCode, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.codes[code]
	if !ok {
		return nil, &domain.PromoRejection{Code: code, Reason: "Invalid promo code"}
	}
	return &p, nil
}

func (f *fakePromos) RecordRedemption(ctx context.Context, tenantID, code, userID, checkoutID string) error {
	f.recorded = append(f.recorded, code+"/"+checkoutID)
	return nil
}

type fakeBalances struct {
	mu        sync.Mutex
	balance   domain.LoyaltyBalance
	getErr    error
	commits   map[string]domain.PointsCommit
	commitErr error
}

func (f *fakeBalances) GetBalance(ctx context.Context, tenantID, userID string) (domain.LoyaltyBalance, error) {
	return f.balance, f.getErr
}

func (f *fakeBalances) CommitPoints(ctx context.Context, commit domain.PointsCommit) (domain.LoyaltyBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.commitErr != nil {
		return domain.LoyaltyBalance{}, f.commitErr
	}
	if f.commits == nil {
		f.commits = map[string]domain.PointsCommit{}
	}
	if _, done := f.commits[commit.CheckoutID]; done {
		return f.balance, nil
	}
	if f.balance.AvailablePoints < commit.Redeemed {
		return domain.LoyaltyBalance{}, domain.ErrInsufficientPoints
	}
	f.commits[commit.CheckoutID] = commit
	f.balance.AvailablePoints += commit.Earned - commit.Redeemed
	f.balance.LifetimePoints += commit.Earned
	return f.balance, nil
}

type fakeCheckouts struct {
	byID map[string]domain.Checkout
}

func newFakeCheckouts() *fakeCheckouts {
	return &fakeCheckouts{byID: map[string]domain.Checkout{}}
}

func (f *fakeCheckouts) Create(ctx context.Context, c *domain.Checkout) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCheckouts) FindByID(ctx context.Context, id string) (*domain.Checkout, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return &c, nil
}

func (f *fakeCheckouts) Update(ctx context.Context, c *domain.Checkout) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrCheckoutNotFound
	}
	f.byID[c.ID] = *c
	return nil
}

type fakeGateway struct {
	requests []interfaces.PaymentSessionRequest
	err      error
}

func (f *fakeGateway) RequestPaymentSession(ctx context.Context, req interfaces.PaymentSessionRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

type fakeLoyaltyPublisher struct {
	messages []interfaces.LoyaltyUpdateMessage
}

func (f *fakeLoyaltyPublisher) PublishLoyaltyUpdate(ctx context.Context, msg interfaces.LoyaltyUpdateMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

var errStoreDown = errors.New("connection refused")
