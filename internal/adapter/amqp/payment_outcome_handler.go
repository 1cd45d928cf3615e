package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type OutcomeProcessor interface {
	CompleteCheckout(ctx context.Context, msg interfaces.PaymentOutcomeMessage) error
}

type PaymentOutcomeHandler struct {
	service OutcomeProcessor
	logger  logger.Logger
}

func NewPaymentOutcomeHandler(service OutcomeProcessor, logger logger.Logger) *PaymentOutcomeHandler {
	return &PaymentOutcomeHandler{
		service: service,
		logger:  logger,
	}
}

// HandleOutcome applies one gateway outcome. Failures the next delivery could
// fix are marked transient; the rest are final.
func (h *PaymentOutcomeHandler) HandleOutcome(ctx context.Context, body []byte) error {
	var msg interfaces.PaymentOutcomeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse payment outcome", "", nil, err)
		return err
	}
	if msg.CheckoutID == "" {
		err := errors.New("payment outcome has no checkout id")
		h.logger.Error("message_parse_failed", "Invalid payment outcome", "", nil, err)
		return err
	}

	ctx = logger.WithRequestID(ctx, msg.CheckoutID)

	err := h.service.CompleteCheckout(ctx, msg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrCheckoutNotFound),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		h.logger.Error("payment_outcome_rejected", "Payment outcome cannot be applied", msg.CheckoutID, map[string]interface{}{
			"succeeded": msg.Succeeded,
		}, err)
		return err
	default:
		return fmt.Errorf("%w: %w", interfaces.ErrTransient, err)
	}
}
