package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type Publisher struct {
	conn Connection
}

// NewPublisher returns the payment gateway and loyalty notification producer
func NewPublisher(conn Connection) *Publisher {
	return &Publisher{conn: conn}
}

var (
	_ interfaces.PaymentGateway   = (*Publisher)(nil)
	_ interfaces.LoyaltyPublisher = (*Publisher)(nil)
)

func (p *Publisher) RequestPaymentSession(ctx context.Context, req interfaces.PaymentSessionRequest) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(paymentsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.Publish(ctx, paymentsExchange, sessionRoutingKey(string(req.OrderType)), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    req.IdempotencyKey,
		Timestamp:    req.RequestedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish payment session: %w", err)
	}

	return nil
}

func (p *Publisher) PublishLoyaltyUpdate(ctx context.Context, msg interfaces.LoyaltyUpdateMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(loyaltyExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.Publish(ctx, loyaltyExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   msg.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish loyalty update: %w", err)
	}

	return nil
}
