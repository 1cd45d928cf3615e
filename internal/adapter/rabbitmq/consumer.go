package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
	delay    time.Duration
}

func NewConsumer(conn Connection, prefetch int, log logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: log, delay: reconnectDelay}
}

// ConsumePaymentOutcomes blocks until ctx is done, resubscribing after channel loss
func (c *consumer) ConsumePaymentOutcomes(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.retry(ctx, "payment_outcomes", func() error {
		return c.consumeOutcomes(ctx, handler)
	})
}

func (c *consumer) ConsumeLoyaltyUpdates(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.retry(ctx, "loyalty_updates", func() error {
		return c.consumeLoyalty(ctx, handler)
	})
}

func (c *consumer) retry(ctx context.Context, stream string, consume func() error) error {
	for {
		err := consume()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("rabbitmq_disconnected", "Consumer disconnected, reconnecting", "", map[string]interface{}{
			"stream": stream,
			"delay":  c.delay.String(),
		}, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
}

func (c *consumer) consumeOutcomes(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := setupOutcomesInfrastructure(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(outcomesQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return c.drain(ctx, closeChan, msgs, func(msg amqp.Delivery) {
		c.settle(msg, handler(ctx, msg.Body))
	})
}

func (c *consumer) consumeLoyalty(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(loyaltyExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", loyaltyExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return c.drain(ctx, closeChan, msgs, func(msg amqp.Delivery) {
		// notifications are auto-acked, a failed one is only logged
		if err := handler(ctx, msg.Body); err != nil {
			c.logger.Debug("loyalty_update_dropped", "Loyalty update handler failed", "", map[string]interface{}{"error": err.Error()})
		}
	})
}

func (c *consumer) drain(ctx context.Context, closeChan <-chan *amqp.Error, msgs <-chan amqp.Delivery, handle func(amqp.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			handle(msg)
		}
	}
}

// settle acks on success. A transient failure is requeued once, anything
// else is dead-lettered.
func (c *consumer) settle(msg amqp.Delivery, err error) {
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, interfaces.ErrTransient) && !msg.Redelivered:
		msg.Nack(false, true)
	default:
		c.logger.Error("message_dead_lettered", "Payment outcome sent to DLQ", msg.MessageId, map[string]interface{}{
			"redelivered": msg.Redelivered,
		}, err)
		msg.Nack(false, false)
	}
}
