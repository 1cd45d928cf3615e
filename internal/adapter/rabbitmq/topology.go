package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	paymentsExchange = "payments_topic"
	paymentsDLX      = "payments_dlq"
	outcomesQueue    = "checkout_payment_outcomes"
	outcomesDLQ      = "checkout_payment_outcomes_dlq"
	outcomesBinding  = "payment.outcome.#"
	loyaltyExchange  = "loyalty_fanout"
)

func sessionRoutingKey(orderType string) string {
	return "payment.session." + orderType
}

// setupOutcomesInfrastructure declares the outcome queue and its dead letter route
func setupOutcomesInfrastructure(ch Channel) error {
	if err := ch.ExchangeDeclare(paymentsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare payments exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(paymentsDLX, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(outcomesDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(outcomesDLQ, "#", paymentsDLX, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{"x-dead-letter-exchange": paymentsDLX}
	q, err := ch.QueueDeclare(outcomesQueue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare outcomes queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, outcomesBinding, paymentsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind outcomes queue: %w", err)
	}
	return nil
}
