package rabbit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"exchange-order-service/internal/model"
)

const updatesExchange = "order_updates"

// Publisher fans order mutations out on a fanout exchange. Delivery is
// at-least-once and best-effort; subscribers re-resolve the payload and
// re-fetch from the store on reconnect, so this channel never needs to be
// reliable.
type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		updatesExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

// Envelope is the message wrapper shared with the other services on the
// broker.
type Envelope struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       any    `json:"message"`
}

func (p *Publisher) PublishExchangeSubmitted(ctx context.Context, o *model.Order) error {
	return p.publish(ctx, "exchange_request_submitted", map[string]any{
		"orderId":         o.OrderID,
		"exchangeRequest": o.Exchange,
	})
}

func (p *Publisher) PublishOrderUpdated(ctx context.Context, o *model.Order) error {
	return p.publish(ctx, "order_updated", o)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(Envelope{
		CorrelationID: uuid.NewString(),
		Exchange:      updatesExchange,
		RoutingKey:    routingKey,
		Message:       message,
	})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		updatesExchange,
		routingKey, // fanout ignores it, kept for logging consumers
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
