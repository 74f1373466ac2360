// setup.go
package rabbit

import (
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"exchange-order-service/internal/service"
)

func SetupConsumers(ch *amqp091.Channel, svc *service.ExchangeService) {
	consumer := NewOrderEventsConsumer(svc)

	consume(ch, "exchange_service_orders", "order_placed", consumer.HandlePlaced)
	consume(ch, "exchange_service_deliveries", "order_delivered", consumer.HandleDelivered)
}

// consume binds a durable queue to a fanout exchange and pumps deliveries
// into the handler. Redeliveries are fine: every handler goes through the
// store, which makes duplicates no-ops.
func consume(ch *amqp091.Channel, queue, exchange string, handle func([]byte) error) {
	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("queue declare failed")
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignores routing key
		exchange,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Msg("queue bind failed")
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("consume failed")
		return
	}

	go func() {
		for m := range msgs {
			if err := handle(m.Body); err != nil {
				log.Warn().Err(err).Str("exchange", exchange).Msg("message handling failed")
			}
		}
	}()

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("subscribed")
}
