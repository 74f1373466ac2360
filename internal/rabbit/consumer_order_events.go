package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"exchange-order-service/internal/model"
	"exchange-order-service/internal/service"
)

// OrderEventsConsumer handles the checkout and fulfillment events that
// feed the order store: order_placed initializes the record,
// order_delivered starts the exchange window.
type OrderEventsConsumer struct {
	Service *service.ExchangeService
}

func NewOrderEventsConsumer(s *service.ExchangeService) *OrderEventsConsumer {
	return &OrderEventsConsumer{Service: s}
}

type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID   string `json:"orderId"`
		UserID    string `json:"userId"`
		AddressID string `json:"addressId"`
		Articles  []struct {
			ProductID string  `json:"productId"`
			Size      string  `json:"size"`
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unitPrice"`
		} `json:"articles"`
	} `json:"message"`
}

func (c *OrderEventsConsumer) HandlePlaced(msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Error().Err(err).Msg("order_placed: bad payload")
		return err
	}

	items := make([]model.OrderItem, 0, len(event.Message.Articles))
	for _, a := range event.Message.Articles {
		items = append(items, model.OrderItem{
			ProductID: a.ProductID,
			Size:      a.Size,
			Quantity:  a.Quantity,
			UnitPrice: a.UnitPrice,
		})
	}

	_, err := c.Service.InitOrder(
		context.Background(),
		event.Message.OrderID,
		event.Message.UserID,
		event.Message.AddressID,
		items,
	)
	if err != nil {
		log.Error().Err(err).Str("order_id", event.Message.OrderID).Msg("order_placed: init failed")
		return err
	}

	log.Info().Str("order_id", event.Message.OrderID).Msg("order_placed processed")
	return nil
}

type DeliveredOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID     string    `json:"orderId"`
		DeliveredAt time.Time `json:"deliveredAt"`
	} `json:"message"`
}

func (c *OrderEventsConsumer) HandleDelivered(msg []byte) error {
	var event DeliveredOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Error().Err(err).Msg("order_delivered: bad payload")
		return err
	}

	_, err := c.Service.MarkDelivered(context.Background(), event.Message.OrderID, event.Message.DeliveredAt)
	if err != nil {
		log.Error().Err(err).Str("order_id", event.Message.OrderID).Msg("order_delivered: update failed")
		return err
	}

	log.Info().Str("order_id", event.Message.OrderID).Msg("order_delivered processed")
	return nil
}
