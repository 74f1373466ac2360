package exchange_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"exchange-order-service/internal/exchange"
	"exchange-order-service/internal/model"
)

func TestProjectStatus(t *testing.T) {
	tests := []struct {
		ex   model.ExchangeStatus
		want model.OrderStatus
	}{
		{model.ExchangePending, model.OrderExchangePending},
		{model.ExchangeApproved, model.OrderExchangeApproved},
		{model.ExchangeRejected, model.OrderExchangeRejected},
		{model.ExchangePickedUp, model.OrderExchangePickedUp},
		{model.ExchangeInTransit, model.OrderExchangeInTransit},
		{model.ExchangeCompleted, model.OrderExchanged},
	}

	for _, tt := range tests {
		got := exchange.ProjectStatus(model.OrderDelivered, &model.ExchangeRequest{Status: tt.ex})
		assert.Equal(t, tt.want, got, "exchange state %q", tt.ex)
	}
}

func TestProjectStatusWithoutExchange(t *testing.T) {
	for _, own := range []model.OrderStatus{model.OrderPending, model.OrderShipped, model.OrderDelivered} {
		assert.Equal(t, own, exchange.ProjectStatus(own, nil))
	}
}
