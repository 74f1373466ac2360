package exchange

import "exchange-order-service/internal/model"

// ProjectStatus derives the order's single user-visible status from its own
// fulfillment status plus the exchange sub-state. The two fields are never
// set independently; every write goes through this projection.
//
// An exchange, once created, is permanent history: there is no path back to
// the plain fulfillment statuses.
func ProjectStatus(own model.OrderStatus, ex *model.ExchangeRequest) model.OrderStatus {
	if ex == nil {
		return own
	}
	switch ex.Status {
	case model.ExchangePending:
		return model.OrderExchangePending
	case model.ExchangeApproved:
		return model.OrderExchangeApproved
	case model.ExchangeRejected:
		return model.OrderExchangeRejected
	case model.ExchangePickedUp:
		return model.OrderExchangePickedUp
	case model.ExchangeInTransit:
		return model.OrderExchangeInTransit
	case model.ExchangeCompleted:
		return model.OrderExchanged
	}
	return own
}

// exchangeStatusFor is the inverse mapping used by the resolver to derive
// an exchange state from an exchange-prefixed order status.
func exchangeStatusFor(s model.OrderStatus) model.ExchangeStatus {
	switch s {
	case model.OrderExchangePending:
		return model.ExchangePending
	case model.OrderExchangeApproved:
		return model.ExchangeApproved
	case model.OrderExchangeRejected:
		return model.ExchangeRejected
	case model.OrderExchangePickedUp:
		return model.ExchangePickedUp
	case model.OrderExchangeInTransit:
		return model.ExchangeInTransit
	case model.OrderExchanged:
		return model.ExchangeCompleted
	}
	return model.ExchangeNone
}
