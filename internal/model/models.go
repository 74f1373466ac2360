// models.go
package model

import "time"

type OrderStatus string

// Closed set of order statuses. The exchange-prefixed values are derived
// from the exchange sub-record by the projector and never set by hand.
const (
	OrderPending           OrderStatus = "pending"
	OrderPreparing         OrderStatus = "preparing"
	OrderShipped           OrderStatus = "shipped"
	OrderDelivered         OrderStatus = "delivered"
	OrderCancelled         OrderStatus = "cancelled"
	OrderExchangePending   OrderStatus = "exchange-pending"
	OrderExchangeApproved  OrderStatus = "exchange-approved"
	OrderExchangeRejected  OrderStatus = "exchange-rejected"
	OrderExchangePickedUp  OrderStatus = "exchange-picked-up"
	OrderExchangeInTransit OrderStatus = "exchange-in-transit"
	OrderExchanged         OrderStatus = "exchanged"
)

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order is the persisted order document. Besides the structured
// exchange_request sub-document it still carries two older generations of
// the same fact: exchange_data (a serialized duplicate) and the flat
// exchange_* mirror fields kept for legacy readers. Only the resolver in
// internal/exchange is allowed to interpret those.
type Order struct {
	OrderID       string        `bson:"order_id" json:"orderId"`
	UserID        string        `bson:"user_id" json:"userId"`
	Status        OrderStatus   `bson:"status" json:"status"`
	Total         float64       `bson:"total" json:"total"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	Items         []OrderItem   `bson:"items" json:"items"`
	AddressID     string        `bson:"address_id" json:"addressId"`
	Archived      bool          `bson:"archived" json:"archived"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
	DeliveredAt   time.Time     `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`

	// Current generation: structured sub-document.
	Exchange *ExchangeRequest `bson:"exchange_request,omitempty" json:"exchangeRequest,omitempty"`

	// Older generations, kept for backward compatibility. Never authoritative.
	ExchangeData    string   `bson:"exchange_data,omitempty" json:"exchangeData,omitempty"`
	LegacyReason    string   `bson:"exchange_reason,omitempty" json:"exchangeReason,omitempty"`
	LegacyPhotos    []string `bson:"exchange_photos,omitempty" json:"exchangePhotos,omitempty"`
	LegacyProductID string   `bson:"exchange_product_id,omitempty" json:"exchangeProductId,omitempty"`
	LegacySize      string   `bson:"exchange_size,omitempty" json:"exchangeSize,omitempty"`
	LegacySKU       string   `bson:"exchange_sku,omitempty" json:"exchangeSku,omitempty"`
}

type OrderItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Size      string  `bson:"size" json:"size"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unitPrice"`
}

type Address struct {
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Province     string `bson:"province" json:"province"`
	Country      string `bson:"country" json:"country"`
	Comments     string `bson:"comments" json:"comments"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// ExchangePolicy is per-product reference data from the catalog service.
// It only gates creation of a new exchange request.
type ExchangePolicy struct {
	ExchangeType string `json:"exchangeType"`
	WindowDays   int    `json:"windowDays"`
}

const (
	ExchangeTypeNone     = "no-exchange"
	ExchangeTypeStandard = "standard"
)
