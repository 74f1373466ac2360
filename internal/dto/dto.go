// dto.go
package dto

import "exchange-order-service/internal/model"

// InitOrderRequest initializes an order via the API (testing path; the
// Rabbit consumer is primary).
type InitOrderRequest struct {
	OrderID   string         `json:"orderId" binding:"required"`
	UserID    string         `json:"userId" binding:"required"`
	AddressID string         `json:"addressId"`
	Articles  []OrderItemDTO `json:"articles"`
}

type OrderItemDTO struct {
	ProductID string  `json:"productId" binding:"required"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unitPrice"`
}

// SubmitExchangeRequest is the customer's request to swap a delivered
// item. Photos are upload references, not payloads.
type SubmitExchangeRequest struct {
	Reason        string        `json:"reason" binding:"required"`
	ReasonTags    []string      `json:"reasonTags"`
	Photos        []string      `json:"photos" binding:"required,min=1,max=4"`
	ProductID     string        `json:"productId" binding:"required"`
	Size          string        `json:"size" binding:"required"`
	PickupAddress model.Address `json:"pickupAddress"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type DecisionRequest struct {
	Notes string `json:"notes"`
}

type BookPickupRequest struct {
	TrackingID string `json:"trackingId"`
}
