package controller

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"exchange-order-service/internal/dto"
	"exchange-order-service/internal/exchange"
	"exchange-order-service/internal/model"
	"exchange-order-service/internal/repository"
	"exchange-order-service/internal/service"
)

type OrderController struct {
	Service *service.ExchangeService
}

func NewOrderController(s *service.ExchangeService) *OrderController {
	return &OrderController{Service: s}
}

// POST /orders/init — no token required (testing path)
func (ctl *OrderController) InitOrder(c *gin.Context) {
	var req dto.InitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]model.OrderItem, 0, len(req.Articles))
	for _, a := range req.Articles {
		items = append(items, model.OrderItem{
			ProductID: a.ProductID,
			Size:      a.Size,
			Quantity:  a.Quantity,
			UnitPrice: a.UnitPrice,
		})
	}

	res, err := ctl.Service.InitOrder(c.Request.Context(), req.OrderID, req.UserID, req.AddressID, items)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// POST /orders/:orderId/exchange — customer submits an exchange request
func (ctl *OrderController) SubmitExchange(c *gin.Context) {
	var req dto.SubmitExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.SubmitRequest(
		c.Request.Context(),
		c.Param("orderId"),
		c.GetString("userID"),
		exchange.SubmitInput{
			Reason:        req.Reason,
			ReasonTags:    req.ReasonTags,
			Photos:        req.Photos,
			ProductID:     req.ProductID,
			Size:          req.Size,
			PickupAddress: req.PickupAddress,
		},
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// POST /admin/exchanges/:orderId/approve
func (ctl *OrderController) ApproveExchange(c *gin.Context) {
	ctl.decision(c, ctl.Service.Approve)
}

// POST /admin/exchanges/:orderId/reject
func (ctl *OrderController) RejectExchange(c *gin.Context) {
	ctl.decision(c, ctl.Service.Reject)
}

func (ctl *OrderController) decision(c *gin.Context, apply func(ctx context.Context, orderID, notes string) (*model.Order, error)) {
	var req dto.DecisionRequest
	// notes are optional, so an empty body is fine
	_ = c.ShouldBindJSON(&req)

	res, err := apply(c.Request.Context(), c.Param("orderId"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /admin/exchanges/:orderId/pickup — logistics booking
func (ctl *OrderController) BookPickup(c *gin.Context) {
	var req dto.BookPickupRequest
	// body is optional; no tracking id means one gets generated
	_ = c.ShouldBindJSON(&req)

	res, err := ctl.Service.BookPickup(c.Request.Context(), c.Param("orderId"), req.TrackingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /admin/exchanges/:orderId/transit
func (ctl *OrderController) MarkInTransit(c *gin.Context) {
	res, err := ctl.Service.MarkInTransit(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /admin/exchanges/:orderId/complete
func (ctl *OrderController) CompleteExchange(c *gin.Context) {
	res, err := ctl.Service.Complete(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /admin/orders/:orderId/status — fulfillment transition
func (ctl *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.UpdateFulfillment(c.Request.Context(), c.Param("orderId"), model.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /orders/mine
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := ctl.Service.GetByUserID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId — owner or admin
func (ctl *OrderController) GetOrder(c *gin.Context) {
	o, err := ctl.Service.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}

	perms := c.GetStringSlice("userPermissions")
	if !slices.Contains(perms, "admin") && o.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// GET /admin/orders/all
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders/status/:status
func (ctl *OrderController) GetOrdersByStatus(c *gin.Context) {
	orders, err := ctl.Service.GetByStatus(c.Request.Context(), model.OrderStatus(c.Param("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/exchanges — resolved exchange views for the console
func (ctl *OrderController) GetExchanges(c *gin.Context) {
	orders, err := ctl.Service.GetExchanges(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// writeError maps business errors to status codes. Failed transitions
// surface their precise reason; only unknown errors collapse to 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrOrderAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case exchange.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case exchange.IsEligibility(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, exchange.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
