package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"exchange-order-service/internal/exchange"
	"exchange-order-service/internal/model"
)

// Interfaces the service depends on; implemented by repository, rabbit and
// the external-service clients.
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	ApplyExchange(ctx context.Context, orderID string, expected model.ExchangeStatus, status model.OrderStatus, ex *model.ExchangeRequest) error
	UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus) error
	MarkDelivered(ctx context.Context, orderID string, at time.Time) error
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
	FindWithExchange(ctx context.Context) ([]*model.Order, error)
}

// EventBus fans out order mutations to live sessions. Best-effort: a
// publish failure is logged and masked, subscribers self-heal by
// re-fetching on reconnect. The store write that precedes any publish is
// the system of record.
type EventBus interface {
	PublishExchangeSubmitted(ctx context.Context, o *model.Order) error
	PublishOrderUpdated(ctx context.Context, o *model.Order) error
}

// Catalog exposes the per-product exchange eligibility policy.
type Catalog interface {
	ExchangePolicy(ctx context.Context, productID string) (model.ExchangePolicy, error)
}

// AddressBook exposes the customer's default saved address, used to
// backfill pickup addresses on legacy records and as the snapshot source
// when a request does not carry its own.
type AddressBook interface {
	DefaultAddress(ctx context.Context, userID string) (model.Address, error)
}

// Business errors exported for the controller.
var (
	ErrForbidden               = errors.New("forbidden")
	ErrOrderAlreadyExists      = errors.New("order already initialized")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// fulfillmentTransitions covers the pre-exchange half of the order
// lifecycle. Everything from delivered onward belongs to the exchange
// machine and the projector, never to this table.
var fulfillmentTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:   {model.OrderPreparing, model.OrderCancelled},
	model.OrderPreparing: {model.OrderShipped, model.OrderCancelled},
	model.OrderShipped:   {model.OrderDelivered},
}

type ExchangeService struct {
	repo      OrderRepository
	bus       EventBus
	catalog   Catalog
	addresses AddressBook
}

func NewExchangeService(repo OrderRepository, bus EventBus, catalog Catalog, addresses AddressBook) *ExchangeService {
	return &ExchangeService{
		repo:      repo,
		bus:       bus,
		catalog:   catalog,
		addresses: addresses,
	}
}

// InitOrder creates the order record when checkout publishes order_placed.
// Invoked from the Rabbit consumer (primary) or via API for testing.
func (s *ExchangeService) InitOrder(ctx context.Context, orderID, userID, addressID string, items []model.OrderItem) (*model.Order, error) {
	existing, err := s.repo.FindByOrderID(ctx, orderID)
	if err == nil && existing != nil {
		return nil, ErrOrderAlreadyExists
	}

	total := 0.0
	for _, it := range items {
		total += float64(it.Quantity) * it.UnitPrice
	}

	now := time.Now().UTC()
	o := &model.Order{
		OrderID:       orderID,
		UserID:        userID,
		Status:        model.OrderPending,
		Total:         total,
		PaymentStatus: model.PaymentPending,
		Items:         items,
		AddressID:     addressID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	log.Info().Str("order_id", orderID).Str("user_id", userID).Msg("order initialized")
	return o, nil
}

// UpdateFulfillment applies one admin-driven fulfillment transition
// (preparing, shipped, cancelled, delivered). Delivery routes through
// MarkDelivered so the window timestamp is recorded.
func (s *ExchangeService) UpdateFulfillment(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	o, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(fulfillmentTransitions[o.Status], to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, to)
	}

	if to == model.OrderDelivered {
		return s.MarkDelivered(ctx, orderID, time.Now().UTC())
	}

	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, to); err != nil {
		return nil, err
	}

	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.publishUpdated(ctx, o)

	log.Info().Str("order_id", orderID).Str("status", to.String()).Msg("fulfillment status updated")
	return o, nil
}

// MarkDelivered records the fulfillment event the exchange window counts
// from.
func (s *ExchangeService) MarkDelivered(ctx context.Context, orderID string, at time.Time) (*model.Order, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := s.repo.MarkDelivered(ctx, orderID, at); err != nil {
		return nil, err
	}

	o, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, o)
	return o, nil
}

// SubmitRequest runs the none -> pending transition for the originating
// customer: eligibility gate, validation, address snapshot, guarded write,
// broadcast.
func (s *ExchangeService) SubmitRequest(ctx context.Context, orderID, userID string, in exchange.SubmitInput) (*model.Order, error) {
	o, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}

	addr := s.defaultAddress(ctx, o.UserID)
	cur, _ := exchange.Resolve(o, addr)

	policy, err := s.catalog.ExchangePolicy(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("exchange policy lookup: %w", err)
	}

	if in.PickupAddress.IsZero() {
		in.PickupAddress = addr
	}

	next, err := exchange.Submit(o, cur, in, policy, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	status := exchange.ProjectStatus(o.Status, next)
	if err := s.repo.ApplyExchange(ctx, orderID, model.ExchangeNone, status, next); err != nil {
		return nil, err
	}

	mirror(o, status, next)
	if err := s.bus.PublishExchangeSubmitted(ctx, o); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("exchange_request_submitted publish failed")
	}
	s.publishUpdated(ctx, o)

	log.Info().Str("order_id", orderID).Str("status", status.String()).Msg("exchange request submitted")
	return o, nil
}

// Approve applies the admin approval decision.
func (s *ExchangeService) Approve(ctx context.Context, orderID, notes string) (*model.Order, error) {
	return s.transition(ctx, orderID, func(cur *model.ExchangeRequest) (*model.ExchangeRequest, error) {
		return exchange.Approve(cur, notes)
	})
}

// Reject applies the admin rejection decision. Terminal.
func (s *ExchangeService) Reject(ctx context.Context, orderID, notes string) (*model.Order, error) {
	return s.transition(ctx, orderID, func(cur *model.ExchangeRequest) (*model.ExchangeRequest, error) {
		return exchange.Reject(cur, notes)
	})
}

// BookPickup records the logistics booking, assigning a tracking id.
func (s *ExchangeService) BookPickup(ctx context.Context, orderID, trackingID string) (*model.Order, error) {
	return s.transition(ctx, orderID, func(cur *model.ExchangeRequest) (*model.ExchangeRequest, error) {
		return exchange.BookPickup(cur, trackingID)
	})
}

// MarkInTransit records the optional logistics update.
func (s *ExchangeService) MarkInTransit(ctx context.Context, orderID string) (*model.Order, error) {
	return s.transition(ctx, orderID, exchange.MarkInTransit)
}

// Complete finishes the swap. Terminal.
func (s *ExchangeService) Complete(ctx context.Context, orderID string) (*model.Order, error) {
	return s.transition(ctx, orderID, exchange.Complete)
}

// transition is the shared read -> resolve -> apply -> guarded write ->
// broadcast path for everything after submission. The write is guarded on
// the exchange status that was read; a racing admin losing the guard gets
// repository.ErrConflict and no partial state.
func (s *ExchangeService) transition(ctx context.Context, orderID string, apply func(*model.ExchangeRequest) (*model.ExchangeRequest, error)) (*model.Order, error) {
	o, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// cur is nil when no generation yields a request; apply rejects that
	// as an invalid transition before anything is written.
	cur, _ := exchange.Resolve(o, s.defaultAddress(ctx, o.UserID))

	next, err := apply(cur)
	if err != nil {
		return nil, err
	}

	status := exchange.ProjectStatus(o.Status, next)
	if err := s.repo.ApplyExchange(ctx, orderID, cur.Status, status, next); err != nil {
		return nil, err
	}

	mirror(o, status, next)
	s.publishUpdated(ctx, o)

	log.Info().Str("order_id", orderID).Str("status", status.String()).Msg("exchange transition applied")
	return o, nil
}

// Getters
func (s *ExchangeService) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *ExchangeService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *ExchangeService) GetByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *ExchangeService) GetByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// GetExchanges returns every order carrying exchange data, with the
// canonical model resolved onto each so the admin console never reads the
// legacy mirrors.
func (s *ExchangeService) GetExchanges(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.repo.FindWithExchange(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if ex, ok := exchange.Resolve(o, s.defaultAddress(ctx, o.UserID)); ok {
			project(o, exchange.ProjectStatus(o.Status, ex), ex)
		}
	}
	return orders, nil
}

func (s *ExchangeService) defaultAddress(ctx context.Context, userID string) model.Address {
	addr, err := s.addresses.DefaultAddress(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("default address lookup failed")
		return model.Address{}
	}
	return addr
}

func (s *ExchangeService) publishUpdated(ctx context.Context, o *model.Order) {
	if err := s.bus.PublishOrderUpdated(ctx, o); err != nil {
		log.Warn().Err(err).Str("order_id", o.OrderID).Msg("order_updated publish failed; subscribers re-fetch on reconnect")
	}
}

// mirror applies a persisted transition onto the in-memory order so the
// broadcast payload matches the store byte for byte: status, sub-document,
// serialized duplicate and flat legacy mirrors all move together.
func mirror(o *model.Order, status model.OrderStatus, ex *model.ExchangeRequest) {
	project(o, status, ex)
	o.UpdatedAt = time.Now().UTC()
}

// project overlays the resolved canonical view onto an order for readers.
// It never touches UpdatedAt: projecting is not a mutation.
func project(o *model.Order, status model.OrderStatus, ex *model.ExchangeRequest) {
	o.Status = status
	o.Exchange = ex
	o.ExchangeData = ex.EncodeLegacy()
	o.LegacyReason = ex.Reason
	o.LegacyPhotos = ex.Photos
	o.LegacyProductID = ex.ProductID
	o.LegacySize = ex.Size
	o.LegacySKU = fmt.Sprintf("%s-%s", ex.ProductID, ex.Size)
}
