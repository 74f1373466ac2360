package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exchange-order-service/internal/exchange"
	"exchange-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict means the guarded status no longer matched at write time:
	// a concurrent writer got there first and its value stands.
	ErrConflict = errors.New("order state changed concurrently")
)

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	filter := bson.M{"order_id": o.OrderID}
	update := bson.M{"$set": o}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// ApplyExchange persists one exchange transition as a single atomic update.
// The order status, the structured sub-document, the serialized duplicate
// and the flat legacy mirrors are all written together so no reader ever
// sees them disagree.
//
// The filter doubles as a compare-and-swap: a submit (expected none) only
// matches a still-delivered order, any later transition only matches the
// exchange status the caller read. Zero matches means a concurrent writer
// won the race.
func (m *MongoOrderRepository) ApplyExchange(ctx context.Context, orderID string, expected model.ExchangeStatus, status model.OrderStatus, ex *model.ExchangeRequest) error {
	filter := bson.M{"order_id": orderID}
	if expected == model.ExchangeNone {
		filter["status"] = model.OrderDelivered
	} else {
		// Legacy records may carry the expected state only as an
		// exchange-prefixed order status, with no sub-document yet.
		mirror := exchange.ProjectStatus("", &model.ExchangeRequest{Status: expected})
		filter["$or"] = []bson.M{
			{"exchange_request.status": expected},
			{"exchange_request": nil, "status": mirror},
		}
	}

	update := bson.M{"$set": bson.M{
		"status":           status,
		"updated_at":       time.Now().UTC(),
		"exchange_request": ex,
		"exchange_data":    ex.EncodeLegacy(),
		// Flat mirrors for pre-sub-document readers. The sku mirror was
		// always derived, so it is derived here too.
		"exchange_reason":     ex.Reason,
		"exchange_photos":     ex.Photos,
		"exchange_product_id": ex.ProductID,
		"exchange_size":       ex.Size,
		"exchange_sku":        fmt.Sprintf("%s-%s", ex.ProductID, ex.Size),
	}}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByOrderID(ctx, orderID); errors.Is(ferr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// UpdateStatus applies one fulfillment transition, guarded on the status
// the caller read. The transition rules themselves live in the service;
// this only guarantees the read value still stood at write time.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	filter := bson.M{"order_id": orderID, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByOrderID(ctx, orderID); errors.Is(ferr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// MarkDelivered records the delivery the exchange window is counted from.
// The fulfillment system is authoritative for this event, so any
// pre-delivery status may advance; only orders already delivered or in an
// exchange state are left alone.
func (m *MongoOrderRepository) MarkDelivered(ctx context.Context, orderID string, at time.Time) error {
	filter := bson.M{"order_id": orderID, "status": bson.M{"$in": []model.OrderStatus{
		model.OrderPending, model.OrderPreparing, model.OrderShipped,
	}}}
	update := bson.M{"$set": bson.M{
		"status":       model.OrderDelivered,
		"delivered_at": at.UTC(),
		"updated_at":   time.Now().UTC(),
	}}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByOrderID(ctx, orderID); errors.Is(ferr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"status": status})
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"user_id": userID})
}

// FindWithExchange returns every order that carries exchange data in any
// of its three generations. Callers still resolve per order; this is only
// a coarse pre-filter for the admin console.
func (m *MongoOrderRepository) FindWithExchange(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"$or": []bson.M{
		{"exchange_request": bson.M{"$ne": nil}},
		{"exchange_data": bson.M{"$nin": []any{nil, ""}}},
		{"exchange_reason": bson.M{"$nin": []any{nil, ""}}},
	}})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
