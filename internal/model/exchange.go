// exchange.go
package model

import (
	"encoding/json"
	"errors"
	"slices"
	"time"
)

type ExchangeStatus string

const (
	// ExchangeNone means the order has no exchange request.
	ExchangeNone      ExchangeStatus = ""
	ExchangePending   ExchangeStatus = "pending"
	ExchangeApproved  ExchangeStatus = "approved"
	ExchangeRejected  ExchangeStatus = "rejected"
	ExchangePickedUp  ExchangeStatus = "picked-up"
	ExchangeInTransit ExchangeStatus = "in-transit"
	ExchangeCompleted ExchangeStatus = "exchanged"
)

func (s ExchangeStatus) String() string {
	return string(s)
}

func (s ExchangeStatus) Valid() bool {
	switch s {
	case ExchangePending, ExchangeApproved, ExchangeRejected,
		ExchangePickedUp, ExchangeInTransit, ExchangeCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s ExchangeStatus) Terminal() bool {
	return s == ExchangeRejected || s == ExchangeCompleted
}

// Frozen reports whether the pickup address snapshot and the requested
// replacement may no longer change (picked-up or later).
func (s ExchangeStatus) Frozen() bool {
	return s == ExchangePickedUp || s == ExchangeInTransit || s == ExchangeCompleted
}

// ExchangeRequest is the canonical exchange model. Every component works
// with this normalized shape; the legacy mirrors on Order exist only as
// resolver input and store output.
type ExchangeRequest struct {
	Status        ExchangeStatus `bson:"status" json:"status"`
	Reason        string         `bson:"reason" json:"reason"`
	ReasonTags    []string       `bson:"reason_tags,omitempty" json:"reasonTags,omitempty"`
	Photos        []string       `bson:"photos" json:"photos"`
	ProductID     string         `bson:"product_id" json:"productId"`
	Size          string         `bson:"size" json:"size"`
	RequestedAt   time.Time      `bson:"requested_at" json:"requestedAt"`
	AdminNotes    string         `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	TrackingID    string         `bson:"tracking_id,omitempty" json:"trackingId,omitempty"`
	PickupAddress Address        `bson:"pickup_address" json:"pickupAddress"`
}

func (e *ExchangeRequest) Clone() *ExchangeRequest {
	if e == nil {
		return nil
	}
	c := *e
	c.ReasonTags = slices.Clone(e.ReasonTags)
	c.Photos = slices.Clone(e.Photos)
	return &c
}

func (e *ExchangeRequest) Equal(o *ExchangeRequest) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Status == o.Status &&
		e.Reason == o.Reason &&
		slices.Equal(e.ReasonTags, o.ReasonTags) &&
		slices.Equal(e.Photos, o.Photos) &&
		e.ProductID == o.ProductID &&
		e.Size == o.Size &&
		e.RequestedAt.Equal(o.RequestedAt) &&
		e.AdminNotes == o.AdminNotes &&
		e.TrackingID == o.TrackingID &&
		e.PickupAddress == o.PickupAddress
}

// EncodeLegacy renders the serialized-text duplicate written alongside the
// structured sub-document for older consumers.
func (e *ExchangeRequest) EncodeLegacy() string {
	b, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(b)
}

var errEmptyLegacyData = errors.New("empty legacy exchange data")

// DecodeLegacy parses a serialized-text duplicate back into the canonical
// model. A record without a status is treated as a parse failure.
func DecodeLegacy(data string) (*ExchangeRequest, error) {
	if data == "" {
		return nil, errEmptyLegacyData
	}
	var e ExchangeRequest
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, err
	}
	if !e.Status.Valid() {
		return nil, errors.New("legacy exchange data has no status")
	}
	return &e, nil
}
