package exchange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-order-service/internal/exchange"
	"exchange-order-service/internal/model"
)

var defaultAddr = model.Address{
	AddressLine1: "Av San Martín 1234",
	City:         "Mendoza",
	PostalCode:   "5500",
	Country:      "Argentina",
}

func TestResolvePriorityOrder(t *testing.T) {
	structured := &model.ExchangeRequest{
		Status:        model.ExchangeApproved,
		Reason:        "Size too small",
		Photos:        []string{"p1"},
		ProductID:     "prod-structured",
		Size:          "M",
		PickupAddress: model.Address{AddressLine1: "Snapshot St 1"},
	}
	serialized := (&model.ExchangeRequest{
		Status:        model.ExchangePending,
		Reason:        "From serialized",
		Photos:        []string{"p2"},
		ProductID:     "prod-serialized",
		Size:          "L",
		PickupAddress: model.Address{AddressLine1: "Serialized St 2"},
	}).EncodeLegacy()

	o := &model.Order{
		OrderID:         "ord-1",
		Status:          model.OrderExchangeApproved,
		Exchange:        structured,
		ExchangeData:    serialized,
		LegacyReason:    "From flat",
		LegacyProductID: "prod-flat",
		LegacySize:      "S",
	}

	got, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	assert.Equal(t, "prod-structured", got.ProductID)
	assert.Equal(t, "Size too small", got.Reason)

	t.Run("serialized_when_no_structured", func(t *testing.T) {
		o := &model.Order{
			OrderID:         "ord-1",
			Status:          model.OrderExchangePending,
			ExchangeData:    serialized,
			LegacyReason:    "From flat",
			LegacyProductID: "prod-flat",
			LegacySize:      "S",
		}
		got, ok := exchange.Resolve(o, defaultAddr)
		require.True(t, ok)
		assert.Equal(t, "prod-serialized", got.ProductID)
		assert.Equal(t, "From serialized", got.Reason)
	})

	t.Run("flat_when_serialized_corrupt", func(t *testing.T) {
		o := &model.Order{
			OrderID:         "ord-1",
			Status:          model.OrderExchangePending,
			ExchangeData:    "{not json",
			LegacyReason:    "From flat",
			LegacyPhotos:    []string{"p3"},
			LegacyProductID: "prod-flat",
			LegacySize:      "S",
		}
		got, ok := exchange.Resolve(o, defaultAddr)
		require.True(t, ok)
		assert.Equal(t, model.ExchangePending, got.Status)
		assert.Equal(t, "From flat", got.Reason)
		assert.Equal(t, "prod-flat", got.ProductID)
		assert.Equal(t, []string{"p3"}, got.Photos)
	})
}

// A structured sub-object missing fields gets them backfilled from the
// flat generation.
func TestResolveBackfill(t *testing.T) {
	o := &model.Order{
		OrderID: "ord-1",
		Status:  model.OrderExchangeApproved,
		Exchange: &model.ExchangeRequest{
			Status:        model.ExchangeApproved,
			ProductID:     "prod-9",
			Size:          "M",
			PickupAddress: model.Address{AddressLine1: "Snapshot St 1"},
		},
		LegacyReason: "Color mismatch",
		LegacyPhotos: []string{"p1", "p2"},
	}

	got, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	assert.Equal(t, model.ExchangeApproved, got.Status)
	assert.Equal(t, "Color mismatch", got.Reason)
	assert.Equal(t, []string{"p1", "p2"}, got.Photos)
	// snapshot was present, default address must not override it
	assert.Equal(t, "Snapshot St 1", got.PickupAddress.AddressLine1)
}

// Target product and size always come from a single source.
func TestResolveTargetPairAtomicity(t *testing.T) {
	tests := []struct {
		name                  string
		baseProduct, baseSize string
		flatProduct, flatSize string
		wantProduct, wantSize string
	}{
		{
			name:        "flat_pair_beats_half_base",
			baseProduct: "prod-base",
			flatProduct: "prod-flat", flatSize: "S",
			wantProduct: "prod-flat", wantSize: "S",
		},
		{
			name:        "full_base_wins",
			baseProduct: "prod-base", baseSize: "M",
			flatProduct: "prod-flat", flatSize: "S",
			wantProduct: "prod-base", wantSize: "M",
		},
		{
			name:        "tie_keeps_base",
			baseProduct: "prod-base",
			flatSize:    "S",
			wantProduct: "prod-base", wantSize: "",
		},
		{
			name:        "empty_base_takes_flat",
			flatProduct: "prod-flat", flatSize: "S",
			wantProduct: "prod-flat", wantSize: "S",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &model.Order{
				OrderID: "ord-1",
				Status:  model.OrderExchangePending,
				Exchange: &model.ExchangeRequest{
					Status:    model.ExchangePending,
					Reason:    "Size too small",
					ProductID: tt.baseProduct,
					Size:      tt.baseSize,
				},
				LegacyProductID: tt.flatProduct,
				LegacySize:      tt.flatSize,
			}
			got, ok := exchange.Resolve(o, defaultAddr)
			require.True(t, ok)
			assert.Equal(t, tt.wantProduct, got.ProductID)
			assert.Equal(t, tt.wantSize, got.Size)
		})
	}
}

func TestResolveAddressFreeze(t *testing.T) {
	base := func(status model.ExchangeStatus) *model.Order {
		return &model.Order{
			OrderID:  "ord-1",
			Exchange: &model.ExchangeRequest{Status: status, Reason: "r", Photos: []string{"p"}},
		}
	}

	t.Run("backfilled_before_pickup", func(t *testing.T) {
		got, ok := exchange.Resolve(base(model.ExchangePending), defaultAddr)
		require.True(t, ok)
		assert.Equal(t, defaultAddr, got.PickupAddress)
	})

	t.Run("frozen_from_pickup_on", func(t *testing.T) {
		for _, status := range []model.ExchangeStatus{model.ExchangePickedUp, model.ExchangeInTransit, model.ExchangeCompleted} {
			got, ok := exchange.Resolve(base(status), defaultAddr)
			require.True(t, ok)
			assert.True(t, got.PickupAddress.IsZero(), "address backfilled in %s", status)
		}
	})
}

func TestResolveIdempotent(t *testing.T) {
	o := &model.Order{
		OrderID:         "ord-1",
		Status:          model.OrderExchangePending,
		ExchangeData:    "{broken",
		LegacyReason:    "Color mismatch",
		LegacyPhotos:    []string{"p1"},
		LegacyProductID: "prod-9",
		LegacySize:      "M",
	}

	first, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	second, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	assert.True(t, first.Equal(second))
}

// Serializing the canonical model and resolving it back from the
// text-duplicate generation yields the original.
func TestResolveRoundTrip(t *testing.T) {
	original := &model.ExchangeRequest{
		Status:        model.ExchangePickedUp,
		Reason:        "Size too small",
		ReasonTags:    []string{"fit"},
		Photos:        []string{"p1", "p2"},
		ProductID:     "prod-9",
		Size:          "M",
		RequestedAt:   time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		AdminNotes:    "ok",
		TrackingID:    "PU-123456",
		PickupAddress: model.Address{AddressLine1: "Calle Uno 100", City: "Mendoza"},
	}

	o := &model.Order{
		OrderID:      "ord-1",
		Status:       model.OrderExchangePickedUp,
		ExchangeData: original.EncodeLegacy(),
	}

	got, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	assert.True(t, original.Equal(got))
}

func TestResolveNoSources(t *testing.T) {
	o := &model.Order{OrderID: "ord-1", Status: model.OrderDelivered}
	got, ok := exchange.Resolve(o, defaultAddr)
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = exchange.Resolve(nil, defaultAddr)
	assert.False(t, ok)
	assert.Nil(t, got)
}

// Scenario from production data: structured sub-object with a status but
// an empty reason, flat mirror still holding the reason.
func TestResolveStructuredWithFlatReason(t *testing.T) {
	o := &model.Order{
		OrderID: "ord-1",
		Status:  model.OrderExchangeApproved,
		Exchange: &model.ExchangeRequest{
			Status:    model.ExchangeApproved,
			Photos:    []string{"p1"},
			ProductID: "prod-9",
			Size:      "M",
		},
		LegacyReason: "Color mismatch",
	}

	got, ok := exchange.Resolve(o, defaultAddr)
	require.True(t, ok)
	assert.Equal(t, model.ExchangeApproved, got.Status)
	assert.Equal(t, "Color mismatch", got.Reason)
}
