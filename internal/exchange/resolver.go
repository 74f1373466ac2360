package exchange

import (
	"exchange-order-service/internal/model"
)

// Resolve translates a persisted order document, with its three generations
// of exchange data, into one canonical model. It is the single seam where
// the legacy storage shape is interpreted; everything else consumes only
// the result.
//
// Candidate sources, in priority order:
//  1. the structured exchange_request sub-document (when it has a status)
//  2. the serialized exchange_data duplicate (parse failure = absent)
//  3. a minimal model synthesized from the flat legacy fields, with the
//     status derived from the order's exchange-prefixed top-level status
//
// Field-level gaps in the chosen base are then backfilled from the flat
// legacy fields, and the pickup address from the customer's default saved
// address — but only while the request has not reached picked-up, after
// which the snapshot is frozen.
//
// Returns (nil, false) when no source yields at least a status. The
// function is pure: same inputs, same output, and the order is not
// modified.
func Resolve(o *model.Order, defaultAddr model.Address) (*model.ExchangeRequest, bool) {
	if o == nil {
		return nil, false
	}

	base := pickBase(o)
	if base == nil {
		return nil, false
	}

	backfill(base, o, defaultAddr)
	return base, true
}

func pickBase(o *model.Order) *model.ExchangeRequest {
	if o.Exchange != nil && o.Exchange.Status.Valid() {
		return o.Exchange.Clone()
	}

	if legacy, err := model.DecodeLegacy(o.ExchangeData); err == nil {
		return legacy
	}

	// Last generation: flat fields plus the order's own status. Worth
	// synthesizing only when a status is derivable or a reason exists.
	status := exchangeStatusFor(o.Status)
	if status == model.ExchangeNone && o.LegacyReason == "" {
		return nil
	}
	if status == model.ExchangeNone {
		// A reason with no derivable state: the request must still be
		// awaiting a decision, or the order status would say otherwise.
		status = model.ExchangePending
	}
	return &model.ExchangeRequest{
		Status:    status,
		Reason:    o.LegacyReason,
		Photos:    clonePhotos(o.LegacyPhotos),
		ProductID: o.LegacyProductID,
		Size:      o.LegacySize,
	}
}

func backfill(base *model.ExchangeRequest, o *model.Order, defaultAddr model.Address) {
	if base.Reason == "" {
		base.Reason = o.LegacyReason
	}
	if len(base.Photos) == 0 {
		base.Photos = clonePhotos(o.LegacyPhotos)
	}

	// Product and size travel as a pair: whichever single source provides
	// more of the two wins, never one field from each. Ties keep the base.
	if countPair(o.LegacyProductID, o.LegacySize) > countPair(base.ProductID, base.Size) {
		base.ProductID = o.LegacyProductID
		base.Size = o.LegacySize
	}

	// The address snapshot is frozen from picked-up onward.
	if base.PickupAddress.IsZero() && !base.Status.Frozen() {
		base.PickupAddress = defaultAddr
	}
}

func countPair(productID, size string) int {
	n := 0
	if productID != "" {
		n++
	}
	if size != "" {
		n++
	}
	return n
}

func clonePhotos(photos []string) []string {
	if len(photos) == 0 {
		return nil
	}
	out := make([]string, len(photos))
	copy(out, photos)
	return out
}
