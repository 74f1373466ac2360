package exchange

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"exchange-order-service/internal/model"
)

// Business errors surfaced to callers. The controller maps them to HTTP
// status codes; none of them leave partial state behind.
var (
	ErrInvalidTransition = errors.New("invalid exchange transition")

	// Validation: rejected before any state change.
	ErrReasonRequired = errors.New("exchange reason is required")
	ErrPhotoCount     = errors.New("between 1 and 4 verification photos are required")
	ErrTargetRequired = errors.New("target product and size are required")

	// Eligibility: rejected at creation only.
	ErrNotDelivered    = errors.New("order has not been delivered")
	ErrActiveExchange  = errors.New("order already has an exchange request")
	ErrWindowClosed    = errors.New("exchange window closed")
	ErrNotExchangeable = errors.New("product does not allow exchanges")
)

// IsValidation reports whether err is a request-shape problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrPhotoCount) ||
		errors.Is(err, ErrTargetRequired)
}

// IsEligibility reports whether err is a creation-gate denial.
func IsEligibility(err error) bool {
	return errors.Is(err, ErrNotDelivered) ||
		errors.Is(err, ErrActiveExchange) ||
		errors.Is(err, ErrWindowClosed) ||
		errors.Is(err, ErrNotExchangeable)
}

// transitions is the single authoritative table. Anything not listed here
// fails with ErrInvalidTransition; rejected and exchanged have no entries,
// which is what makes them terminal.
var transitions = map[model.ExchangeStatus][]model.ExchangeStatus{
	model.ExchangePending:   {model.ExchangeApproved, model.ExchangeRejected},
	model.ExchangeApproved:  {model.ExchangePickedUp},
	model.ExchangePickedUp:  {model.ExchangeInTransit, model.ExchangeCompleted},
	model.ExchangeInTransit: {model.ExchangeCompleted},
}

func canTransition(from, to model.ExchangeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// advance clones cur into the target state. The input is never mutated, so
// a failed transition leaves the caller's model untouched.
func advance(cur *model.ExchangeRequest, to model.ExchangeStatus) (*model.ExchangeRequest, error) {
	if cur == nil {
		return nil, fmt.Errorf("%w: no active exchange request", ErrInvalidTransition)
	}
	if !canTransition(cur.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, to)
	}
	next := cur.Clone()
	next.Status = to
	return next, nil
}

// SubmitInput carries the customer's request for a new exchange.
type SubmitInput struct {
	Reason        string
	ReasonTags    []string
	Photos        []string
	ProductID     string
	Size          string
	PickupAddress model.Address
}

// Submit creates a new exchange request on a delivered order. The pickup
// address is snapshotted here and never tracks later address-book edits.
func Submit(o *model.Order, cur *model.ExchangeRequest, in SubmitInput, policy model.ExchangePolicy, now time.Time) (*model.ExchangeRequest, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, ErrReasonRequired
	}
	if len(in.Photos) < 1 || len(in.Photos) > 4 {
		return nil, ErrPhotoCount
	}
	if in.ProductID == "" || in.Size == "" {
		return nil, ErrTargetRequired
	}

	// A terminal request is history, not an active one; it does not block
	// a new submission on its own (the projected order status does).
	if cur != nil && !cur.Status.Terminal() {
		return nil, ErrActiveExchange
	}
	if o.Status != model.OrderDelivered {
		return nil, ErrNotDelivered
	}
	if policy.ExchangeType != model.ExchangeTypeStandard {
		return nil, ErrNotExchangeable
	}
	deadline := o.DeliveredAt.AddDate(0, 0, policy.WindowDays)
	if now.After(deadline) {
		return nil, ErrWindowClosed
	}

	// own copies of the slices, so later edits to the caller's DTO cannot
	// reach the canonical model
	return &model.ExchangeRequest{
		Status:        model.ExchangePending,
		Reason:        in.Reason,
		ReasonTags:    slices.Clone(in.ReasonTags),
		Photos:        slices.Clone(in.Photos),
		ProductID:     in.ProductID,
		Size:          in.Size,
		RequestedAt:   now,
		PickupAddress: in.PickupAddress,
	}, nil
}

// Approve applies an admin approval to a pending request.
func Approve(cur *model.ExchangeRequest, notes string) (*model.ExchangeRequest, error) {
	next, err := advance(cur, model.ExchangeApproved)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		next.AdminNotes = notes
	}
	return next, nil
}

// Reject applies an admin rejection to a pending request. Terminal.
func Reject(cur *model.ExchangeRequest, notes string) (*model.ExchangeRequest, error) {
	next, err := advance(cur, model.ExchangeRejected)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		next.AdminNotes = notes
	}
	return next, nil
}

// BookPickup records the logistics booking. An externally supplied tracking
// id wins; otherwise one is generated. From here on the address snapshot
// and the requested replacement are frozen.
func BookPickup(cur *model.ExchangeRequest, trackingID string) (*model.ExchangeRequest, error) {
	next, err := advance(cur, model.ExchangePickedUp)
	if err != nil {
		return nil, err
	}
	if trackingID == "" {
		trackingID = newTrackingID()
	}
	next.TrackingID = trackingID
	return next, nil
}

// MarkInTransit records the optional intermediate logistics update.
func MarkInTransit(cur *model.ExchangeRequest) (*model.ExchangeRequest, error) {
	return advance(cur, model.ExchangeInTransit)
}

// Complete finishes the swap from picked-up or in-transit. Terminal.
func Complete(cur *model.ExchangeRequest) (*model.ExchangeRequest, error) {
	return advance(cur, model.ExchangeCompleted)
}

func newTrackingID() string {
	return "PU-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
