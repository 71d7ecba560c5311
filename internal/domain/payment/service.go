package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"

	"github.com/teamates/cafe-api/internal/domain/order"
)

// maxClaimAge is how far in the past a self-reported transaction time may be.
const maxClaimAge = 24 * time.Hour

// Bloom filter sizing for the fast duplicate-UTR screen. False positives fall
// back to the database check, so the rate only affects wasted lookups.
const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
)

// Sentinel errors for payment validation.
var (
	ErrInvalidUTR        = fmt.Errorf("UTR must be exactly 12 digits")
	ErrDuplicateUTR      = fmt.Errorf("this UTR has already been submitted for this order")
	ErrFutureTimestamp   = fmt.Errorf("transaction time cannot be in the future")
	ErrStaleTimestamp    = fmt.Errorf("transaction time cannot be more than 24 hours old")
	ErrAlreadyResolved   = fmt.Errorf("payment is already resolved")
	ErrNotOnlineOrder    = fmt.Errorf("order is not an online payment order")
	ErrNoPendingPayment  = fmt.Errorf("no pending payment found for order")
	ErrUnknownResolution = fmt.Errorf("resolution must be success or failed")
)

// Service coordinates the manual and gateway payment verification paths. Both
// converge on the same two side effects: resolve the payment row, then update
// the order's status and verified flag. The two writes are independent calls
// with no cross-table transaction.
type Service struct {
	payments Repository
	orders   order.Repository
	now      func() time.Time

	// seen is a best-effort screen over (order, UTR) pairs submitted during
	// this process's lifetime. A negative skips the database duplicate check;
	// a positive still confirms against the database.
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewService creates a payment Service.
func NewService(payments Repository, orders order.Repository) *Service {
	return &Service{
		payments: payments,
		orders:   orders,
		now:      time.Now,
		seen:     bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func dedupeKey(orderID, utr string) []byte {
	return []byte(orderID + ":" + utr)
}

func validUTR(utr string) bool {
	if len(utr) != 12 {
		return false
	}
	for i := range len(utr) {
		if utr[i] < '0' || utr[i] > '9' {
			return false
		}
	}
	return true
}

// SubmitClaim records a customer's manual payment proof (UTR + self-reported
// transaction time) as a pending payment awaiting admin verification. The
// claimed amount is always the order total; nothing here verifies the payment
// actually happened.
func (s *Service) SubmitClaim(ctx context.Context, orderID, utr string, timeSubmitted time.Time) (*Payment, error) {
	if !validUTR(utr) {
		return nil, ErrInvalidUTR
	}

	now := s.now()
	if timeSubmitted.After(now) {
		return nil, ErrFutureTimestamp
	}
	if now.Sub(timeSubmitted) > maxClaimAge {
		return nil, ErrStaleTimestamp
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != order.PayOnline {
		return nil, ErrNotOnlineOrder
	}

	s.mu.Lock()
	maybeSeen := s.seen.Test(dedupeKey(orderID, utr))
	s.mu.Unlock()
	if maybeSeen {
		exists, err := s.payments.ExistsByOrderUTR(ctx, orderID, utr)
		if err != nil {
			return nil, fmt.Errorf("check duplicate UTR: %w", err)
		}
		if exists {
			return nil, ErrDuplicateUTR
		}
	}

	p := &Payment{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		UTR:           utr,
		Amount:        o.Total,
		TimeSubmitted: timeSubmitted,
		Status:        StatusPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.mu.Lock()
	s.seen.Add(dedupeKey(orderID, utr))
	s.mu.Unlock()

	return p, nil
}

// CreateGatewayPending records a pending payment row for a gateway-initiated
// transaction, carrying the merchant transaction id for webhook correlation.
func (s *Service) CreateGatewayPending(ctx context.Context, orderID, merchantTxnID string) (*Payment, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != order.PayOnline {
		return nil, ErrNotOnlineOrder
	}

	p := &Payment{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		GatewayTxnID:  merchantTxnID,
		Amount:        o.Total,
		TimeSubmitted: s.now(),
		Status:        StatusPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create gateway payment: %w", err)
	}
	return p, nil
}

// Verify applies an admin decision to a pending payment. Approval marks the
// payment success and the order verified, advancing it to accepted when the
// pipeline allows; rejection marks the payment failed and cancels the order,
// but only while it is still pending. An order staff already moved forward
// keeps its status and only the verified flag and notes change. The payment
// write happens first; an order write failure leaves the pair inconsistent and
// is surfaced, not rolled back.
func (s *Service) Verify(ctx context.Context, paymentID string, resolution Status, verifiedBy, notes string) (*Payment, error) {
	if resolution != StatusSuccess && resolution != StatusFailed {
		return nil, ErrUnknownResolution
	}

	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	o, err := s.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	verifiedAt := s.now()
	if err := s.payments.Resolve(ctx, paymentID, resolution, verifiedBy, verifiedAt, notes); err != nil {
		return nil, fmt.Errorf("resolve payment: %w", err)
	}
	p.Status = resolution
	p.VerifiedBy = verifiedBy
	p.VerifiedAt = &verifiedAt
	p.AdminNotes = notes

	if resolution == StatusSuccess {
		err = s.orders.SetVerification(ctx, p.OrderID, true, nextStatus(o.Status, order.StatusAccepted), notes)
	} else {
		err = s.orders.SetVerification(ctx, p.OrderID, false, nextStatus(o.Status, order.StatusCancelled), notes)
	}
	if err != nil {
		return nil, fmt.Errorf("update order after verification: %w", err)
	}

	return p, nil
}

// nextStatus returns want when the transition from current is legal, otherwise
// current unchanged.
func nextStatus(current, want order.Status) order.Status {
	if current.CanTransition(want) {
		return want
	}
	return current
}

// ApplyGatewayResult applies a webhook-delivered transaction state. Success
// resolves the pending payment and marks the order accepted+verified; failure
// resolves the payment as failed and leaves the order pending for manual
// resolution. A delivery with no pending payment row (including a duplicate
// delivery) returns ErrNoPendingPayment.
func (s *Service) ApplyGatewayResult(ctx context.Context, orderID string, success bool, utr, gatewayTxnID string) (*Payment, error) {
	status := StatusFailed
	if success {
		status = StatusSuccess
	}

	p, err := s.payments.ResolvePendingByOrder(ctx, orderID, status, utr, gatewayTxnID)
	if err != nil {
		return nil, err
	}

	if success {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := s.orders.SetVerification(ctx, orderID, true, nextStatus(o.Status, order.StatusAccepted), ""); err != nil {
			return nil, fmt.Errorf("update order after gateway success: %w", err)
		}
	}

	return p, nil
}

// Get returns a payment by id.
func (s *Service) Get(ctx context.Context, id string) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// List returns payments matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Payment, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("unknown payment status %q", f.Status)
	}
	return s.payments.List(ctx, f)
}
