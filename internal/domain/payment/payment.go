package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested payment does not exist.
var ErrNotFound = errors.New("payment not found")

// Status enumerates payment resolution states.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Valid reports whether s is a known payment status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusSuccess || s == StatusFailed
}

// Payment is a customer's claim (manual UTR entry) or a gateway's record of an
// online payment. A payment is mutated exactly once, by the admin decision or
// the gateway webhook; after that only notes may change.
type Payment struct {
	ID            string
	OrderID       string
	UTR           string
	GatewayTxnID  string
	Amount        decimal.Decimal
	TimeSubmitted time.Time
	Status        Status
	VerifiedBy    string
	VerifiedAt    *time.Time
	AdminNotes    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter narrows payment listings.
type Filter struct {
	Status  Status
	OrderID string
	From    time.Time
	To      time.Time
}

// Repository defines persistence operations for payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, f Filter) ([]Payment, error)
	// ExistsByOrderUTR reports whether the (order, UTR) pair was already
	// submitted.
	ExistsByOrderUTR(ctx context.Context, orderID, utr string) (bool, error)
	// Resolve records an admin decision on a payment.
	Resolve(ctx context.Context, id string, status Status, verifiedBy string, verifiedAt time.Time, notes string) error
	// ResolvePendingByOrder resolves the pending payment for an order, used by
	// the gateway webhook. It returns the resolved payment, or
	// ErrNoPendingPayment when the order has no pending payment row.
	ResolvePendingByOrder(ctx context.Context, orderID string, status Status, utr, gatewayTxnID string) (*Payment, error)
}
