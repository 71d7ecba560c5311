package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// OrderType enumerates how the customer receives the order.
type OrderType string

const (
	TypeDineIn   OrderType = "dine-in"
	TypeTakeaway OrderType = "takeaway"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == TypeDineIn || t == TypeTakeaway
}

// PaymentMethod enumerates how the customer pays.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayOnline PaymentMethod = "online"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PayCash || m == PayOnline
}

// Order is a placed order. The items slice is a snapshot of the cart at
// checkout; orders are never deleted, only transitioned.
type Order struct {
	ID                string
	Items             []cart.Item
	Subtotal          decimal.Decimal
	SGST              decimal.Decimal
	CGST              decimal.Decimal
	Total             decimal.Decimal
	OrderType         OrderType
	TableNumber       string
	PickupTime        string
	PaymentMethod     PaymentMethod
	PaymentVerified   bool
	Status            Status
	TokenNumber       string
	CustomerName      string
	CustomerPhone     string
	VerificationNotes string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Filter narrows order listings.
type Filter struct {
	// Status limits results to a single status when non-empty.
	Status Status
	// ActiveOnly excludes delivered and cancelled orders.
	ActiveOnly bool
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// SetVerification records the outcome of payment verification: the
	// verified flag, the resulting status, and the admin's notes.
	SetVerification(ctx context.Context, id string, verified bool, status Status, notes string) error
}
