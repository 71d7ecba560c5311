package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamates/cafe-api/internal/domain/cart"
	"github.com/teamates/cafe-api/internal/domain/menu"
)

// Sentinel errors for order validation.
var (
	ErrEmptyCart            = fmt.Errorf("cart is empty")
	ErrCustomerNameRequired = fmt.Errorf("customer name is required")
	ErrInvalidOrderType     = fmt.Errorf("order type must be dine-in or takeaway")
	ErrInvalidPayment       = fmt.Errorf("payment method must be cash or online")
	ErrUnknownStatus        = fmt.Errorf("unknown order status")
)

// ItemNotFoundError indicates a cart line references a catalog item that does
// not exist.
type ItemNotFoundError struct {
	CatalogID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.CatalogID)
}

// ItemUnavailableError indicates a cart line references a catalog item that is
// currently switched off.
type ItemUnavailableError struct {
	CatalogID string
	Name      string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %s is currently unavailable", e.Name)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items         []cart.Item
	OrderType     OrderType
	TableNumber   string
	PickupTime    string
	PaymentMethod PaymentMethod
	CustomerName  string
	CustomerPhone string
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	catalog menu.Repository
	orders  Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(catalog menu.Repository, orders Repository) *Service {
	return &Service{catalog: catalog, orders: orders}
}

// PlaceOrder normalizes the submitted cart lines, validates them against the
// catalog, reprices every line from the stored catalog price, computes GST,
// and persists the order. Cash orders enter the pipeline payment-verified;
// online orders stay unverified until a payment resolves.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.CustomerName == "" {
		return nil, ErrCustomerNameRequired
	}
	if !req.OrderType.Valid() {
		return nil, ErrInvalidOrderType
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPayment
	}

	// Folding through the reducer merges duplicate lines and drops
	// non-positive quantities before anything is priced.
	c := cart.New(req.Items...)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := c.Items()
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.CatalogID
	}

	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}
	byID := make(map[string]menu.Item, len(fetched))
	for _, item := range fetched {
		byID[item.ID] = item
	}

	for i, line := range lines {
		item, ok := byID[line.CatalogID]
		if !ok {
			return nil, &ItemNotFoundError{CatalogID: line.CatalogID}
		}
		if !item.Available {
			return nil, &ItemUnavailableError{CatalogID: item.ID, Name: item.Name}
		}
		// The stored catalog price wins over whatever the client sent.
		lines[i].Price = item.Price
		lines[i].Name = item.Name
		lines[i].Category = item.Category
	}

	pricing := Price(cart.New(lines...))

	o := &Order{
		ID:            uuid.New().String(),
		Items:         lines,
		Subtotal:      pricing.Subtotal,
		SGST:          pricing.SGST,
		CGST:          pricing.CGST,
		Total:         pricing.Total,
		OrderType:     req.OrderType,
		TableNumber:   req.TableNumber,
		PickupTime:    req.PickupTime,
		PaymentMethod: req.PaymentMethod,
		// Cash is collected at the counter, so the order is trusted
		// immediately; online orders wait for verification.
		PaymentVerified: req.PaymentMethod == PayCash,
		Status:          StatusPending,
		TokenNumber:     NewToken(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrUnknownStatus
	}
	return s.orders.List(ctx, f)
}

// UpdateStatus applies a staff-driven status change after checking it against
// the allowed-transition table.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, ErrUnknownStatus
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(next) {
		return nil, &IllegalTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	o.Status = next
	return o, nil
}
