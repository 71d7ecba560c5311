package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/cart"
	"github.com/teamates/cafe-api/internal/domain/order"
)

const (
	orderColumns = `id, items, subtotal, sgst, cgst, total, order_type, table_number, pickup_time,
		payment_method, payment_verified, status, token_number, customer_name, customer_phone,
		verification_notes, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (id, items, subtotal, sgst, cgst, total, order_type,
		table_number, pickup_time, payment_method, payment_verified, status, token_number,
		customer_name, customer_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrdersByStatusSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 ORDER BY created_at DESC`

	listActiveOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status NOT IN ('delivered', 'cancelled') ORDER BY created_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	setOrderVerificationSQL = `UPDATE orders
		SET payment_verified = $2, status = $3, verification_notes = $4, updated_at = now()
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The cart snapshot is serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, itemsJSON, o.Subtotal, o.SGST, o.CGST, o.Total,
		string(o.OrderType), o.TableNumber, o.PickupTime,
		string(o.PaymentMethod), o.PaymentVerified, string(o.Status),
		o.TokenNumber, o.CustomerName, o.CustomerPhone,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// List returns orders matching the filter, newest first.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case f.Status != "":
		rows, err = r.pool.Query(ctx, listOrdersByStatusSQL, string(f.Status))
	case f.ActiveOnly:
		rows, err = r.pool.Query(ctx, listActiveOrdersSQL)
	default:
		rows, err = r.pool.Query(ctx, listOrdersSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus writes a new status for the order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SetVerification records the outcome of payment verification on the order.
func (r *OrderRepository) SetVerification(ctx context.Context, id string, verified bool, status order.Status, notes string) error {
	tag, err := r.pool.Exec(ctx, setOrderVerificationSQL, id, verified, string(status), notes)
	if err != nil {
		return fmt.Errorf("setting verification of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		orderType, paymentMethod, status string
		subtotal, sgst, cgst, total      decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &itemsJSON, &subtotal, &sgst, &cgst, &total,
		&orderType, &o.TableNumber, &o.PickupTime,
		&paymentMethod, &o.PaymentVerified, &status,
		&o.TokenNumber, &o.CustomerName, &o.CustomerPhone,
		&o.VerificationNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	var items []cart.Item
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}

	o.Items = items
	o.Subtotal = subtotal
	o.SGST = sgst
	o.CGST = cgst
	o.Total = total
	o.OrderType = order.OrderType(orderType)
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	o.Status = order.Status(status)
	return o, nil
}
