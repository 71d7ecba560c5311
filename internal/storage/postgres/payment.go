package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/payment"
)

const (
	paymentColumns = `id, order_id, utr, gateway_txn_id, amount, time_submitted, status,
		verified_by, verified_at, admin_notes, created_at, updated_at`

	createPaymentSQL = `INSERT INTO payments (id, order_id, utr, gateway_txn_id, amount, time_submitted, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getPaymentSQL = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	paymentExistsSQL = `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND utr = $2)`

	resolvePaymentSQL = `UPDATE payments
		SET status = $2, verified_by = $3, verified_at = $4, admin_notes = $5, updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	resolvePendingByOrderSQL = `UPDATE payments
		SET status = $2, utr = CASE WHEN $3 <> '' THEN $3 ELSE utr END,
			gateway_txn_id = CASE WHEN $4 <> '' THEN $4 ELSE gateway_txn_id END,
			updated_at = now()
		WHERE order_id = $1 AND status = 'pending'
		RETURNING ` + paymentColumns
)

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a PaymentRepository that uses the given pool.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create persists a new payment row. A second submission of the same
// (order, UTR) pair trips the partial unique index and reports
// payment.ErrDuplicateUTR.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.pool.Exec(ctx, createPaymentSQL,
		p.ID, p.OrderID, p.UTR, p.GatewayTxnID, p.Amount, p.TimeSubmitted, string(p.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payment.ErrDuplicateUTR
		}
		return fmt.Errorf("creating payment %q: %w", p.ID, err)
	}
	return nil
}

// GetByID returns a single payment by its identifier.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	rows, err := r.pool.Query(ctx, getPaymentSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting payment %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("getting payment %q: %w", id, err)
	}
	return &p, nil
}

// List returns payments matching the filter, newest first. Filters compose
// with AND; zero values are ignored.
func (r *PaymentRepository) List(ctx context.Context, f payment.Filter) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE TRUE`
	args := []any{}

	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.OrderID != "" {
		args = append(args, f.OrderID)
		query += fmt.Sprintf(" AND order_id = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

// ExistsByOrderUTR reports whether the (order, UTR) pair was already submitted.
func (r *PaymentRepository) ExistsByOrderUTR(ctx context.Context, orderID, utr string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, paymentExistsSQL, orderID, utr).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking payment existence: %w", err)
	}
	return exists, nil
}

// Resolve records an admin decision on a pending payment.
func (r *PaymentRepository) Resolve(ctx context.Context, id string, status payment.Status, verifiedBy string, verifiedAt time.Time, notes string) error {
	tag, err := r.pool.Exec(ctx, resolvePaymentSQL, id, string(status), verifiedBy, verifiedAt, notes)
	if err != nil {
		return fmt.Errorf("resolving payment %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrNotFound
	}
	return nil
}

// ResolvePendingByOrder resolves the pending payment for an order, keeping any
// existing UTR or gateway transaction id when the webhook carries none.
func (r *PaymentRepository) ResolvePendingByOrder(ctx context.Context, orderID string, status payment.Status, utr, gatewayTxnID string) (*payment.Payment, error) {
	rows, err := r.pool.Query(ctx, resolvePendingByOrderSQL, orderID, string(status), utr, gatewayTxnID)
	if err != nil {
		return nil, fmt.Errorf("resolving pending payment for order %q: %w", orderID, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNoPendingPayment
		}
		return nil, fmt.Errorf("resolving pending payment for order %q: %w", orderID, err)
	}
	return &p, nil
}

func scanPayment(row pgx.CollectableRow) (payment.Payment, error) {
	var (
		p          payment.Payment
		amount     decimal.Decimal
		status     string
		verifiedAt *time.Time
	)
	err := row.Scan(
		&p.ID, &p.OrderID, &p.UTR, &p.GatewayTxnID, &amount, &p.TimeSubmitted, &status,
		&p.VerifiedBy, &verifiedAt, &p.AdminNotes, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Amount = amount
	p.Status = payment.Status(status)
	p.VerifiedAt = verifiedAt
	return p, err
}
