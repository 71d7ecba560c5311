package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamates/cafe-api/internal/domain/report"
)

const listSalesSummarySQL = `SELECT day, total_orders, total_revenue, total_sgst, total_cgst,
	total_tax_collected, cash_orders, online_orders
	FROM sales_summary
	WHERE ($1::date IS NULL OR day >= $1) AND ($2::date IS NULL OR day <= $2)
	ORDER BY day DESC`

// ReportRepository implements report.Repository over the sales_summary view.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// ListDailySales returns per-day aggregates within the inclusive date range.
func (r *ReportRepository) ListDailySales(ctx context.Context, from, to time.Time) ([]report.DailySales, error) {
	var fromArg, toArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !to.IsZero() {
		toArg = &to
	}

	rows, err := r.pool.Query(ctx, listSalesSummarySQL, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("listing sales summary: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.DailySales, error) {
		var d report.DailySales
		err := row.Scan(
			&d.Day, &d.TotalOrders, &d.TotalRevenue, &d.TotalSGST, &d.TotalCGST,
			&d.TotalTax, &d.CashOrders, &d.OnlineOrders,
		)
		return d, err
	})
}
