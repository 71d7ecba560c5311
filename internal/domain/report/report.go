// Package report models the admin sales reporting surface.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySales aggregates one day of non-cancelled orders.
type DailySales struct {
	Day          time.Time
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	TotalSGST    decimal.Decimal
	TotalCGST    decimal.Decimal
	TotalTax     decimal.Decimal
	CashOrders   int64
	OnlineOrders int64
}

// Repository reads aggregated sales data.
type Repository interface {
	// ListDailySales returns per-day aggregates within the inclusive date
	// range, newest first. Zero time values leave the corresponding bound open.
	ListDailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)
}
