package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// dailySalesResponse is one day of the sales report.
type dailySalesResponse struct {
	Day          string          `json:"day"`
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SGST         decimal.Decimal `json:"sgst"`
	CGST         decimal.Decimal `json:"cgst"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	CashOrders   int64           `json:"cash_orders"`
	OnlineOrders int64           `json:"online_orders"`
}

// SalesReport returns per-day sales aggregates, bounded by ?from= and ?to=
// (YYYY-MM-DD, inclusive).
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	q := r.URL.Query()
	for _, bound := range []struct {
		param string
		dst   *time.Time
	}{
		{"from", &from},
		{"to", &to},
	} {
		if raw := q.Get(bound.param); raw != "" {
			t, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, bound.param+" must be YYYY-MM-DD")
				return
			}
			*bound.dst = t
		}
	}

	days, err := h.reports.ListDailySales(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]dailySalesResponse, len(days))
	for i, d := range days {
		out[i] = dailySalesResponse{
			Day:          d.Day.Format(time.DateOnly),
			TotalOrders:  d.TotalOrders,
			TotalRevenue: d.TotalRevenue,
			SGST:         d.TotalSGST,
			CGST:         d.TotalCGST,
			TotalTax:     d.TotalTax,
			CashOrders:   d.CashOrders,
			OnlineOrders: d.OnlineOrders,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
