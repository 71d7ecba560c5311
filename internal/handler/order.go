package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/cart"
	"github.com/teamates/cafe-api/internal/domain/order"
)

// orderLineRequest is one submitted cart line. Price and name are ignored: the
// stored catalog values win.
type orderLineRequest struct {
	CatalogID      string   `json:"catalog_id"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations"`
}

// placeOrderRequest is the JSON body for placing an order.
type placeOrderRequest struct {
	Items         []orderLineRequest `json:"items"`
	OrderType     string             `json:"order_type"`
	TableNumber   string             `json:"table_number"`
	PickupTime    string             `json:"pickup_time"`
	PaymentMethod string             `json:"payment_method"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
}

// orderResponse is the JSON shape of an order.
type orderResponse struct {
	ID                string          `json:"id"`
	Items             []cart.Item     `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	SGST              decimal.Decimal `json:"sgst"`
	CGST              decimal.Decimal `json:"cgst"`
	Total             decimal.Decimal `json:"total"`
	OrderType         string          `json:"order_type"`
	TableNumber       string          `json:"table_number,omitempty"`
	PickupTime        string          `json:"pickup_time,omitempty"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentVerified   bool            `json:"payment_verified"`
	Status            string          `json:"status"`
	TokenNumber       string          `json:"token_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	VerificationNotes string          `json:"verification_notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func orderToResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		Items:             o.Items,
		Subtotal:          o.Subtotal,
		SGST:              o.SGST,
		CGST:              o.CGST,
		Total:             o.Total,
		OrderType:         string(o.OrderType),
		TableNumber:       o.TableNumber,
		PickupTime:        o.PickupTime,
		PaymentMethod:     string(o.PaymentMethod),
		PaymentVerified:   o.PaymentVerified,
		Status:            string(o.Status),
		TokenNumber:       o.TokenNumber,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		VerificationNotes: o.VerificationNotes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// PlaceOrder validates the submitted cart against the catalog and creates the
// order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	now := time.Now()
	items := make([]cart.Item, len(req.Items))
	for i, line := range req.Items {
		items[i] = cart.Item{
			ID:             cart.NewItemID(line.CatalogID, line.Customizations, now),
			CatalogID:      line.CatalogID,
			Quantity:       line.Quantity,
			Customizations: line.Customizations,
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:         items,
		OrderType:     order.OrderType(req.OrderType),
		TableNumber:   req.TableNumber,
		PickupTime:    req.PickupTime,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderToResponse(o))
}

// GetOrder returns a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(o))
}

// ListOrders returns orders for the admin dashboard, optionally filtered by
// ?status= or ?active=true.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f := order.Filter{
		Status:     order.Status(r.URL.Query().Get("status")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = orderToResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateOrderStatus applies a staff-driven status change.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(o))
}
