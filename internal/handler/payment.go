package handler

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teamates/cafe-api/internal/domain/payment"
	"github.com/teamates/cafe-api/internal/gateway/phonepe"
)

// paymentResponse is the JSON shape of a payment.
type paymentResponse struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	UTR           string          `json:"utr,omitempty"`
	GatewayTxnID  string          `json:"gateway_txn_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TimeSubmitted time.Time       `json:"time_submitted"`
	Status        string          `json:"status"`
	VerifiedBy    string          `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	AdminNotes    string          `json:"admin_notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func paymentToResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		UTR:           p.UTR,
		GatewayTxnID:  p.GatewayTxnID,
		Amount:        p.Amount,
		TimeSubmitted: p.TimeSubmitted,
		Status:        string(p.Status),
		VerifiedBy:    p.VerifiedBy,
		VerifiedAt:    p.VerifiedAt,
		AdminNotes:    p.AdminNotes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// SubmitPaymentClaim records a customer's manual UTR proof for an order.
func (h *Handler) SubmitPaymentClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UTR           string    `json:"utr"`
		TimeSubmitted time.Time `json:"time_submitted"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.payments.SubmitClaim(r.Context(), chi.URLParam(r, "id"), req.UTR, req.TimeSubmitted)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentToResponse(p))
}

// ListPayments returns payments for the admin dashboard, filterable by
// ?status=, ?order_id=, ?from= and ?to= (RFC 3339).
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := payment.Filter{
		Status:  payment.Status(q.Get("status")),
		OrderID: q.Get("order_id"),
	}
	for _, bound := range []struct {
		param string
		dst   *time.Time
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		if raw := q.Get(bound.param); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, bound.param+" must be RFC 3339")
				return
			}
			*bound.dst = t
		}
	}

	payments, err := h.payments.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]paymentResponse, len(payments))
	for i := range payments {
		out[i] = paymentToResponse(&payments[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// VerifyPayment applies an admin approve/reject decision to a pending payment.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resolution string `json:"resolution"`
		Notes      string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	admin := adminFrom(r.Context())
	p, err := h.payments.Verify(r.Context(), chi.URLParam(r, "id"), payment.Status(req.Resolution), admin, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentToResponse(p))
}

// InitiateGatewayPayment creates a PhonePe payment for an order and returns
// the redirect URL, recording a pending payment row for webhook correlation.
func (h *Handler) InitiateGatewayPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	o, err := h.orders.Get(r.Context(), req.OrderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.gateway.Initiate(r.Context(), phonepe.InitiateRequest{
		OrderID:       o.ID,
		Amount:        o.Total,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
	})
	if err != nil {
		zctx.From(r.Context()).Error("Gateway initiation failed",
			zap.String("order_id", o.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "payment initiation failed")
		return
	}

	if _, err := h.payments.CreateGatewayPending(r.Context(), o.ID, result.MerchantTxnID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"redirect_url":    result.RedirectURL,
		"merchant_txn_id": result.MerchantTxnID,
	})
}

// GatewayWebhook applies a PhonePe state notification. The payload arrives
// either base64-encoded under a "response" key or as the bare transaction
// document.
func (h *Handler) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeWebhookBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	orderID, ok := phonepe.OrderIDFromMerchantTxn(payload.MerchantTransactionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "unrecognized merchant transaction id")
		return
	}

	lg := zctx.From(r.Context()).With(
		zap.String("order_id", orderID),
		zap.String("state", payload.State),
	)

	switch {
	case payload.Succeeded():
		_, err = h.payments.ApplyGatewayResult(r.Context(), orderID, true, payload.SettledUTR(), payload.TransactionID)
	case payload.Failed():
		_, err = h.payments.ApplyGatewayResult(r.Context(), orderID, false, "", payload.TransactionID)
	default:
		// Intermediate states carry no transition; acknowledge and wait for a
		// terminal delivery.
		lg.Info("Ignoring non-terminal gateway state")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	if err != nil {
		lg.Error("Applying gateway result failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// webhookEnvelope is the gateway's webhook body: a base64-encoded payload
// under "response".
type webhookEnvelope struct {
	Response string `json:"response"`
}

func decodeWebhookBody(r *http.Request) (*phonepe.WebhookPayload, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	if env.Response != "" {
		raw, err := base64.StdEncoding.DecodeString(env.Response)
		if err != nil {
			return nil, err
		}
		// The decoded document wraps the transaction in a "data" object.
		var outer struct {
			Data phonepe.WebhookPayload `json:"data"`
		}
		if err := json.Unmarshal(raw, &outer); err != nil {
			return nil, err
		}
		return &outer.Data, nil
	}

	// Some deliveries skip the envelope and post the transaction document
	// directly.
	var payload phonepe.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.MerchantTransactionID == "" {
		return nil, errors.New("webhook body carries no transaction")
	}
	return &payload, nil
}

// GatewayCallback translates the gateway's browser redirect into a frontend
// redirect carrying the payment outcome.
func (h *Handler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	txn := r.URL.Query().Get("transactionId")
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			if v := r.PostForm.Get("code"); v != "" {
				code = v
			}
			if v := r.PostForm.Get("transactionId"); v != "" {
				txn = v
			}
		}
	}
	if code == "" {
		code = "UNKNOWN"
	}

	http.Redirect(w, r, phonepe.CallbackRedirectURL(h.cfg.FrontendURL, code, txn), http.StatusFound)
}
