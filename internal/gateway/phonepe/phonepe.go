// Package phonepe is a thin client for the PhonePe Business payment API:
// payment initiation, webhook payload handling, and callback redirect
// translation. It wraps the provider's HTTP contract and nothing more.
package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

const payPath = "/pg/v1/pay"

// ErrInitiationFailed is returned when the gateway declines to create a
// payment or returns no redirect URL.
var ErrInitiationFailed = errors.New("payment initiation failed")

// Config holds the merchant credentials and endpoints for the gateway.
type Config struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	APIEndpoint string
	// CallbackURL receives webhook notifications; RedirectURL receives the
	// user's browser after payment.
	CallbackURL string
	RedirectURL string
}

// Client calls the PhonePe Business API.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// NewClient creates a gateway client. A nil httpClient uses a client with a
// 15-second timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.SaltIndex == "" {
		cfg.SaltIndex = "1"
	}
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

// InitiateRequest holds the inputs for creating a gateway payment.
type InitiateRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	CustomerName  string
	CustomerPhone string
}

// InitiateResult is the useful subset of a successful initiation response.
type InitiateResult struct {
	MerchantTxnID string
	TransactionID string
	RedirectURL   string
}

// MerchantTxnID builds the merchant transaction id carrying the order id, in
// the form ORDER_<order-id>_<unix-ms>.
func MerchantTxnID(orderID string, at time.Time) string {
	return fmt.Sprintf("ORDER_%s_%d", orderID, at.UnixMilli())
}

// OrderIDFromMerchantTxn extracts the order id from a merchant transaction id
// produced by MerchantTxnID. The second return is false when the value does
// not match the expected shape.
func OrderIDFromMerchantTxn(merchantTxnID string) (string, bool) {
	rest, ok := strings.CutPrefix(merchantTxnID, "ORDER_")
	if !ok || rest == "" {
		return "", false
	}
	// The trailing _<unix-ms> suffix is optional so ids produced by older
	// snapshots (bare ORDER_<id>) still resolve.
	if i := strings.LastIndexByte(rest, '_'); i > 0 && allDigits(rest[i+1:]) {
		return rest[:i], true
	}
	return rest, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// checksum computes the X-VERIFY header value for a request body:
// hex(sha256(base64Payload + path + saltKey)) + "###" + saltIndex.
func (c *Client) checksum(base64Payload, path string) string {
	sum := sha256.Sum256([]byte(base64Payload + path + c.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + c.cfg.SaltIndex
}

// buildPayload encodes the initiation payload object.
func (c *Client) buildPayload(req InitiateRequest, merchantTxnID string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("merchantId", func(e *jx.Encoder) { e.Str(c.cfg.MerchantID) })
		e.Field("merchantTransactionId", func(e *jx.Encoder) { e.Str(merchantTxnID) })
		e.Field("merchantUserId", func(e *jx.Encoder) { e.Str("USER_" + req.OrderID) })
		// The gateway wants the amount in paise.
		e.Field("amount", func(e *jx.Encoder) { e.Int64(req.Amount.Mul(decimal.NewFromInt(100)).IntPart()) })
		e.Field("redirectUrl", func(e *jx.Encoder) { e.Str(c.cfg.RedirectURL) })
		e.Field("redirectMode", func(e *jx.Encoder) { e.Str("POST") })
		e.Field("callbackUrl", func(e *jx.Encoder) { e.Str(c.cfg.CallbackURL) })
		if phone := normalizePhone(req.CustomerPhone); phone != "" {
			e.Field("mobileNumber", func(e *jx.Encoder) { e.Str(phone) })
		}
		e.Field("paymentInstrument", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("type", func(e *jx.Encoder) { e.Str("PAY_PAGE") })
			})
		})
	})
	return e.Bytes()
}

// normalizePhone strips non-digits and keeps the trailing 10 digits.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// initiateResponse mirrors the gateway's initiation response envelope.
type initiateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		TransactionID      string `json:"transactionId"`
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// Initiate creates a payment at the gateway and returns the redirect URL the
// customer should be sent to.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	merchantTxnID := MerchantTxnID(req.OrderID, c.now())
	base64Payload := base64.StdEncoding.EncodeToString(c.buildPayload(req, merchantTxnID))

	body, err := json.Marshal(map[string]string{"request": base64Payload})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIEndpoint+payPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", c.checksum(base64Payload, payPath))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "call gateway")
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decode gateway response")
	}

	redirect := decoded.Data.InstrumentResponse.RedirectInfo.URL
	if !decoded.Success || redirect == "" {
		return nil, ErrInitiationFailed
	}

	return &InitiateResult{
		MerchantTxnID: merchantTxnID,
		TransactionID: decoded.Data.TransactionID,
		RedirectURL:   redirect,
	}, nil
}

// WebhookPayload is the state notification the gateway posts to the callback
// URL after a payment attempt.
type WebhookPayload struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	TransactionID         string `json:"transactionId"`
	Amount                int64  `json:"amount"`
	State                 string `json:"state"`
	ResponseCode          string `json:"responseCode"`
	PaymentInstrument     struct {
		Type string `json:"type"`
		UTR  string `json:"utr"`
	} `json:"paymentInstrument"`
}

// Succeeded reports whether the payload describes a completed payment.
func (p WebhookPayload) Succeeded() bool {
	return p.State == "COMPLETED" && p.ResponseCode == "SUCCESS"
}

// Failed reports whether the payload describes a failed payment.
func (p WebhookPayload) Failed() bool {
	return p.State == "FAILED"
}

// SettledUTR returns the bank reference for a settled payment, falling back to
// the gateway transaction id when the instrument carries no UTR.
func (p WebhookPayload) SettledUTR() string {
	if p.PaymentInstrument.UTR != "" {
		return p.PaymentInstrument.UTR
	}
	return p.TransactionID
}

// CallbackRedirectURL translates gateway callback parameters into the frontend
// URL the customer's browser is redirected to.
func CallbackRedirectURL(frontendURL, code, transactionID string) string {
	q := url.Values{}
	q.Set("payment", code)
	if transactionID != "" {
		q.Set("txn", transactionID)
	}
	return frontendURL + "/orders?" + q.Encode()
}
