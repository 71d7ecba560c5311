package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamates/cafe-api/internal/domain/menu"
	"github.com/teamates/cafe-api/internal/domain/order"
	"github.com/teamates/cafe-api/internal/domain/payment"
	"github.com/teamates/cafe-api/internal/domain/report"
	"github.com/teamates/cafe-api/internal/domain/session"
	"github.com/teamates/cafe-api/internal/events"
	"github.com/teamates/cafe-api/internal/gateway/phonepe"
)

// --- Mock implementations ---

type mockCatalog struct {
	items map[string]menu.Item

	created *menu.Item
	updated *menu.Item
	deleted string
}

func newMockCatalog(items ...menu.Item) *mockCatalog {
	byID := make(map[string]menu.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &mockCatalog{items: byID}
}

func (m *mockCatalog) List(_ context.Context, onlyAvailable bool) ([]menu.Item, error) {
	var out []menu.Item
	for _, item := range m.items {
		if onlyAvailable && !item.Available {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *mockCatalog) GetByID(_ context.Context, id string) (*menu.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	return &item, nil
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []string) ([]menu.Item, error) {
	var out []menu.Item
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockCatalog) Create(_ context.Context, item *menu.Item) error {
	m.created = item
	m.items[item.ID] = *item
	return nil
}

func (m *mockCatalog) Update(_ context.Context, item *menu.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return menu.ErrNotFound
	}
	m.updated = item
	m.items[item.ID] = *item
	return nil
}

func (m *mockCatalog) SetAvailability(_ context.Context, id string, available bool) error {
	item, ok := m.items[id]
	if !ok {
		return menu.ErrNotFound
	}
	item.Available = available
	m.items[id] = item
	return nil
}

func (m *mockCatalog) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return menu.ErrNotFound
	}
	delete(m.items, id)
	m.deleted = id
	return nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[string]*order.Order{}}
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *o
	m.orders[o.ID] = &clone
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *mockOrderRepo) List(_ context.Context, f order.Filter) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.ActiveOnly && o.Status.Terminal() {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) SetVerification(_ context.Context, id string, verified bool, status order.Status, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.PaymentVerified = verified
	o.Status = status
	o.VerificationNotes = notes
	return nil
}

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*payment.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: map[string]*payment.Payment{}}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.payments[p.ID] = &clone
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockPaymentRepo) List(_ context.Context, f payment.Filter) ([]payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payment.Payment
	for _, p := range m.payments {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.OrderID != "" && p.OrderID != f.OrderID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPaymentRepo) ExistsByOrderUTR(_ context.Context, orderID, utr string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == orderID && p.UTR == utr {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPaymentRepo) Resolve(_ context.Context, id string, status payment.Status, verifiedBy string, verifiedAt time.Time, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return payment.ErrNotFound
	}
	p.Status = status
	p.VerifiedBy = verifiedBy
	p.VerifiedAt = &verifiedAt
	p.AdminNotes = notes
	return nil
}

func (m *mockPaymentRepo) ResolvePendingByOrder(_ context.Context, orderID string, status payment.Status, utr, gatewayTxnID string) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == orderID && p.Status == payment.StatusPending {
			p.Status = status
			if utr != "" {
				p.UTR = utr
			}
			if gatewayTxnID != "" {
				p.GatewayTxnID = gatewayTxnID
			}
			clone := *p
			return &clone, nil
		}
	}
	return nil, payment.ErrNoPendingPayment
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]session.Session{}}
}

func (s *memSessionStore) Put(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *memSessionStore) Get(_ context.Context, token string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &sess, nil
}

func (s *memSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type mockReports struct {
	days []report.DailySales
}

func (m *mockReports) ListDailySales(_ context.Context, _, _ time.Time) ([]report.DailySales, error) {
	return m.days, nil
}

// --- Helpers ---

type fixture struct {
	server   *httptest.Server
	catalog  *mockCatalog
	orders   *mockOrderRepo
	payments *mockPaymentRepo
	reports  *mockReports
	hub      *events.Hub
}

const testAdminPassword = "letmein"

func newFixture(t *testing.T, items ...menu.Item) *fixture {
	t.Helper()

	catalog := newMockCatalog(items...)
	orderRepo := newMockOrderRepo()
	paymentRepo := newMockPaymentRepo()
	reports := &mockReports{}
	hub := events.NewHub()

	h := NewHandler(
		Config{FrontendURL: "https://cafe.example"},
		catalog,
		order.NewService(catalog, orderRepo),
		payment.NewService(paymentRepo, orderRepo),
		session.NewManager(newMemSessionStore(), testAdminPassword),
		phonepe.NewClient(phonepe.Config{MerchantID: "M1", SaltKey: "salt"}, nil),
		reports,
		hub,
	)

	server := httptest.NewServer(NewRouter(h))
	t.Cleanup(server.Close)

	return &fixture{
		server:   server,
		catalog:  catalog,
		orders:   orderRepo,
		payments: paymentRepo,
		reports:  reports,
		hub:      hub,
	}
}

func coffeeItem() menu.Item {
	return menu.Item{
		ID:        "m1",
		Name:      "Filter Coffee",
		Price:     decimal.RequireFromString("25.00"),
		Category:  "beverages",
		Available: true,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResp[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testAdminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeResp[map[string]any](t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (f *fixture) placeOrder(t *testing.T, method order.PaymentMethod) orderResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/orders", placeOrderRequest{
		Items:         []orderLineRequest{{CatalogID: "m1", Quantity: 2}},
		OrderType:     "dine-in",
		TableNumber:   "4",
		PaymentMethod: string(method),
		CustomerName:  "Asha",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeResp[orderResponse](t, resp)
}

// --- Tests ---

func TestListMenu_OnlyAvailable(t *testing.T) {
	unavailable := coffeeItem()
	unavailable.ID = "m2"
	unavailable.Name = "Cold Brew"
	unavailable.Available = false

	f := newFixture(t, coffeeItem(), unavailable)

	resp := f.do(t, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeResp[[]menuItemResponse](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
}

func TestPlaceOrder_PricesFromCatalog(t *testing.T) {
	f := newFixture(t, coffeeItem())

	got := f.placeOrder(t, order.PayCash)

	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("50.00")), got.Subtotal)
	assert.True(t, got.SGST.Equal(decimal.RequireFromString("1.25")), got.SGST)
	assert.True(t, got.CGST.Equal(decimal.RequireFromString("1.25")), got.CGST)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("52.50")), got.Total)
	assert.Equal(t, "pending", got.Status)
	assert.True(t, got.PaymentVerified)
	assert.Regexp(t, `^[A-Z][0-9]{3}$`, got.TokenNumber)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t, coffeeItem())

	tests := []struct {
		name       string
		req        placeOrderRequest
		wantStatus int
	}{
		{
			name: "missing customer name",
			req: placeOrderRequest{
				Items:         []orderLineRequest{{CatalogID: "m1", Quantity: 1}},
				OrderType:     "dine-in",
				PaymentMethod: "cash",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty cart",
			req: placeOrderRequest{
				OrderType:     "takeaway",
				PaymentMethod: "cash",
				CustomerName:  "Asha",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown catalog item",
			req: placeOrderRequest{
				Items:         []orderLineRequest{{CatalogID: "ghost", Quantity: 1}},
				OrderType:     "dine-in",
				PaymentMethod: "cash",
				CustomerName:  "Asha",
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "bad order type",
			req: placeOrderRequest{
				Items:         []orderLineRequest{{CatalogID: "m1", Quantity: 1}},
				OrderType:     "delivery",
				PaymentMethod: "cash",
				CustomerName:  "Asha",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/orders", tt.req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeResp[errorResponse](t, resp)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminSurface_RequiresSession(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/api/admin/orders",
		"/api/admin/payments",
		"/api/admin/menu",
		"/api/admin/reports/sales",
	} {
		resp := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, coffeeItem())
	token := f.login(t)
	placed := f.placeOrder(t, order.PayCash)

	t.Run("forward skip is legal", func(t *testing.T) {
		resp := f.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
			map[string]string{"status": "ready"}, SessionHeader, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeResp[orderResponse](t, resp)
		assert.Equal(t, "ready", got.Status)
	})

	t.Run("revert is rejected", func(t *testing.T) {
		resp := f.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
			map[string]string{"status": "accepted"}, SessionHeader, token)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("terminal is immutable", func(t *testing.T) {
		resp := f.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
			map[string]string{"status": "delivered"}, SessionHeader, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = f.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
			map[string]string{"status": "ready"}, SessionHeader, token)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestSubmitPaymentClaim(t *testing.T) {
	f := newFixture(t, coffeeItem())
	placed := f.placeOrder(t, order.PayOnline)

	claim := func(utr string, at time.Time) *http.Response {
		return f.do(t, http.MethodPost, "/api/orders/"+placed.ID+"/payments", map[string]any{
			"utr":            utr,
			"time_submitted": at,
		})
	}

	t.Run("malformed UTR", func(t *testing.T) {
		resp := claim("12345", time.Now())
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("accepted", func(t *testing.T) {
		resp := claim("123456789012", time.Now().Add(-time.Minute))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		got := decodeResp[paymentResponse](t, resp)
		assert.Equal(t, placed.ID, got.OrderID)
		assert.Equal(t, "pending", got.Status)
		assert.True(t, got.Amount.Equal(placed.Total), got.Amount)
	})

	t.Run("duplicate UTR", func(t *testing.T) {
		resp := claim("123456789012", time.Now().Add(-time.Minute))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		resp := claim("999956789012", time.Now().Add(-25*time.Hour))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVerifyPayment_Approve(t *testing.T) {
	f := newFixture(t, coffeeItem())
	token := f.login(t)
	placed := f.placeOrder(t, order.PayOnline)

	resp := f.do(t, http.MethodPost, "/api/orders/"+placed.ID+"/payments", map[string]any{
		"utr":            "123456789012",
		"time_submitted": time.Now().Add(-time.Minute),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	claim := decodeResp[paymentResponse](t, resp)

	resp = f.do(t, http.MethodPatch, "/api/admin/payments/"+claim.ID,
		map[string]string{"resolution": "success", "notes": "matched bank statement"},
		SessionHeader, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeResp[paymentResponse](t, resp)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "admin", got.VerifiedBy)

	resp = f.do(t, http.MethodGet, "/api/orders/"+placed.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	o := decodeResp[orderResponse](t, resp)
	assert.Equal(t, "accepted", o.Status)
	assert.True(t, o.PaymentVerified)
}

func TestGatewayWebhook(t *testing.T) {
	f := newFixture(t, coffeeItem())
	placed := f.placeOrder(t, order.PayOnline)

	// Seed the pending gateway payment the way initiation would.
	require.NoError(t, f.payments.Create(context.Background(), &payment.Payment{
		ID:           "pay-1",
		OrderID:      placed.ID,
		GatewayTxnID: "ORDER_" + placed.ID + "_1756500000000",
		Amount:       placed.Total,
		Status:       payment.StatusPending,
	}))

	webhookBody := func(state, code string) map[string]string {
		doc, err := json.Marshal(map[string]any{
			"data": map[string]any{
				"merchantTransactionId": "ORDER_" + placed.ID + "_1756500000000",
				"transactionId":         "T12345",
				"state":                 state,
				"responseCode":          code,
				"paymentInstrument":     map[string]string{"type": "UPI", "utr": "111122223333"},
			},
		})
		require.NoError(t, err)
		return map[string]string{"response": base64.StdEncoding.EncodeToString(doc)}
	}

	t.Run("success verifies order", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/payments/phonepe/webhook", webhookBody("COMPLETED", "SUCCESS"))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = f.do(t, http.MethodGet, "/api/orders/"+placed.ID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		o := decodeResp[orderResponse](t, resp)
		assert.Equal(t, "accepted", o.Status)
		assert.True(t, o.PaymentVerified)
	})

	t.Run("duplicate delivery conflicts", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/payments/phonepe/webhook", webhookBody("COMPLETED", "SUCCESS"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("garbage body rejected", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/payments/phonepe/webhook", map[string]string{"response": "!!!"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGatewayWebhook_BareDocument(t *testing.T) {
	f := newFixture(t, coffeeItem())
	placed := f.placeOrder(t, order.PayOnline)

	require.NoError(t, f.payments.Create(context.Background(), &payment.Payment{
		ID:           "pay-2",
		OrderID:      placed.ID,
		GatewayTxnID: "ORDER_" + placed.ID + "_1756500000000",
		Amount:       placed.Total,
		Status:       payment.StatusPending,
	}))

	// Some deliveries post the transaction document without the base64
	// envelope.
	resp := f.do(t, http.MethodPost, "/api/payments/phonepe/webhook", map[string]any{
		"merchantTransactionId": "ORDER_" + placed.ID + "_1756500000000",
		"transactionId":         "T98765",
		"state":                 "COMPLETED",
		"responseCode":          "SUCCESS",
		"paymentInstrument":     map[string]string{"type": "UPI", "utr": "444455556666"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/orders/"+placed.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	o := decodeResp[orderResponse](t, resp)
	assert.Equal(t, "accepted", o.Status)
	assert.True(t, o.PaymentVerified)

	// A body with neither envelope nor transaction is still rejected.
	resp = f.do(t, http.MethodPost, "/api/payments/phonepe/webhook", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayCallback_Redirects(t *testing.T) {
	f := newFixture(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(f.server.URL + "/api/payments/phonepe/callback?code=PAYMENT_SUCCESS&transactionId=T1")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://cafe.example/orders?"), loc)
	assert.Contains(t, loc, "payment=PAYMENT_SUCCESS")
	assert.Contains(t, loc, "txn=T1")
}

func TestMenuAdmin_CRUD(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	resp := f.do(t, http.MethodPost, "/api/admin/menu", menuItemRequest{
		Name:     "Masala Chai",
		Price:    decimal.RequireFromString("15.00"),
		Category: "beverages",
	}, SessionHeader, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeResp[menuItemResponse](t, resp)
	assert.True(t, created.Available)

	resp = f.do(t, http.MethodPatch, "/api/admin/menu/"+created.ID+"/availability",
		map[string]bool{"available": false}, SessionHeader, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeResp[[]menuItemResponse](t, resp))

	resp = f.do(t, http.MethodDelete, "/api/admin/menu/"+created.ID, nil, SessionHeader, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/admin/menu/"+created.ID, nil, SessionHeader, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	f.reports.days = []report.DailySales{{
		Day:          time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		TotalOrders:  12,
		TotalRevenue: decimal.RequireFromString("630.00"),
		TotalSGST:    decimal.RequireFromString("15.00"),
		TotalCGST:    decimal.RequireFromString("15.00"),
		TotalTax:     decimal.RequireFromString("30.00"),
		CashOrders:   7,
		OnlineOrders: 5,
	}}

	resp := f.do(t, http.MethodGet, "/api/admin/reports/sales?from=2026-08-01&to=2026-08-31", nil, SessionHeader, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	days := decodeResp[[]dailySalesResponse](t, resp)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-08-30", days[0].Day)
	assert.Equal(t, int64(12), days[0].TotalOrders)

	resp = f.do(t, http.MethodGet, "/api/admin/reports/sales?from=2026-45-99", nil, SessionHeader, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	resp := f.do(t, http.MethodPost, "/api/admin/logout", nil, SessionHeader, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/admin/orders", nil, SessionHeader, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
