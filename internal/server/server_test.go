package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-web/internal/client"
	"storefront-web/internal/config"
	"storefront-web/internal/model"
	"storefront-web/internal/repository"
	"storefront-web/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Method() string { return model.PaymentMethodPayPal }

func (stubProvider) CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error) {
	return &model.ProviderOrder{ID: "PROVIDER-1", Amount: amount.StringFixed(2), Currency: "USD"}, nil
}

func (stubProvider) Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error) {
	return &model.CaptureDetails{ID: "CAPTURE-1", Status: "COMPLETED", Amount: approval.Amount}, nil
}

type backend struct {
	orderStatus int
	orderBody   string
	calls       atomic.Int32

	mu     sync.Mutex
	orders []model.OrderRequest
}

func (b *backend) placed() []model.OrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.OrderRequest(nil), b.orders...)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/products/1":
		w.Write([]byte(`{"product_id":1,"name":"Chair","price":49.99,"category_id":2}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/products":
		w.Write([]byte(`[{"product_id":1,"name":"Chair","price":49.99,"category_id":2}]`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
		var req model.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			b.mu.Lock()
			b.orders = append(b.orders, req)
			b.mu.Unlock()
		}
		w.WriteHeader(b.orderStatus)
		w.Write([]byte(b.orderBody))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"description":"not found"}`))
	}
}

type storefront struct {
	url     string
	http    *http.Client
	backend *backend
}

func setupStorefront(t *testing.T) *storefront {
	t.Helper()

	b := &backend{orderStatus: http.StatusCreated, orderBody: `{"order_id":77}`}
	api := httptest.NewServer(b)
	t.Cleanup(api.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := repository.NewRedisCartStore(rdb, time.Hour)

	storefrontAPI := client.NewStorefrontAPI(config.API{URL: api.URL + "/api", Timeout: 2 * time.Second})
	registry := service.NewCheckoutRegistry(store, storefrontAPI, stubProvider{}, nil, service.CheckoutOptions{
		RedirectDelay: 2 * time.Second,
		SubmitTimeout: 2 * time.Second,
	})

	srv := NewServer(config.Session{
		Secret:        "test-secret",
		Cookie:        "storefront_session",
		MaxAge:        time.Hour,
		DefaultUserID: 1,
	}, Services{
		Catalog:   storefrontAPI,
		Cart:      service.NewCartService(store, storefrontAPI),
		Checkouts: registry,
		Products:  service.NewProductAdminService(storefrontAPI),
		Orders:    service.NewOrderAdminService(storefrontAPI),
		Inventory: service.NewInventoryAdminService(storefrontAPI),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &storefront{
		url:     ts.URL,
		http:    &http.Client{Jar: jar},
		backend: b,
	}
}

func (s *storefront) call(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, s.url+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil && res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

type cartResponse struct {
	Notification *model.Notification `json:"notification"`
	Data         service.CartSummary `json:"data"`
}

func TestHealth(t *testing.T) {
	s := setupStorefront(t)

	var body map[string]string
	assert.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCartFlow(t *testing.T) {
	s := setupStorefront(t)

	var added cartResponse
	status := s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": "2"}, &added)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, added.Notification)
	assert.Equal(t, "Product added to cart!", added.Notification.Message)

	status = s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": 3}, &added)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, added.Data.Items, 1)
	assert.Equal(t, 5, added.Data.Items[0].Quantity)

	var summary service.CartSummary
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPatch, "/api/cart/items/1", map[string]interface{}{"quantity": "abc"}, &summary))
	assert.Equal(t, 1, summary.Items[0].Quantity)
	assert.Equal(t, "49.99", summary.Total)

	require.Equal(t, http.StatusOK, s.call(t, http.MethodDelete, "/api/cart/items/42", nil, &summary))
	assert.Len(t, summary.Items, 1)

	require.Equal(t, http.StatusNoContent, s.call(t, http.MethodDelete, "/api/cart", nil, nil))
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/cart", nil, &summary))
	assert.Empty(t, summary.Items)
}

func TestAddUnknownProduct(t *testing.T) {
	s := setupStorefront(t)

	var res cartResponse
	status := s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 9, "quantity": 1}, &res)

	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, res.Notification)
	assert.Equal(t, "not found", res.Notification.Message)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	s := setupStorefront(t)
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": 2}, nil))

	var view service.CheckoutView
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/checkout", nil, &view))
	assert.Equal(t, service.CheckoutReady, view.State)
	assert.Equal(t, "99.98", view.Total)
	require.NotNil(t, view.Widget)

	var order model.ProviderOrder
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/checkout/orders", nil, &order))
	assert.Equal(t, "99.98", order.Amount)

	status := s.call(t, http.MethodPost, "/api/checkout/approve", map[string]string{"order_id": order.ID, "payer_id": "PAYER"}, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.CheckoutSuccess, view.State)
	assert.Equal(t, int64(77), view.OrderID)
	assert.Contains(t, view.Notification.Message, "77")
	assert.Equal(t, &service.Redirect{To: "/", AfterMS: 2000}, view.Redirect)

	placed := s.backend.placed()
	require.Len(t, placed, 1)
	assert.Equal(t, int64(1), placed[0].UserID)
	assert.Equal(t, "PayPal", placed[0].PaymentMethod)
	assert.Equal(t, 2, placed[0].CartItems[0].Quantity)

	var summary service.CartSummary
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/cart", nil, &summary))
	assert.Empty(t, summary.Items)
}

func TestCheckoutOrderRejected(t *testing.T) {
	s := setupStorefront(t)
	s.backend.orderStatus = http.StatusBadRequest
	s.backend.orderBody = `{"error":"Out of stock"}`
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": 1}, nil))

	var view service.CheckoutView
	s.call(t, http.MethodGet, "/api/checkout", nil, &view)
	var order model.ProviderOrder
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/checkout/orders", nil, &order))
	status := s.call(t, http.MethodPost, "/api/checkout/approve", map[string]string{"order_id": order.ID}, &view)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.CheckoutFailed, view.State)
	assert.Equal(t, "Out of stock", view.Notification.Message)

	var summary service.CartSummary
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/cart", nil, &summary))
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int64(1), summary.Items[0].ProductID)
}

func TestCheckoutCartChangedAfterOrderCreate(t *testing.T) {
	s := setupStorefront(t)
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": 1}, nil))

	var view service.CheckoutView
	s.call(t, http.MethodGet, "/api/checkout", nil, &view)
	var order model.ProviderOrder
	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/checkout/orders", nil, &order))
	assert.Equal(t, "49.99", order.Amount)

	require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"product_id": 1, "quantity": 1}, nil))

	status := s.call(t, http.MethodPost, "/api/checkout/approve", map[string]string{"order_id": order.ID}, &view)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, service.CheckoutFailed, view.State)
	assert.Equal(t, "99.98", view.Total)
	assert.Empty(t, s.backend.placed())

	var summary service.CartSummary
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/cart", nil, &summary))
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)

	assert.Equal(t, http.StatusBadRequest, s.call(t, http.MethodPost, "/api/checkout/approve", map[string]string{"nonce": "fake-nonce"}, nil))
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := setupStorefront(t)

	var view service.CheckoutView
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/checkout", nil, &view))
	assert.Equal(t, service.CheckoutEmpty, view.State)

	assert.Equal(t, http.StatusBadRequest, s.call(t, http.MethodPost, "/api/checkout/orders", nil, &view))
	assert.Equal(t, "Your cart is empty.", view.Notification.Message)
}

func TestAdminValidationSkipsBackend(t *testing.T) {
	s := setupStorefront(t)
	before := s.backend.calls.Load()

	var res struct {
		Notification model.Notification `json:"notification"`
	}
	status := s.call(t, http.MethodPut, "/api/admin/inventory/3", map[string]interface{}{"stock_level": -1, "reorder_level": "2"}, &res)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.SeverityWarning, res.Notification.Severity)
	assert.Equal(t, "Please enter valid non-negative numbers for stock levels.", res.Notification.Message)

	status = s.call(t, http.MethodPut, "/api/admin/orders/3/status", map[string]string{"status": ""}, &res)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please select a new status.", res.Notification.Message)

	status = s.call(t, http.MethodDelete, "/api/admin/orders/3", nil, &res)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Equal(t, before, s.backend.calls.Load())
}
