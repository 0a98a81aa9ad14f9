package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront-web/internal/config"
	"storefront-web/internal/model"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrUnavailable marks transport failures: the api could not be reached or the breaker is open.
var ErrUnavailable = errors.New("storefront api unavailable")

// APIError is a non-2xx answer of the storefront api.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api error %d: %s", e.StatusCode, e.Message)
}

// StorefrontAPI is the REST backend behind the shop and the back office.
type StorefrontAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	CreateProduct(ctx context.Context, form model.ProductForm) (*model.MessageResponse, error)
	UpdateProduct(ctx context.Context, productID int64, form model.ProductForm) (*model.MessageResponse, error)
	DeleteProduct(ctx context.Context, productID int64) (*model.MessageResponse, error)

	ListOrders(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.MessageResponse, error)
	DeleteOrder(ctx context.Context, orderID int64) (*model.MessageResponse, error)

	ListInventory(ctx context.Context, search string) ([]model.InventoryItem, error)
	UpdateInventory(ctx context.Context, productID int64, update model.InventoryUpdate) (*model.InventoryItem, error)
	LowStockInventory(ctx context.Context) ([]model.InventoryItem, error)
}

type apiClientImpl struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[*apiResponse]
	limiter    *rate.Limiter
	sfg        singleflight.Group
}

type apiResponse struct {
	statusCode int
	body       []byte
}

func NewStorefrontAPI(cfg config.API) StorefrontAPI {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	breaker := gobreaker.NewCircuitBreaker[*apiResponse](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: cfg.Timeout * 3,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &apiClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		breaker: breaker,
		limiter: limiter,
	}
}

// ---------------- products ----------------

func (c *apiClientImpl) ListProducts(ctx context.Context) ([]model.Product, error) {
	// concurrent catalog page loads share one upstream call
	v, err, _ := c.sfg.Do("products", func() (interface{}, error) {
		var products []model.Product
		err := c.doJSON(ctx, http.MethodGet, "/products", nil, &products, "Failed to fetch products.")
		return products, err
	})
	if err != nil {
		return nil, err
	}

	return v.([]model.Product), nil
}

func (c *apiClientImpl) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	path := fmt.Sprintf("/products/%d", productID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &product, fmt.Sprintf("Failed to fetch product ID: %d", productID)); err != nil {
		return nil, err
	}

	return &product, nil
}

func (c *apiClientImpl) CreateProduct(ctx context.Context, form model.ProductForm) (*model.MessageResponse, error) {
	return c.sendProductForm(ctx, http.MethodPost, "/products", form, "Failed to create product.")
}

func (c *apiClientImpl) UpdateProduct(ctx context.Context, productID int64, form model.ProductForm) (*model.MessageResponse, error) {
	return c.sendProductForm(ctx, http.MethodPut, fmt.Sprintf("/products/%d", productID), form, "Failed to update product.")
}

func (c *apiClientImpl) DeleteProduct(ctx context.Context, productID int64) (*model.MessageResponse, error) {
	var res model.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", productID), nil, &res, "Failed to delete product."); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClientImpl) sendProductForm(ctx context.Context, method, path string, form model.ProductForm, fallback string) (*model.MessageResponse, error) {
	body, contentType, err := encodeProductForm(form)
	if err != nil {
		return nil, fmt.Errorf("encode product form: %w", err)
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	var res model.MessageResponse
	if err := decodeResponse(resp, &res, fallback); err != nil {
		return nil, err
	}

	return &res, nil
}

func encodeProductForm(form model.ProductForm) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", form.Name},
		{"description", form.Description},
		{"price", form.Price},
		{"category_id", form.CategoryID},
	}
	if form.ImgURL != "" {
		fields = append(fields, struct{ name, value string }{"img_url", form.ImgURL})
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if len(form.Image) > 0 {
		part, err := w.CreateFormFile("image", form.ImageName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(form.Image); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// ---------------- orders ----------------

func (c *apiClientImpl) ListOrders(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		query.Set("search", search)
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/orders?"+query.Encode(), nil, &raw, "Failed to fetch orders."); err != nil {
		return nil, err
	}

	return decodeOrderPage(raw, page, perPage)
}

// decodeOrderPage accepts both the paginated envelope and a bare order array.
func decodeOrderPage(raw json.RawMessage, page, perPage int) (*model.OrderPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var orders []model.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		return &model.OrderPage{
			Orders:      orders,
			Total:       len(orders),
			Pages:       1,
			CurrentPage: 1,
			PerPage:     len(orders),
		}, nil
	}

	var result model.OrderPage
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("decode orders page: %w", err)
	}
	if result.CurrentPage == 0 {
		result.CurrentPage = page
	}
	if result.PerPage == 0 {
		result.PerPage = perPage
	}
	return &result, nil
}

func (c *apiClientImpl) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, &order, fmt.Sprintf("Failed to fetch order with ID %d", orderID)); err != nil {
		return nil, err
	}

	return &order, nil
}

func (c *apiClientImpl) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error) {
	var res model.OrderResult
	if err := c.doJSON(ctx, http.MethodPost, "/orders", req, &res, "Failed to create order."); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClientImpl) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.MessageResponse, error) {
	var res model.MessageResponse
	path := fmt.Sprintf("/orders/%d/status", orderID)
	if err := c.doJSON(ctx, http.MethodPut, path, model.StatusUpdate{Status: status}, &res, "Failed to update order status."); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClientImpl) DeleteOrder(ctx context.Context, orderID int64) (*model.MessageResponse, error) {
	var res model.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, &res, "Failed to delete order."); err != nil {
		return nil, err
	}

	return &res, nil
}

// ---------------- inventory ----------------

func (c *apiClientImpl) ListInventory(ctx context.Context, search string) ([]model.InventoryItem, error) {
	path := "/inventory"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var items []model.InventoryItem
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items, "Failed to fetch inventory."); err != nil {
		return nil, err
	}

	return items, nil
}

func (c *apiClientImpl) UpdateInventory(ctx context.Context, productID int64, update model.InventoryUpdate) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d", productID), update, &item, "Failed to update inventory."); err != nil {
		return nil, err
	}

	return &item, nil
}

func (c *apiClientImpl) LowStockInventory(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := c.doJSON(ctx, http.MethodGet, "/inventory/low_stock", nil, &items, "Failed to fetch low stock inventory."); err != nil {
		return nil, err
	}

	return items, nil
}

// ---------------- transport ----------------

func (c *apiClientImpl) doJSON(ctx context.Context, method, path string, in, out interface{}, fallback string) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	return decodeResponse(resp, out, fallback)
}

func (c *apiClientImpl) do(ctx context.Context, method, path string, body []byte, contentType string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.breaker.Execute(func() (*apiResponse, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("http new request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		b, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		res := &apiResponse{statusCode: httpResp.StatusCode, body: b}
		if res.statusCode >= http.StatusInternalServerError {
			// count server faults against the breaker, 4xx answers are the caller's problem
			return res, &APIError{StatusCode: res.statusCode}
		}
		return res, nil
	})

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return resp, nil
	case err != nil:
		log.WithFields(log.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("storefront api request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	return resp, nil
}

func decodeResponse(resp *apiResponse, out interface{}, fallback string) error {
	if resp.statusCode < 200 || resp.statusCode >= 300 {
		return &APIError{
			StatusCode: resp.statusCode,
			Message:    errorMessage(resp.body, fallback),
		}
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage picks the first of error, message or description from a json error body.
func errorMessage(body []byte, fallback string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	for _, key := range []string{"error", "message", "description"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}
