package service

import (
	"context"
	"sync"

	"storefront-web/internal/client"
	"storefront-web/internal/model"

	"github.com/shopspring/decimal"
)

type memoryCartStore struct {
	mu      sync.Mutex
	carts   map[string]model.Cart
	saves   int
	loadErr error
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: make(map[string]model.Cart)}
}

func (m *memoryCartStore) Load(ctx context.Context, sessionKey string) model.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(model.Cart{}, m.carts[sessionKey]...)
}

func (m *memoryCartStore) LoadForUpdate(ctx context.Context, sessionKey string) (model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append(model.Cart{}, m.carts[sessionKey]...), nil
}

func (m *memoryCartStore) Save(ctx context.Context, sessionKey string, cart model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.carts[sessionKey] = append(model.Cart{}, cart...)
	return nil
}

func (m *memoryCartStore) Clear(ctx context.Context, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionKey)
	return nil
}

type fakeProvider struct {
	mu         sync.Mutex
	amounts    []string
	approvals  []model.Approval
	createErr  error
	captureErr error
}

func (p *fakeProvider) Method() string { return model.PaymentMethodPayPal }

func (p *fakeProvider) CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.amounts = append(p.amounts, amount.StringFixed(2))
	return &model.ProviderOrder{ID: "PROVIDER-1", Amount: amount.StringFixed(2), Currency: "USD"}, nil
}

func (p *fakeProvider) Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approvals = append(p.approvals, approval)
	if p.captureErr != nil {
		return nil, p.captureErr
	}
	return &model.CaptureDetails{ID: "CAPTURE-1", Status: "COMPLETED", PayerID: approval.PayerID, Amount: approval.Amount}, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	requests []model.OrderRequest
	result   *model.OrderResult
	err      error
	// block, when set, holds CreateOrder until it is closed or the context ends.
	block chan struct{}
}

func (o *fakeOrders) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error) {
	o.mu.Lock()
	o.requests = append(o.requests, req)
	block := o.block
	o.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if o.err != nil {
		return nil, o.err
	}
	return o.result, nil
}

func (o *fakeOrders) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.requests)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.OrderPlaced
	ctxErr error

	started chan struct{}
	block   chan struct{}
}

// PublishOrderPlaced waits on block when set, giving up when ctx ends.
func (p *fakePublisher) PublishOrderPlaced(ctx context.Context, event model.OrderPlaced) error {
	if p.started != nil {
		close(p.started)
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			p.mu.Lock()
			p.ctxErr = ctx.Err()
			p.mu.Unlock()
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctxErr = ctx.Err()
	p.events = append(p.events, event)
	return nil
}

var errNotFound = &client.APIError{StatusCode: 404, Message: "Product not found."}

// fakeAPI serves the back-office and catalog interfaces from canned data.
type fakeAPI struct {
	products []model.Product
	orders   *model.OrderPage
	order    *model.Order
	items    []model.InventoryItem
	lowStock []model.InventoryItem
	err      error
	lowErr   error

	calls      []string
	lastForm   model.ProductForm
	lastPage   [2]int
	lastSearch string
	lastStatus model.OrderStatus
	lastUpdate model.InventoryUpdate
}

func (a *fakeAPI) record(call string) error {
	a.calls = append(a.calls, call)
	return a.err
}

func (a *fakeAPI) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := a.record("ListProducts"); err != nil {
		return nil, err
	}
	return a.products, nil
}

func (a *fakeAPI) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	if err := a.record("GetProduct"); err != nil {
		return nil, err
	}
	for _, p := range a.products {
		if p.ProductID == productID {
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (a *fakeAPI) CreateProduct(ctx context.Context, form model.ProductForm) (*model.MessageResponse, error) {
	a.lastForm = form
	if err := a.record("CreateProduct"); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Product created successfully."}, nil
}

func (a *fakeAPI) UpdateProduct(ctx context.Context, productID int64, form model.ProductForm) (*model.MessageResponse, error) {
	a.lastForm = form
	if err := a.record("UpdateProduct"); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Product updated successfully."}, nil
}

func (a *fakeAPI) DeleteProduct(ctx context.Context, productID int64) (*model.MessageResponse, error) {
	if err := a.record("DeleteProduct"); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Product deleted successfully."}, nil
}

func (a *fakeAPI) ListOrders(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error) {
	a.lastPage = [2]int{page, perPage}
	a.lastSearch = search
	if err := a.record("ListOrders"); err != nil {
		return nil, err
	}
	out := *a.orders
	return &out, nil
}

func (a *fakeAPI) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if err := a.record("GetOrder"); err != nil {
		return nil, err
	}
	return a.order, nil
}

func (a *fakeAPI) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.MessageResponse, error) {
	a.lastStatus = status
	if err := a.record("UpdateOrderStatus"); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "Order status updated."}, nil
}

func (a *fakeAPI) DeleteOrder(ctx context.Context, orderID int64) (*model.MessageResponse, error) {
	if err := a.record("DeleteOrder"); err != nil {
		return nil, err
	}
	return &model.MessageResponse{}, nil
}

func (a *fakeAPI) ListInventory(ctx context.Context, search string) ([]model.InventoryItem, error) {
	a.lastSearch = search
	if err := a.record("ListInventory"); err != nil {
		return nil, err
	}
	return a.items, nil
}

func (a *fakeAPI) UpdateInventory(ctx context.Context, productID int64, update model.InventoryUpdate) (*model.InventoryItem, error) {
	a.lastUpdate = update
	if err := a.record("UpdateInventory"); err != nil {
		return nil, err
	}
	return &model.InventoryItem{ProductID: productID, StockLevel: update.StockLevel, ReorderLevel: update.ReorderLevel}, nil
}

func (a *fakeAPI) LowStockInventory(ctx context.Context) ([]model.InventoryItem, error) {
	if a.lowErr != nil {
		return nil, a.lowErr
	}
	return a.lowStock, nil
}
