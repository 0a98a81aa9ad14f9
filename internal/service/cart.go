package service

import (
	"context"
	"fmt"

	"storefront-web/internal/cart"
	"storefront-web/internal/model"
	"storefront-web/internal/repository"

	log "github.com/sirupsen/logrus"
)

const (
	msgAddedToCart      = "Product added to cart!"
	msgCartUpdateFailed = "Failed to update cart."
)

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}

type CartSummary struct {
	Items model.Cart `json:"items"`
	Total string     `json:"total"`
	Count int        `json:"count"`
}

type CartService interface {
	Get(ctx context.Context, sessionKey string) CartSummary
	Add(ctx context.Context, sessionKey string, productID int64, qty int) (CartSummary, model.Notification, error)
	SetQuantity(ctx context.Context, sessionKey string, productID int64, rawQty string) (CartSummary, error)
	Remove(ctx context.Context, sessionKey string, productID int64) (CartSummary, error)
	Clear(ctx context.Context, sessionKey string) error
}

type cartServiceImpl struct {
	store   repository.CartStore
	catalog ProductCatalog
}

func NewCartService(store repository.CartStore, catalog ProductCatalog) CartService {
	return &cartServiceImpl{
		store:   store,
		catalog: catalog,
	}
}

func summarize(c model.Cart) CartSummary {
	if c == nil {
		c = model.Cart{}
	}
	return CartSummary{
		Items: c,
		Total: cart.FormatAmount(cart.ComputeTotal(c)),
		Count: cart.Count(c),
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, sessionKey string) CartSummary {
	return summarize(s.store.Load(ctx, sessionKey))
}

// Add snapshots the product as the api currently describes it and merges it into the cart.
func (s *cartServiceImpl) Add(ctx context.Context, sessionKey string, productID int64, qty int) (CartSummary, model.Notification, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return CartSummary{}, model.Notify(model.SeverityError, errorMessage(err, fmt.Sprintf("Failed to fetch product ID: %d", productID))), fmt.Errorf("get product %d: %w", productID, err)
	}

	current, err := s.store.LoadForUpdate(ctx, sessionKey)
	if err != nil {
		return CartSummary{}, model.Notify(model.SeverityError, msgCartUpdateFailed), err
	}

	updated := cart.AddToCart(current, *product, qty)
	if err := s.store.Save(ctx, sessionKey, updated); err != nil {
		return CartSummary{}, model.Notify(model.SeverityError, msgCartUpdateFailed), fmt.Errorf("save cart: %w", err)
	}

	log.WithFields(log.Fields{
		"session":    sessionKey,
		"product_id": productID,
		"quantity":   cart.ClampQuantity(qty),
	}).Debug("product added to cart")

	return summarize(updated), model.Notify(model.SeveritySuccess, msgAddedToCart), nil
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, sessionKey string, productID int64, rawQty string) (CartSummary, error) {
	current, err := s.store.LoadForUpdate(ctx, sessionKey)
	if err != nil {
		return CartSummary{}, err
	}

	updated := cart.SetQuantity(current, productID, cart.ParseQuantity(rawQty))
	if err := s.store.Save(ctx, sessionKey, updated); err != nil {
		return CartSummary{}, fmt.Errorf("save cart: %w", err)
	}

	return summarize(updated), nil
}

func (s *cartServiceImpl) Remove(ctx context.Context, sessionKey string, productID int64) (CartSummary, error) {
	current, err := s.store.LoadForUpdate(ctx, sessionKey)
	if err != nil {
		return CartSummary{}, err
	}

	updated := cart.RemoveItem(current, productID)
	if len(updated) == len(current) {
		return summarize(current), nil
	}

	if err := s.store.Save(ctx, sessionKey, updated); err != nil {
		return CartSummary{}, fmt.Errorf("save cart: %w", err)
	}

	return summarize(updated), nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, sessionKey string) error {
	return s.store.Clear(ctx, sessionKey)
}
