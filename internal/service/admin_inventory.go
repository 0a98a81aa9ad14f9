package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront-web/internal/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	msgLowStock       = "Some products are low in stock."
	msgInvalidLevels  = "Please enter valid non-negative numbers for stock levels."
	msgInventorySaved = "Inventory updated successfully."
)

type InventoryAPI interface {
	ListInventory(ctx context.Context, search string) ([]model.InventoryItem, error)
	UpdateInventory(ctx context.Context, productID int64, update model.InventoryUpdate) (*model.InventoryItem, error)
	LowStockInventory(ctx context.Context) ([]model.InventoryItem, error)
}

type InventoryView struct {
	Items    []model.InventoryItem `json:"items"`
	LowStock []model.InventoryItem `json:"low_stock"`
}

type InventoryAdminService interface {
	List(ctx context.Context, search string) (InventoryView, *model.Notification, error)
	LowStock(ctx context.Context) ([]model.InventoryItem, error)
	Update(ctx context.Context, productID int64, rawStock, rawReorder string) (*model.InventoryItem, model.Notification, error)
}

type inventoryAdminImpl struct {
	api InventoryAPI
}

func NewInventoryAdminService(api InventoryAPI) InventoryAdminService {
	return &inventoryAdminImpl{
		api: api,
	}
}

// List fetches the table and the low-stock list together. A failed low-stock fetch only
// costs the warning; the table is still returned.
func (s *inventoryAdminImpl) List(ctx context.Context, search string) (InventoryView, *model.Notification, error) {
	var (
		items    []model.InventoryItem
		lowStock []model.InventoryItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.api.ListInventory(gctx, strings.TrimSpace(search))
		if err != nil {
			return fmt.Errorf("list inventory: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.api.LowStockInventory(gctx)
		if err != nil {
			log.WithError(err).Warn("fetch low stock inventory")
			lowStock = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		n := model.Notify(model.SeverityError, errorMessage(err, "Failed to fetch inventory."))
		return InventoryView{}, &n, err
	}

	if items == nil {
		items = []model.InventoryItem{}
	}
	if lowStock == nil {
		lowStock = []model.InventoryItem{}
	}
	view := InventoryView{
		Items:    items,
		LowStock: lowStock,
	}
	if len(lowStock) > 0 {
		n := model.Notify(model.SeverityWarning, msgLowStock)
		return view, &n, nil
	}

	return view, nil, nil
}

func (s *inventoryAdminImpl) LowStock(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.api.LowStockInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock inventory: %w", err)
	}
	if items == nil {
		items = []model.InventoryItem{}
	}

	return items, nil
}

func (s *inventoryAdminImpl) Update(ctx context.Context, productID int64, rawStock, rawReorder string) (*model.InventoryItem, model.Notification, error) {
	update, err := parseInventoryUpdate(rawStock, rawReorder)
	if err != nil {
		return nil, model.Notify(model.SeverityWarning, err.Error()), err
	}

	item, err := s.api.UpdateInventory(ctx, productID, update)
	if err != nil {
		return nil, model.Notify(model.SeverityError, errorMessage(err, "Failed to update inventory.")),
			fmt.Errorf("update inventory %d: %w", productID, err)
	}

	return item, model.Notify(model.SeveritySuccess, msgInventorySaved), nil
}

func parseInventoryUpdate(rawStock, rawReorder string) (model.InventoryUpdate, error) {
	stock, errStock := strconv.Atoi(strings.TrimSpace(rawStock))
	reorder, errReorder := strconv.Atoi(strings.TrimSpace(rawReorder))
	if errStock != nil || errReorder != nil || stock < 0 || reorder < 0 {
		return model.InventoryUpdate{}, &ValidationError{Message: msgInvalidLevels}
	}

	return model.InventoryUpdate{
		StockLevel:   stock,
		ReorderLevel: reorder,
	}, nil
}
