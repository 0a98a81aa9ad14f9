package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-web/internal/model"
)

const (
	defaultOrdersPerPage = 10
	msgSelectStatus      = "Please select a new status."
)

type OrderAPI interface {
	ListOrders(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.MessageResponse, error)
	DeleteOrder(ctx context.Context, orderID int64) (*model.MessageResponse, error)
}

type OrderAdminService interface {
	List(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error)
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (model.Notification, error)
	Delete(ctx context.Context, orderID int64, confirmed bool) (model.Notification, error)
}

type orderAdminImpl struct {
	api OrderAPI
}

func NewOrderAdminService(api OrderAPI) OrderAdminService {
	return &orderAdminImpl{
		api: api,
	}
}

func (s *orderAdminImpl) List(ctx context.Context, page, perPage int, search string) (*model.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultOrdersPerPage
	}

	result, err := s.api.ListOrders(ctx, page, perPage, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if result.CurrentPage == 0 {
		result.CurrentPage = page
	}
	if result.PerPage == 0 {
		result.PerPage = perPage
	}
	if result.Pages == 0 && len(result.Orders) > 0 {
		result.Pages = 1
	}

	return result, nil
}

func (s *orderAdminImpl) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	return order, nil
}

// UpdateStatus only sends statuses from the closed set; anything else is refused locally.
func (s *orderAdminImpl) UpdateStatus(ctx context.Context, orderID int64, status string) (model.Notification, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		err := &ValidationError{Message: msgSelectStatus}
		return model.Notify(model.SeverityWarning, err.Message), err
	}

	next := model.OrderStatus(status)
	if !next.Valid() {
		err := &ValidationError{Message: fmt.Sprintf("Unknown order status: %s", status)}
		return model.Notify(model.SeverityWarning, err.Message), err
	}

	res, err := s.api.UpdateOrderStatus(ctx, orderID, next)
	if err != nil {
		return model.Notify(model.SeverityError, errorMessage(err, "Failed to update order status.")),
			fmt.Errorf("update order %d status: %w", orderID, err)
	}

	message := res.Message
	if message == "" {
		message = "Order status updated successfully."
	}
	return model.Notify(model.SeveritySuccess, message), nil
}

func (s *orderAdminImpl) Delete(ctx context.Context, orderID int64, confirmed bool) (model.Notification, error) {
	if !confirmed {
		return model.Notify(model.SeverityInfo, msgConfirmDelete), ErrNotConfirmed
	}

	res, err := s.api.DeleteOrder(ctx, orderID)
	if err != nil {
		return model.Notify(model.SeverityError, errorMessage(err, "Failed to delete order.")),
			fmt.Errorf("delete order %d: %w", orderID, err)
	}

	message := res.Message
	if message == "" {
		message = "Order deleted successfully."
	}
	return model.Notify(model.SeveritySuccess, message), nil
}
