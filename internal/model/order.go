package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const PaymentMethodPayPal = "PayPal"

type Order struct {
	OrderID       int64           `json:"order_id"`
	CustomerID    int64           `json:"customer_id"`
	OrderDate     string          `json:"order_date,omitempty"`
	Status        OrderStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	OrderItems    []OrderItem     `json:"order_items,omitempty"`
}

type OrderItem struct {
	OrderItemID int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderPage struct {
	Orders      []Order `json:"orders"`
	Total       int     `json:"total"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"current_page"`
	PerPage     int     `json:"per_page"`
}

// OrderRequest is built from the current cart at submission time and never stored.
type OrderRequest struct {
	UserID        int64  `json:"user_id"`
	PaymentMethod string `json:"payment_method"`
	CartItems     Cart   `json:"cart_items"`
}

type OrderResult struct {
	OrderID int64  `json:"order_id"`
	Message string `json:"message,omitempty"`
}

type StatusUpdate struct {
	Status OrderStatus `json:"status"`
}
