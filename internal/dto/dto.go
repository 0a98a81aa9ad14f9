package dto

import (
	"bytes"
	"encoding/json"

	"storefront-web/internal/model"
)

// Quantity accepts a JSON number or string and keeps the raw text, so "abc", "2.7" or -5
// reach the cart's own normalization instead of failing the bind.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	*q = Quantity(data)
	return nil
}

type AddItemRequest struct {
	ProductID int64    `json:"product_id"`
	Quantity  Quantity `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity Quantity `json:"quantity"`
}

type ApproveRequest struct {
	OrderID string `json:"order_id"`
	PayerID string `json:"payer_id"`
	Nonce   string `json:"nonce"`
}

type WidgetErrorRequest struct {
	Message string `json:"message"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// InventoryUpdateRequest keeps both levels as raw text for validation.
type InventoryUpdateRequest struct {
	StockLevel   Quantity `json:"stock_level"`
	ReorderLevel Quantity `json:"reorder_level"`
}

// Response wraps every storefront answer that carries a notification for the UI.
type Response struct {
	Notification *model.Notification `json:"notification,omitempty"`
	Data         interface{}         `json:"data,omitempty"`
}

func Notice(n model.Notification) Response {
	return Response{Notification: &n}
}

func WithData(data interface{}, n *model.Notification) Response {
	return Response{Notification: n, Data: data}
}
