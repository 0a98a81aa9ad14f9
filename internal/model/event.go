package model

import "time"

const EventTypeOrderPlaced = "order.placed"

type OrderPlaced struct {
	OrderID       int64     `json:"order_id"`
	UserID        int64     `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	Total         string    `json:"total"`
	CaptureID     string    `json:"capture_id,omitempty"`
	Items         Cart      `json:"items"`
	PlacedAt      time.Time `json:"placed_at"`
}
