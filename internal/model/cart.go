package model

import "time"

// LineItem is a product snapshot taken when it was added to the cart plus the wanted quantity.
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is ordered by insertion and unique by product id.
type Cart []LineItem

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

func (c Cart) Find(productID int64) (LineItem, bool) {
	for _, item := range c {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// CartDocument is the durable row holding one session's serialized cart.
type CartDocument struct {
	SessionKey string `gorm:"primaryKey;size:64;not null"`
	Payload    string `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}
