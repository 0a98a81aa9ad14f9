package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CategoryID  int64           `json:"category_id,omitempty"`
	Category    string          `json:"category,omitempty"` // display name, when the api sends one
	Price       decimal.Decimal `json:"price"`
	ImgURL      string          `json:"img_url,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// CategoryLabel is what the catalog shows (and filters on) for the product category.
func (p Product) CategoryLabel() string {
	if p.Category != "" {
		return p.Category
	}
	if p.CategoryID == 0 {
		return ""
	}
	return strconv.FormatInt(p.CategoryID, 10)
}

// ProductForm is the multipart payload of POST/PUT /products.
type ProductForm struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	ImgURL      string

	ImageName string
	Image     []byte
}

type MessageResponse struct {
	Message string `json:"message"`
}
