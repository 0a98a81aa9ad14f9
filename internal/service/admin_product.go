package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront-web/internal/model"

	"github.com/shopspring/decimal"
)

// ValidationError blocks a back-office action before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var ErrNotConfirmed = errors.New("deletion not confirmed")

const (
	msgFillAllFields = "Please fill in all fields."
	msgConfirmDelete = "Please confirm the deletion."
)

type ProductAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, form model.ProductForm) (*model.MessageResponse, error)
	UpdateProduct(ctx context.Context, productID int64, form model.ProductForm) (*model.MessageResponse, error)
	DeleteProduct(ctx context.Context, productID int64) (*model.MessageResponse, error)
}

// ProductFilter narrows the product table. Zero values do not filter.
type ProductFilter struct {
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Category string // case-insensitive substring of the category display name
}

func (f ProductFilter) Match(p model.Product) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Category != "" &&
		!strings.Contains(strings.ToLower(p.CategoryLabel()), strings.ToLower(f.Category)) {
		return false
	}
	return true
}

func FilterProducts(products []model.Product, filter ProductFilter) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

type ProductAdminService interface {
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Save(ctx context.Context, productID int64, form model.ProductForm) (model.Notification, error)
	Delete(ctx context.Context, productID int64, confirmed bool) (model.Notification, error)
}

type productAdminImpl struct {
	api ProductAPI
}

func NewProductAdminService(api ProductAPI) ProductAdminService {
	return &productAdminImpl{
		api: api,
	}
}

func (s *productAdminImpl) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return FilterProducts(products, filter), nil
}

// Save creates the product when productID is zero and updates it otherwise.
func (s *productAdminImpl) Save(ctx context.Context, productID int64, form model.ProductForm) (model.Notification, error) {
	if err := validateProductForm(&form); err != nil {
		return model.Notify(model.SeverityWarning, err.Error()), err
	}

	var (
		res *model.MessageResponse
		err error
	)
	if productID == 0 {
		res, err = s.api.CreateProduct(ctx, form)
	} else {
		res, err = s.api.UpdateProduct(ctx, productID, form)
	}
	if err != nil {
		return model.Notify(model.SeverityError, errorMessage(err, "Something went wrong.")), fmt.Errorf("save product: %w", err)
	}

	return model.Notify(model.SeveritySuccess, res.Message), nil
}

func (s *productAdminImpl) Delete(ctx context.Context, productID int64, confirmed bool) (model.Notification, error) {
	if !confirmed {
		return model.Notify(model.SeverityInfo, msgConfirmDelete), ErrNotConfirmed
	}

	res, err := s.api.DeleteProduct(ctx, productID)
	if err != nil {
		return model.Notify(model.SeverityError, errorMessage(err, "Failed to delete product.")), fmt.Errorf("delete product %d: %w", productID, err)
	}

	return model.Notify(model.SeveritySuccess, res.Message), nil
}

// validateProductForm requires name, description, price and category, and normalizes
// price and category id the way the api expects them.
func validateProductForm(form *model.ProductForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)
	if form.Name == "" || form.Description == "" ||
		strings.TrimSpace(form.Price) == "" || strings.TrimSpace(form.CategoryID) == "" {
		return &ValidationError{Message: msgFillAllFields}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil || price.IsNegative() {
		return &ValidationError{Message: "Please enter a valid price."}
	}
	categoryID, err := strconv.ParseInt(strings.TrimSpace(form.CategoryID), 10, 64)
	if err != nil || categoryID <= 0 {
		return &ValidationError{Message: "Please enter a valid category ID."}
	}

	form.Price = price.StringFixed(2)
	form.CategoryID = strconv.FormatInt(categoryID, 10)
	return nil
}
