package handler

import (
	"fmt"
	"net/http"

	"storefront-web/internal/model"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalog service.ProductCatalog
}

func NewCatalogHandler(catalog service.ProductCatalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to fetch products."))
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, fmt.Sprintf("Failed to fetch product ID: %d", productID)))
	}

	return c.JSON(http.StatusOK, product)
}
