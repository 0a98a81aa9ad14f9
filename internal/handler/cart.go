package handler

import (
	"net/http"

	"storefront-web/internal/cart"
	"storefront-web/internal/dto"
	"storefront-web/internal/middleware"
	"storefront-web/internal/model"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, h.cartService.Get(ctx, middleware.SessionID(c)))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product_id")
	}

	summary, notice, err := h.cartService.Add(ctx, middleware.SessionID(c), req.ProductID, cart.ParseQuantity(string(req.Quantity)))
	if err != nil {
		return fail(c, err, notice)
	}

	return c.JSON(http.StatusOK, dto.WithData(summary, &notice))
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "productID")
	if err != nil {
		return err
	}

	var req dto.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	summary, err := h.cartService.SetQuantity(ctx, middleware.SessionID(c), productID, string(req.Quantity))
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to update cart."))
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "productID")
	if err != nil {
		return err
	}

	summary, err := h.cartService.Remove(ctx, middleware.SessionID(c), productID)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to update cart."))
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.Clear(ctx, middleware.SessionID(c)); err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to clear cart."))
	}

	return c.NoContent(http.StatusNoContent)
}
