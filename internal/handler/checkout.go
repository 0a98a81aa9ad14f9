package handler

import (
	"net/http"

	"storefront-web/internal/dto"
	"storefront-web/internal/middleware"
	"storefront-web/internal/model"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
)

// CheckoutHandler exposes the payment widget callbacks. Each request is routed to the
// session's checkout flow.
type CheckoutHandler struct {
	registry *service.CheckoutRegistry
}

func NewCheckoutHandler(registry *service.CheckoutRegistry) *CheckoutHandler {
	return &CheckoutHandler{
		registry: registry,
	}
}

func (h *CheckoutHandler) checkout(c echo.Context) *service.Checkout {
	return h.registry.Get(middleware.SessionID(c), middleware.UserID(c))
}

func (h *CheckoutHandler) Mount(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, h.checkout(c).Mount(ctx))
}

// CreateOrder answers orderCreate with a provider order for the cart's current total.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	checkout := h.checkout(c)

	order, err := checkout.CreateOrder(ctx)
	if err != nil {
		return c.JSON(statusFor(err), checkout.View())
	}

	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApproveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order_id")
	}

	view, err := h.checkout(c).Approve(ctx, model.Approval{
		OrderID: req.OrderID,
		PayerID: req.PayerID,
		Nonce:   req.Nonce,
	})
	if err != nil {
		return c.JSON(statusFor(err), view)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CheckoutHandler) ReportError(c echo.Context) error {
	var req dto.WidgetErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	return c.JSON(http.StatusOK, h.checkout(c).Fail(req.Message))
}

func (h *CheckoutHandler) DismissNotification(c echo.Context) error {
	h.checkout(c).DismissNotification()

	return c.NoContent(http.StatusNoContent)
}
