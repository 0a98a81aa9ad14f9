package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront-web/internal/client"
	"storefront-web/internal/dto"
	"storefront-web/internal/model"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
)

// statusFor maps a service error to the HTTP status the UI receives with its notification.
func statusFor(err error) int {
	var (
		validation *service.ValidationError
		apiErr     *client.APIError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, service.ErrNotConfirmed), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSubmitInFlight), errors.Is(err, service.ErrCheckoutComplete), errors.Is(err, service.ErrStaleOrder):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, client.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c echo.Context, err error, n model.Notification) error {
	c.Logger().Debugf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(statusFor(err), dto.Notice(n))
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
