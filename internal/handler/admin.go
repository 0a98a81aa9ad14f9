package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront-web/internal/dto"
	"storefront-web/internal/model"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxImageSize = 5 << 20

type AdminHandler struct {
	products  service.ProductAdminService
	orders    service.OrderAdminService
	inventory service.InventoryAdminService
}

func NewAdminHandler(
	products service.ProductAdminService,
	orders service.OrderAdminService,
	inventory service.InventoryAdminService,
) *AdminHandler {
	return &AdminHandler{
		products:  products,
		orders:    orders,
		inventory: inventory,
	}
}

// -------- products --------

func (h *AdminHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := productFilter(c)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityWarning, err.Error()))
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to fetch products."))
	}

	return c.JSON(http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	return h.saveProduct(c, 0)
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	return h.saveProduct(c, productID)
}

func (h *AdminHandler) saveProduct(c echo.Context, productID int64) error {
	ctx := c.Request().Context()

	form, err := productForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notice, err := h.products.Save(ctx, productID, form)
	if err != nil {
		return fail(c, err, notice)
	}

	status := http.StatusOK
	if productID == 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, dto.Notice(notice))
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	notice, err := h.products.Delete(ctx, productID, confirmed(c))
	if err != nil {
		return fail(c, err, notice)
	}

	return c.JSON(http.StatusOK, dto.Notice(notice))
}

// -------- orders --------

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	result, err := h.orders.List(ctx, page, perPage, c.QueryParam("search"))
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to fetch orders."))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, fmt.Sprintf("Failed to fetch order ID: %d", orderID)))
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	notice, err := h.orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		return fail(c, err, notice)
	}

	return c.JSON(http.StatusOK, dto.Notice(notice))
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	notice, err := h.orders.Delete(ctx, orderID, confirmed(c))
	if err != nil {
		return fail(c, err, notice)
	}

	return c.JSON(http.StatusOK, dto.Notice(notice))
}

// -------- inventory --------

func (h *AdminHandler) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()

	view, notice, err := h.inventory.List(ctx, c.QueryParam("search"))
	if err != nil {
		return c.JSON(statusFor(err), dto.WithData(nil, notice))
	}

	return c.JSON(http.StatusOK, dto.WithData(view, notice))
}

func (h *AdminHandler) LowStock(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.inventory.LowStock(ctx)
	if err != nil {
		return fail(c, err, model.Notify(model.SeverityError, "Failed to fetch low stock items."))
	}

	return c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) UpdateInventory(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, notice, err := h.inventory.Update(ctx, productID, string(req.StockLevel), string(req.ReorderLevel))
	if err != nil {
		return fail(c, err, notice)
	}

	return c.JSON(http.StatusOK, dto.WithData(item, &notice))
}

func confirmed(c echo.Context) bool {
	ok, _ := strconv.ParseBool(c.QueryParam("confirm"))
	return ok
}

func productFilter(c echo.Context) (service.ProductFilter, error) {
	filter := service.ProductFilter{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	for param, dst := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := strings.TrimSpace(c.QueryParam(param))
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, &service.ValidationError{Message: "Please enter a valid price."}
		}
		*dst = &price
	}

	return filter, nil
}

// productForm reads the multipart product form. The image file is optional.
func productForm(c echo.Context) (model.ProductForm, error) {
	form := model.ProductForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		CategoryID:  c.FormValue("category_id"),
		ImgURL:      c.FormValue("img_url"),
	}

	file, err := c.FormFile("image")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return form, nil
	}
	if err != nil {
		return form, fmt.Errorf("read image: %w", err)
	}
	if file.Size > maxImageSize {
		return form, fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}

	src, err := file.Open()
	if err != nil {
		return form, fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	form.Image, err = io.ReadAll(src)
	if err != nil {
		return form, fmt.Errorf("read image: %w", err)
	}
	form.ImageName = file.Filename

	return form, nil
}
