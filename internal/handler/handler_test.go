package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-web/internal/client"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Message: "Please fill in all fields."}, http.StatusBadRequest},
		{service.ErrNotConfirmed, http.StatusBadRequest},
		{fmt.Errorf("approve: %w", service.ErrSubmitInFlight), http.StatusConflict},
		{service.ErrStaleOrder, http.StatusConflict},
		{&client.APIError{StatusCode: 404, Message: "Product not found."}, http.StatusNotFound},
		{&client.APIError{StatusCode: 503}, http.StatusBadGateway},
		{fmt.Errorf("submit order: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("%w: dial tcp", client.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestProductFilter(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products?search=+chair+&min_price=10&category=Furn", nil)
	filter, err := productFilter(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "chair", filter.Search)
	assert.Equal(t, "Furn", filter.Category)
	require.NotNil(t, filter.MinPrice)
	assert.Equal(t, "10", filter.MinPrice.String())
	assert.Nil(t, filter.MaxPrice)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/products?max_price=cheap", nil)
	_, err = productFilter(e.NewContext(req, httptest.NewRecorder()))
	var validation *service.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestProductForm(t *testing.T) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", "Chair"))
	require.NoError(t, w.WriteField("description", "Oak"))
	require.NoError(t, w.WriteField("price", "49.99"))
	require.NoError(t, w.WriteField("category_id", "3"))
	part, err := w.CreateFormFile("image", "chair.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	form, err := productForm(echo.New().NewContext(req, httptest.NewRecorder()))

	require.NoError(t, err)
	assert.Equal(t, "Chair", form.Name)
	assert.Equal(t, "3", form.CategoryID)
	assert.Equal(t, "chair.png", form.ImageName)
	assert.Equal(t, []byte("png-bytes"), form.Image)
}

func TestProductForm_WithoutImage(t *testing.T) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", "Chair"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	form, err := productForm(echo.New().NewContext(req, httptest.NewRecorder()))

	require.NoError(t, err)
	assert.Equal(t, "Chair", form.Name)
	assert.Nil(t, form.Image)
}
