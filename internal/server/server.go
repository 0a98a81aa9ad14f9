package server

import (
	"context"
	"net/http"

	"storefront-web/internal/config"
	"storefront-web/internal/handler"
	storemw "storefront-web/internal/middleware"
	"storefront-web/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Services is everything the storefront routes are backed by.
type Services struct {
	Catalog   service.ProductCatalog
	Cart      service.CartService
	Checkouts *service.CheckoutRegistry
	Products  service.ProductAdminService
	Orders    service.OrderAdminService
	Inventory service.InventoryAdminService
}

type Server struct {
	echo            *echo.Echo
	catalogHandler  *handler.CatalogHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	adminHandler    *handler.AdminHandler
}

func NewServer(cfg config.Session, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(storemw.Session(cfg))

	s := &Server{
		echo:            e,
		catalogHandler:  handler.NewCatalogHandler(services.Catalog),
		cartHandler:     handler.NewCartHandler(services.Cart),
		checkoutHandler: handler.NewCheckoutHandler(services.Checkouts),
		adminHandler:    handler.NewAdminHandler(services.Products, services.Orders, services.Inventory),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:id", s.catalogHandler.GetProduct)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.DELETE("", s.cartHandler.ClearCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PATCH("/items/:productID", s.cartHandler.SetQuantity)
	cart.DELETE("/items/:productID", s.cartHandler.RemoveItem)

	// -------- checkout / payment widget callbacks --------
	checkout := api.Group("/checkout")
	checkout.GET("", s.checkoutHandler.Mount)
	checkout.POST("/orders", s.checkoutHandler.CreateOrder)
	checkout.POST("/approve", s.checkoutHandler.Approve)
	checkout.POST("/error", s.checkoutHandler.ReportError)
	checkout.DELETE("/notification", s.checkoutHandler.DismissNotification)

	// -------- back office --------
	admin := api.Group("/admin")
	admin.GET("/products", s.adminHandler.ListProducts)
	admin.POST("/products", s.adminHandler.CreateProduct)
	admin.PUT("/products/:id", s.adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", s.adminHandler.DeleteProduct)

	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/orders/:id", s.adminHandler.GetOrder)
	admin.PUT("/orders/:id/status", s.adminHandler.UpdateOrderStatus)
	admin.DELETE("/orders/:id", s.adminHandler.DeleteOrder)

	admin.GET("/inventory", s.adminHandler.ListInventory)
	admin.GET("/inventory/low-stock", s.adminHandler.LowStock)
	admin.PUT("/inventory/:id", s.adminHandler.UpdateInventory)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
				"session": storemw.SessionID(c),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
