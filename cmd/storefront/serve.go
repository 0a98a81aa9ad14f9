package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-web/internal/client"
	"storefront-web/internal/publisher"
	"storefront-web/internal/server"
	"storefront-web/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the storefront HTTP server",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, closeStore, err := openCartStore(cfg.CartStore)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := newPaymentProvider(cfg)
	if err != nil {
		return err
	}

	events := publisher.New(cfg.Kafka)
	defer func() {
		if err := events.Close(); err != nil {
			log.WithError(err).Warn("close event publisher")
		}
	}()

	api := client.NewStorefrontAPI(cfg.API)
	registry := service.NewCheckoutRegistry(store, api, provider, events, service.CheckoutOptions{
		UserID:         cfg.Session.DefaultUserID,
		RedirectDelay:  cfg.Checkout.RedirectDelay,
		SubmitTimeout:  cfg.Checkout.SubmitTimeout,
		PublishTimeout: cfg.Checkout.PublishTimeout,
	})

	srv := server.NewServer(cfg.Session, server.Services{
		Catalog:   api,
		Cart:      service.NewCartService(store, api),
		Checkouts: registry,
		Products:  service.NewProductAdminService(api),
		Orders:    service.NewOrderAdminService(api),
		Inventory: service.NewInventoryAdminService(api),
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go sweepCheckouts(ctx, registry, cfg.Session.IdleTimeout)

	serverAddr := cfg.ServerAddr()
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":     serverAddr,
			"provider": provider.Method(),
			"store":    cfg.CartStore.Driver,
		}).Info("Starting HTTP server")
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// sweepCheckouts drops abandoned checkout flows so the registry does not grow with every visitor.
func sweepCheckouts(ctx context.Context, registry *service.CheckoutRegistry, idle time.Duration) {
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := registry.Sweep(idle); n > 0 {
				log.WithFields(log.Fields{
					"removed": n,
					"active":  registry.Len(),
				}).Debug("swept idle checkouts")
			}
		case <-ctx.Done():
			return
		}
	}
}
