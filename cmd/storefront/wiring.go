package main

import (
	"fmt"
	"strings"

	"storefront-web/internal/client"
	"storefront-web/internal/config"
	"storefront-web/internal/logger"
	"storefront-web/internal/repository"
	"storefront-web/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}

	logger.Setup(cfg.Log, cfg.Environment.Name)
	return cfg, nil
}

// openCartStore picks the cart backend from CART_STORE_DRIVER. The returned func releases it.
func openCartStore(cfg config.CartStore) (repository.CartStore, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case "redis":
		rdb := client.InitRedisClient(cfg)
		return repository.NewRedisCartStore(rdb, cfg.TTL), func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("close redis client")
			}
		}, nil

	case "sqlite", "mysql":
		db, err := client.InitCartDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewCartRepository(db), func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				log.WithError(err).Warn("close cart database")
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unsupported cart store driver %q", cfg.Driver)
}

func newPaymentProvider(cfg *config.Config) (service.PaymentProvider, error) {
	switch strings.ToLower(cfg.Checkout.Provider) {
	case "paypal":
		return client.NewPaypalClient(&cfg.Paypal), nil
	case "braintree":
		return client.NewBraintreeClient(&cfg.BrainTree), nil
	}

	return nil, fmt.Errorf("unsupported payment provider %q", cfg.Checkout.Provider)
}
