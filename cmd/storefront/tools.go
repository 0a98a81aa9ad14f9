package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"storefront-web/internal/client"
	"storefront-web/internal/service"

	"github.com/urfave/cli/v2"
)

func lowStockCommand() *cli.Command {
	return &cli.Command{
		Name:  "low-stock",
		Usage: "print inventory items at or below their reorder level",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			items, err := service.NewInventoryAdminService(client.NewStorefrontAPI(cfg.API)).LowStock(c.Context)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUCT ID\tNAME\tSTOCK\tREORDER")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", item.ProductID, item.ProductName, item.StockLevel, item.ReorderLevel)
			}
			return w.Flush()
		},
	}
}

func cartCommand() *cli.Command {
	sessionFlag := &cli.StringFlag{
		Name:     "session",
		Usage:    "session id the cart is stored under",
		Required: true,
	}

	return &cli.Command{
		Name:  "cart",
		Usage: "inspect stored carts",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print a session's cart as JSON",
				Flags: []cli.Flag{sessionFlag},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}

					store, closeStore, err := openCartStore(cfg.CartStore)
					if err != nil {
						return err
					}
					defer closeStore()

					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(store.Load(c.Context, c.String("session")))
				},
			},
			{
				Name:  "clear",
				Usage: "delete a session's cart",
				Flags: []cli.Flag{sessionFlag},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}

					store, closeStore, err := openCartStore(cfg.CartStore)
					if err != nil {
						return err
					}
					defer closeStore()

					if err := store.Clear(c.Context, c.String("session")); err != nil {
						return fmt.Errorf("clear cart: %w", err)
					}
					fmt.Fprintln(c.App.ErrWriter, "cart cleared")
					return nil
				},
			},
		},
	}
}
