package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront web backend: catalog, cart, checkout and back office",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Usage:   "dotenv files loaded before reading the environment",
				EnvVars: []string{"STOREFRONT_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			lowStockCommand(),
			cartCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront exited")
	}
}
