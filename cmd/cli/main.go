package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/geoposts/internal/buildinfo"
	"github.com/dmitrijs2005/geoposts/internal/client/cli"
	"github.com/dmitrijs2005/geoposts/internal/client/config"
	"github.com/dmitrijs2005/geoposts/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	app.Run(ctx)
}
