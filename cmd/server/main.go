package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stdout, cfg.Environment, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "invalid configuration", "error", err)
		os.Exit(2)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
