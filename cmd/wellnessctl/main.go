package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/ops"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
)

func main() {
	if len(os.Args) < 2 {
		ops.Usage(os.Stderr)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(args, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, cfg.Environment, cfg.LogLevel)

	db, err := dbx.Open(ctx, repomanager.DriverName, cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "migrations: %v\n", err)
		os.Exit(1)
	}

	if err := ops.NewApp(db, rm, cfg, logger, os.Stdout).Run(ctx, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, ops.Describe(err))
		if errors.Is(err, ops.ErrUsage) {
			ops.Usage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}
