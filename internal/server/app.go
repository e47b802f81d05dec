// Package server wires configuration, storage and services together and runs
// the HTTP API alongside the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/httpapi"
	"github.com/dmitrijs2005/smarthealth/internal/server/obs"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"

	gs "github.com/dmitrijs2005/smarthealth/internal/server/grpc"
)

const healthPingInterval = 10 * time.Second

var (
	openDB         = dbx.Open
	newRepoManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	httpServer   *httpapi.Server
	healthServer *gs.HealthServer
}

// NewApp opens the database, applies pending migrations and builds the
// servers.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := openDB(ctx, repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, l, db, rm), nil
}

func newApp(c *config.Config, l logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	svc := services.NewSet(db, rm, c, l)
	return &App{
		config:       c,
		logger:       l,
		db:           db,
		httpServer:   httpapi.NewServer(c, l, obs.NewMetrics(), svc, db),
		healthServer: gs.NewHealthServer(c.GRPCHealthAddr, l, db, healthPingInterval),
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// start runs one server; a failure stops the whole app.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a shutdown signal arrives or either
// server fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, "grpc_health", app.healthServer.Run)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
