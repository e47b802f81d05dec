// Package httpapi exposes the services over a JSON HTTP API.
//
// Every response uses one envelope: {"success": true, "data": ...} on
// success and {"success": false, "error": {"code", "message", "details"}}
// on failure.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/obs"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

// Pinger reports whether the backing store is reachable. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	address     string
	config      *config.Config
	logger      logging.Logger
	metrics     *obs.Metrics
	services    *services.Set
	store       Pinger
	authLimiter *rateLimiter
	now         func() time.Time
}

func NewServer(cfg *config.Config, l logging.Logger, m *obs.Metrics, svc *services.Set, store Pinger) *Server {
	return &Server{
		address:     cfg.HTTPAddr,
		config:      cfg,
		logger:      l.With("module", "http_server"),
		metrics:     m,
		services:    svc,
		store:       store,
		authLimiter: newRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst),
		now:         time.Now,
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
