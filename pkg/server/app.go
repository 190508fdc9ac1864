package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// Resource is a named dependency closed on shutdown.
type Resource struct {
	Name   string
	Closer io.Closer
}

// Resources are closed in reverse order of registration.
type Resources []Resource

// Add appends c unless it is nil.
func (r Resources) Add(name string, c io.Closer) Resources {
	if c == nil {
		return r
	}
	return append(r, Resource{Name: name, Closer: c})
}

// CloseAll closes every resource and joins the errors.
func (r Resources) CloseAll(l *applogger.Logger) error {
	var errs []error
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i].Closer.Close(); err != nil {
			l.Warn("close error", applogger.String("resource", r[i].Name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	resources  Resources
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, srv *xhttp.Server, res Resources) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: srv,
		resources:  res,
	}
}

// Run starts the HTTP server and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("stockpulse started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("model", a.cfg.Model.Type),
		applogger.String("market_data", a.cfg.MarketData.Source),
		applogger.Strings("cors_origins", a.cfg.Server.CORSOrigins),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.resources.CloseAll(a.log); err != nil {
		errs = append(errs, err)
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
