package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/handler/ws"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/scheduler"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
	refresh    *usecase.RefreshJob
	hub        *ws.Hub
}

// New creates a new App instance with all dependencies. Infrastructure clients are closed
// by the injector's cleanup, not here.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	refresh *usecase.RefreshJob,
	hub *ws.Hub,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		scheduler:  sched,
		refresh:    refresh,
		hub:        hub,
	}
}

// Run starts the application and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("HTTP server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Refresh.Enabled {
		a.scheduler.Start()
		// first refresh at boot
		go a.scheduler.RunNow("refresh", func(ctx context.Context) error {
			_, err := a.refresh.Run(ctx)
			return err
		})
	}

	a.logger.Info("StockPulse started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("provider", a.cfg.Provider.Name),
		applogger.String("store", a.cfg.Store.Backend),
	)

	<-ctx.Done()
	a.logger.Info("Shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.cfg.Refresh.Enabled {
		a.scheduler.Stop(ctx)
	}

	a.hub.Close()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", applogger.Error(err))
	}

	a.logger.Info("Shutdown complete")
	return nil
}
