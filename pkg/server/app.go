package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SimuTrade/internal/usecase"
	pkgch "SimuTrade/pkg/clickhouse"
	"SimuTrade/pkg/config"
	xhttp "SimuTrade/pkg/http"
	applogger "SimuTrade/pkg/logger"
)

// App encapsulates the application lifecycle: the live price collector,
// the engine driver, and the HTTP surface.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	collector *usecase.PriceCollector
	driver    *usecase.Driver
	processor *usecase.TickProcessor
	chClient  *pkgch.Client // nil unless archive backend is clickhouse

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.PriceCollector,
	driver *usecase.Driver,
	processor *usecase.TickProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		collector:   collector,
		driver:      driver,
		processor:   processor,
		chClient:    chClient,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// The collector is best-effort: the engine falls back to the last
	// analysis close until the stream delivers its first tick.
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("price collector start failed", applogger.Error(err))
		}
	}()
	a.log.Info("price collector started", applogger.String("symbol", a.cfg.Symbol))

	go a.driver.Run(ctx)
	a.log.Info("engine started",
		applogger.String("timeframe", a.cfg.Engine.Timeframe),
		applogger.Duration("analysis_interval", a.cfg.Engine.AnalysisInterval),
		applogger.Duration("settlement_interval", a.cfg.Engine.SettlementInterval))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.processor != nil {
		a.processor.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
