package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"

	"retailpulse/internal/config"
	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/middleware"
	"retailpulse/internal/pipeline"
	"retailpulse/internal/report"
	"retailpulse/internal/services"
	"retailpulse/internal/source"
	handlers "retailpulse/internal/transport/http"
)

// Application represents the report server container
type Application struct {
	Config        *config.Config
	Router        chi.Router
	Server        *http.Server
	Reports       *services.ReportService
	HealthService *services.HealthService
	Archive       *report.ArchiveSink
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	mu       sync.Mutex
	listener net.Listener
}

// NewApplication wires every component of the report server from cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "reportserver")

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	metrics, err := app.newMetrics()
	if err != nil {
		return nil, err
	}
	if err := app.initializeServices(metrics); err != nil {
		return nil, err
	}
	app.setupRouter(metrics)
	app.createServer()
	return app, nil
}

func (a *Application) newMetrics() (*infrastructure.PipelineMetrics, error) {
	if a.OTelProviders.Meter == nil {
		return nil, nil
	}
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return metrics, nil
}

// initializeServices builds the runner, report sinks and services
func (a *Application) initializeServices(metrics *infrastructure.PipelineMetrics) error {
	profile, err := dataprocessing.ProfileFromConfig(a.Config)
	if err != nil {
		return err
	}
	loader, err := source.NewLoader(a.Config, a.Logger)
	if err != nil {
		return err
	}
	runner, err := pipeline.NewRunner(loader, profile, a.Logger,
		pipeline.WithTracer(a.OTelProviders.Tracer),
		pipeline.WithMetrics(metrics))
	if err != nil {
		return err
	}

	var sinks report.MultiSink
	var lister services.RunLister
	if a.Config.Output.ReportPath != "" {
		sinks = append(sinks, report.NewFileSink(a.Config.Output.ReportPath, a.Logger))
	}
	if a.Config.Output.ArchivePath != "" {
		archive, err := report.OpenArchive(a.Config.Output.ArchivePath)
		if err != nil {
			return err
		}
		a.Archive = archive
		sinks = append(sinks, archive)
		lister = archive
	}

	var sink report.Sink
	if len(sinks) > 0 {
		sink = sinks
	}
	a.Reports = services.NewReportService(runner, sink, lister, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Reports)
	return nil
}

// setupRouter configures routes and middleware
func (a *Application) setupRouter(metrics *infrastructure.PipelineMetrics) {
	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Reports:     handlers.NewReportHandler(a.Reports, a.Logger),
		Health:      handlers.NewHealthHandler(a.HealthService, a.Logger),
		Metrics:     a.OTelProviders.PrometheusHTTP,
		OTel:        middleware.NewOTelMiddleware(a.OTelProviders.Tracer, metrics, a.Logger),
		RateLimiter: middleware.NewRateLimiterFromConfig(a.Config.Server.RateLimit, a.Logger),
		Logger:      a.Logger,
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on, or "" before Start
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Start runs the first pipeline refresh and starts serving. A failed first
// refresh is logged; the server still starts and reports itself degraded.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("addr", a.Server.Addr),
		slog.String("profile", a.Config.Pipeline.Profile),
		slog.String("level", a.Config.Logging.Level))

	if snap, err := a.Reports.Refresh(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Initial report refresh failed", slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "Initial report ready",
			slog.String("run_id", snap.RunID),
			slog.Int64("duration_ms", snap.DurationMS))
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	go func() {
		if err := a.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing run archive", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
