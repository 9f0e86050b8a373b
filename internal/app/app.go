package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"

	"salesdash/internal/charts"
	"salesdash/internal/config"
	"salesdash/internal/dashboard"
	"salesdash/internal/dataset"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/infrastructure"
	customMiddleware "salesdash/internal/middleware"
	"salesdash/internal/services"
	handlers "salesdash/internal/transport/http"
	"salesdash/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Sales Performance Dashboard"

const runtimeCollectInterval = 15 * time.Second

// Application represents the dashboard server container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Pages         *services.PageService
	Health        *services.HealthService
	Errors        *apperrors.ErrorHandler
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeMetrics
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	mu       sync.Mutex
	listener net.Listener
}

// NewApplication loads configuration and initializes logging and telemetry
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetFullVersionString()),
		slog.Bool("debug", cfg.Server.Debug))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, providers)
}

// New wires an application from an already loaded configuration. A nil
// providers value disables the /metrics endpoint.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.InvalidArgument("nil configuration")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}
	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	var meter metric.Meter
	if a.OTelProviders != nil {
		meter = a.OTelProviders.Meter
	}
	var err error
	if a.Metrics, err = infrastructure.CreateBusinessMetrics(meter); err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	if a.Runtime, err = infrastructure.NewRuntimeMetrics(meter); err != nil {
		return fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	a.Errors = apperrors.NewErrorHandler(a.Logger, a.Config.Server.Debug)
	a.Pages = services.NewPageService(a.Metrics, a.Logger)
	a.Health = services.NewHealthService(a.Pages, a.Logger).WithRuntimeMetrics(a.Runtime)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID -> RealIP -> OTel -> Logger -> Recoverer -> headers -> limiter -> gzip
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apperrors.RecoveryMiddleware(a.Errors))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Errors,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Compress(5))

	r.NotFound(a.Errors.NotFound)
	r.MethodNotAllowed(a.Errors.MethodNotAllowed)

	pageHandler := handlers.NewPageHandler(a.Pages, a.Errors, a.Logger)
	r.Get("/", pageHandler.Handler())
	r.Head("/", pageHandler.Handler())

	a.setupAPIRoutes(r)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Prepare loads the configured datasets and publishes the dashboard page
func (a *Application) Prepare(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	ds, err := dataset.LoadAll(ctx, a.Config.Data, a.Logger)
	if err != nil {
		return err
	}
	return a.Publish(ctx, ds)
}

// Publish builds and renders the page from ds and stores it for serving
func (a *Application) Publish(ctx context.Context, ds dashboard.Datasets) error {
	start := time.Now()

	builder := dashboard.NewBuilder(dashboard.OptionsFromConfig(a.Config.Dashboard), a.Logger, a.Metrics)
	renderer := dashboard.NewHTMLRenderer(
		charts.NewSVGRenderer(a.Config.Dashboard.ChartWidth, a.Config.Dashboard.ChartHeight, a.Logger),
		a.Logger,
	)

	html, err := builder.Publish(ctx, ds, renderer)
	if err != nil {
		return fmt.Errorf("failed to build dashboard page: %w", err)
	}
	a.Pages.Publish(html, time.Since(start))
	return nil
}

// Listen acquires the configured address. It fails with a BindError when
// the port is unavailable.
func (a *Application) Listen() (net.Addr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener != nil {
		return a.listener.Addr(), nil
	}
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return nil, apperrors.BindError(a.Server.Addr, err)
	}
	a.listener = ln
	return ln.Addr(), nil
}

// Serve serves requests until ctx is cancelled, then shuts down gracefully
func (a *Application) Serve(ctx context.Context) error {
	addr, err := a.Listen()
	if err != nil {
		return err
	}

	a.mu.Lock()
	ln := a.listener
	a.mu.Unlock()

	a.Logger.InfoContext(ctx, "Server listening",
		slog.String("address", "http://"+addr.String()),
		slog.Bool("debug", a.Config.Server.Debug),
		slog.Bool("page_ready", a.Pages.Ready()))

	if a.OTelProviders != nil {
		collectCtx, stopCollect := context.WithCancel(ctx)
		defer stopCollect()
		go a.Runtime.Run(collectCtx, runtimeCollectInterval)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	return a.Stop(context.WithoutCancel(ctx))
}

// Stop shuts the server down within the configured timeout
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}

// Run prepares the page and serves it until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer a.shutdownTelemetry()
	defer func() {
		if err := infrastructure.CloseLogFile(); err != nil {
			a.Logger.Warn("Failed to close log file", slog.String("error", err.Error()))
		}
	}()

	if err := a.Prepare(ctx); err != nil {
		return err
	}
	return a.Serve(ctx)
}

func (a *Application) shutdownTelemetry() {
	if a.OTelProviders == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}

// Serve binds cfg.Host:cfg.Port and serves page at / until ctx is
// cancelled. With cfg.Debug set, error responses carry internal details.
func Serve(ctx context.Context, page []byte, cfg config.ServerConfig, logger *slog.Logger) error {
	full := config.Default()
	full.Server = withServerDefaults(cfg, full.Server)
	full.Telemetry.Enabled = false

	a, err := New(full, logger, nil)
	if err != nil {
		return err
	}
	a.Pages.Publish(page, 0)
	return a.Serve(ctx)
}

// withServerDefaults fills unset limits and timeouts
func withServerDefaults(cfg, def config.ServerConfig) config.ServerConfig {
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = def.MaxHeaderBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	return cfg
}
