package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	custommiddleware "retailpulse/internal/middleware"
	"retailpulse/internal/services"
	handlers "retailpulse/internal/transport/http"
	"retailpulse/internal/validation"
	ws "retailpulse/internal/websocket"
	"retailpulse/pkg/contracts"
)

// Application is the dependency container for the dashboard server.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Hub           *ws.Hub
	Dashboard     *services.DashboardService
	Health        *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
}

// Option overrides parts of the configuration after loading. Used by the
// command line flags.
type Option func(*config.Config)

// WithPort overrides the configured server port. A zero port keeps the
// configured value.
func WithPort(port int) Option {
	return func(cfg *config.Config) {
		if port != 0 {
			cfg.Server.Port = port
		}
	}
}

// NewApplication loads configuration and builds the full service graph. The
// dataset itself is loaded later by Start so that construction stays cheap
// in tests.
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	hub := ws.NewHub(logger)
	hub.Start()

	dashboard := services.NewDashboardService(paths, hub, metrics, logger)
	health := services.NewHealthService(contracts.Version, paths, dashboard, hub, logger)

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Hub:           hub,
		Dashboard:     dashboard,
		Health:        health,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router and middleware chain.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware for every route. The websocket endpoint must not
	// go through middleware that wraps the ResponseWriter.
	r.Use(chimiddleware.RequestID)
	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.RealIP)

	r.HandleFunc("/ws", a.handleWebSocket)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		otelMiddleware := custommiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		r.Use(otelMiddleware.Handler)
		r.Use(custommiddleware.StructuredLogger(a.Logger))
		r.Use(custommiddleware.Recoverer(a.Logger))
		r.Use(custommiddleware.SecurityHeaders)
		r.Use(custommiddleware.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		errorHandler := apierrors.NewErrorHandler(a.Logger, false)

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, errorHandler)
		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)

		r.Route("/api", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(a.Config.Server.WriteTimeout))
			r.Mount("/dashboard", dashboardHandler.Routes())
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
		})
	})

	a.Router = r
}

// corsConfig builds the CORS configuration from the security settings.
func (a *Application) corsConfig() custommiddleware.CORSConfig {
	cfg := custommiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = a.Config.Security.AllowedOrigins
	}
	return cfg
}

// createServer creates the HTTP server from the configured timeouts.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// handleWebSocket upgrades the connection and hands it to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	traceID := custommiddleware.GetReqID(r.Context())
	ctx := infrastructure.WithTraceID(r.Context(), traceID)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if !a.Config.Security.EnableCORS {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	a.Logger.InfoContext(ctx, "websocket client connected",
		slog.String("remote_addr", r.RemoteAddr))
	ws.ServeWS(a.Hub, conn, traceID)
}

// Start loads the dataset and starts the HTTP server. A failed initial load
// is fatal: the dashboard has nothing to serve without data.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if err := validation.NewDataValidator(a.Logger).ValidateDataDir(a.Paths); err != nil {
		return fmt.Errorf("data directory validation failed: %w", err)
	}

	a.Logger.InfoContext(ctx, "loading dataset",
		slog.String("data_dir", a.Paths.DataDir))
	if err := a.Dashboard.Load(ctx); err != nil {
		return fmt.Errorf("initial dataset load failed: %w", err)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully shuts the application down.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing log file",
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run starts the application and blocks until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
