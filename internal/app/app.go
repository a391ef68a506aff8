package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	"tabscan/internal/errors"
	"tabscan/internal/infrastructure"
	customMiddleware "tabscan/internal/middleware"
	"tabscan/internal/services"
	handlers "tabscan/internal/transport/http"
	"tabscan/internal/webfetch"
	ws "tabscan/internal/websocket"
	"tabscan/pkg/contracts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

const AppName = "TabScan - Missing Value Analyzer"

var (
	// VERSION is the version string reported by logs, the version
	// endpoint and build IDs. The canonical value lives in
	// pkg/contracts so server and clients agree.
	VERSION = "v" + contracts.Version

	// BuildTime is stamped via ldflags on release builds and falls
	// back to process start time in dev runs.
	BuildTime = buildTime()

	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func buildTime() string {
	if contracts.BuildTime != "unknown" {
		return contracts.BuildTime
	}
	return time.Now().Format(time.RFC3339)
}

func generateBuildID() string {
	// Generate a deterministic build ID based on version and date
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Paths          *config.Paths
	Router         *chi.Mux
	Server         *http.Server
	WebSocketHub   *ws.Hub
	DatasetService *services.DatasetService
	ScanService    *services.ScanService
	HealthService  *services.HealthService
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders

	collector    *infrastructure.SystemMetricsCollector
	errorHandler *errors.ErrorHandler
	validation   *customMiddleware.ValidationMiddleware
	otelHTTP     *customMiddleware.OTelMiddleware
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the single application logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Log all resolved paths at startup for debugging
	paths.LogPathResolution()

	// Sheets credentials are optional. Without them the Google Sheets
	// source is disabled and loads from that source return an error.
	if !config.FileExists(paths.CredentialsFile) {
		logger.Warn("Sheets credentials not found",
			slog.String("path", paths.CredentialsFile),
			slog.String("action", "Google Sheets loading will be unavailable"))
	}

	// Initialize OpenTelemetry
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices builds the service layer and connects the
// WebSocket hub and metric instruments to it.
func (a *Application) initializeServices() error {
	// WebSocket hub with keepalive tuned from configuration. It runs
	// from construction onward so service broadcasts never block.
	a.WebSocketHub = ws.NewHub(a.Logger).
		WithKeepalive(a.Config.WebSocket.PongWait, a.Config.WebSocket.PingPeriod)
	a.WebSocketHub.Start()

	// HTTP instrumentation also owns the business metric instruments
	otelHTTP, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Warn("OTel HTTP middleware disabled", slog.String("error", err.Error()))
	} else {
		a.otelHTTP = otelHTTP
	}

	var metrics *infrastructure.BusinessMetrics
	if a.otelHTTP != nil {
		metrics = a.otelHTTP.BusinessMetrics()
	}

	// System metrics collector feeds both OTel gauges and health stats
	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
	if err != nil {
		a.Logger.Warn("System metrics collector disabled", slog.String("error", err.Error()))
	} else {
		a.collector = collector
	}

	datasets, err := services.NewDatasetServiceWithPaths(a.Config, a.Paths, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dataset service: %w", err)
	}
	datasets.WithHub(a.WebSocketHub).WithMetrics(metrics)
	if a.collector != nil {
		datasets.WithMonitor(infrastructure.NewResourceMonitor(a.Logger, a.collector))
	}

	// Remote loaders: the page fetcher is always available, the Sheets
	// loader only when credentials are present.
	datasets.WithPageFetcher(webfetch.NewFetcher(a.Logger).WithTimeout(a.Config.Scan.FetchTimeout))
	if config.FileExists(a.Paths.CredentialsFile) {
		sheets, err := dataload.NewSheetsLoaderFromCredentials(context.Background(), a.Paths.CredentialsFile, a.Logger)
		if err != nil {
			a.Logger.Warn("Sheets loader initialization failed",
				slog.String("path", a.Paths.CredentialsFile),
				slog.String("error", err.Error()))
		} else {
			datasets.WithSheetLoader(sheets)
		}
	}
	a.DatasetService = datasets

	scans, err := services.NewScanServiceWithPaths(a.Config, a.Paths, datasets, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scan service: %w", err)
	}
	scans.WithHub(a.WebSocketHub).WithMetrics(metrics)
	a.ScanService = scans

	a.HealthService = services.NewHealthService(VERSION, BuildTime, a.Paths, datasets, scans, a.Logger).
		WithHub(a.WebSocketHub).
		WithCollector(a.collector)

	a.errorHandler = errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	a.validation = customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler).
		WithMaxBodySize(a.Config.Scan.MaxUploadBytes)

	return nil
}

// setupRouter configures the Chi router with middleware and routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// Request identity and client address come first so every later
	// middleware and the WebSocket upgrade see them. CORS also sits on
	// the root chain: group middlewares only run on a full method
	// match, which would leave preflight OPTIONS unanswered.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	// WebSocket endpoint stays outside the HTTP middleware group. The
	// upgrade handshake does its own origin check and must not pass
	// through timeouts or body limits.
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		if a.otelHTTP != nil {
			r.Use(a.otelHTTP.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.RateLimit.Enabled {
			limiter := customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint, outside the API middleware chain
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes mounts all /api endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.ContentTypeValidator("application/json"))
		r.Use(a.validation.ValidateRequest)

		// Health, version, metrics and scan control answer quickly
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/health/detailed", healthHandler.DetailedHealth)
			r.Get("/version", healthHandler.Version)

			metricsHandler := handlers.NewMetricsHandler(a.HealthService, a.WebSocketHub, a.Logger)
			r.Mount("/metrics", metricsHandler.Routes())

			scanHandler := handlers.NewScanHandler(a.ScanService, a.validation, a.Logger, a.errorHandler)
			r.Mount("/scans", scanHandler.Routes())
		})

		// Dataset operations may parse large files or fetch remote
		// tables, so they run under the longer request timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			datasetHandler := handlers.NewDatasetHandler(a.DatasetService, a.validation, a.Logger, a.errorHandler)
			r.Mount("/datasets", datasetHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
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

// Start starts the application services and the HTTP listener. The
// cancel function is invoked when the listener fails so the caller's
// context unwinds.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.Info("Starting server",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("log_level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	if a.collector != nil {
		a.collector.Start(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("HTTP server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)

	a.Logger.Info("Server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("websocket", fmt.Sprintf("ws://localhost:%d/ws", a.Config.Server.Port)))

	return nil
}

// Stop gracefully shuts down the application
func (a *Application) Stop() error {
	a.Logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.collector != nil {
		a.collector.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	a.Logger.Info("Server stopped")
	return nil
}

// Run starts the application and blocks until an interrupt arrives
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	select {
	case <-sigChan:
		a.Logger.Info("Interrupt received")
	case <-ctx.Done():
		a.Logger.Info("Context cancelled")
	}

	return a.Stop()
}

// handleWebSocket upgrades HTTP connections to WebSocket and hands
// them to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetRequestID(r.Context())
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	a.Logger.InfoContext(ctx, "WebSocket upgrade requested",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no Origin header
				return true
			}
			if a.isDevelopmentMode() {
				return true
			}
			for _, allowed := range a.getCORSConfig().AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	ws.ServeWSWithTrace(a.WebSocketHub, conn, reqID, a.Logger)

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("request_id", reqID),
		slog.Int("total_clients", a.WebSocketHub.ClientCount()))
}

// performStartupHealthCheck verifies the data directories are writable.
// Failures are logged as warnings, not treated as fatal, so the server
// still comes up on a read-only volume and reports the problem through
// the readiness endpoint.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	var warnings []string

	dirs := map[string]string{
		"data":     a.Paths.DataDir,
		"datasets": a.Paths.DatasetsDir,
		"reports":  a.Paths.ReportsDir,
		"exports":  a.Paths.ExportsDir,
		"cache":    a.Paths.CacheDir,
		"logs":     a.Paths.LogsDir,
	}

	for name, dir := range dirs {
		probe := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %v", name, err))
			continue
		}
		os.Remove(probe)
	}

	if !config.FileExists(a.Paths.CredentialsFile) {
		a.Logger.InfoContext(ctx, "Optional configuration missing",
			slog.String("file", a.Paths.CredentialsFile),
			slog.String("effect", "Google Sheets source disabled"))
	}

	if len(warnings) > 0 {
		a.Logger.WarnContext(ctx, "Startup health check found problems",
			slog.Int("count", len(warnings)),
			slog.String("details", strings.Join(warnings, "; ")))
		return
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
}

// getCORSConfig returns the CORS allowlist for the current mode
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	if a.isDevelopmentMode() {
		cfg.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		}
		return cfg
	}

	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}
	return cfg
}

// isDevelopmentMode reports whether the server runs with relaxed
// origin checks.
func (a *Application) isDevelopmentMode() bool {
	if a.Config.Logging.Development {
		return true
	}
	return os.Getenv("GO_ENV") == "development"
}
